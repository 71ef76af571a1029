package server

// BlobServerConfig selects the store holding document contents.
type BlobServerConfig struct {
	Type string       `mapstructure:"type" yaml:"type"`
	S3   BlobS3Config `mapstructure:"s3"   yaml:"s3"`
}

// BlobS3Config holds S3-compatible object storage settings. Credentials
// fall back to the default AWS chain when left empty.
type BlobS3Config struct {
	Bucket         string `mapstructure:"bucket"           yaml:"bucket"`
	Region         string `mapstructure:"region"           yaml:"region"`
	Endpoint       string `mapstructure:"endpoint"         yaml:"endpoint"`
	AccessKey      string `mapstructure:"access_key"       yaml:"access_key"`
	SecretKey      string `mapstructure:"secret_key"       yaml:"secret_key"`
	KeyPrefix      string `mapstructure:"key_prefix"       yaml:"key_prefix"`
	ForcePathStyle bool   `mapstructure:"force_path_style" yaml:"force_path_style"`
}
