package server

// MetadataServerConfig holds metadata store configuration
type MetadataServerConfig struct {
	Type   string               `mapstructure:"type"   yaml:"type"`
	SQLite MetadataSQLiteConfig `mapstructure:"sqlite" yaml:"sqlite"`
	Badger MetadataBadgerConfig `mapstructure:"badger" yaml:"badger"`
}

// MetadataSQLiteConfig holds SQLite-specific configuration
type MetadataSQLiteConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// MetadataBadgerConfig holds Badger-specific configuration. An empty path
// keeps the index in memory.
type MetadataBadgerConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}
