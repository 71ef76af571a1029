package server

import (
	"fmt"

	"github.com/spf13/viper"
)

type BaseServerConfig struct {
	ShutdownTimeout string `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	Log      LogServerConfig      `mapstructure:"log"      yaml:"log"`
	Metadata MetadataServerConfig `mapstructure:"metadata" yaml:"metadata"`
	Blob     BlobServerConfig     `mapstructure:"blob"     yaml:"blob"`
	API      APIServerConfig      `mapstructure:"api"      yaml:"api"`
	Vault    VaultServerConfig    `mapstructure:"vault"    yaml:"vault"`
}

func LoadServerConfig() (*BaseServerConfig, error) {
	cfg := &BaseServerConfig{}

	setDefaults()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate rejects store types the agent cannot build.
func (cfg *BaseServerConfig) Validate() error {
	switch cfg.Metadata.Type {
	case "sqlite", "badger", "memory":
	default:
		return fmt.Errorf("unknown metadata type '%s'", cfg.Metadata.Type)
	}

	switch cfg.Blob.Type {
	case "s3":
		if cfg.Blob.S3.Bucket == "" {
			return fmt.Errorf("blob.s3.bucket is required")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown blob type '%s'", cfg.Blob.Type)
	}

	return nil
}
