package server

import "github.com/spf13/viper"

func GetServerDefault() BaseServerConfig {
	return BaseServerConfig{
		ShutdownTimeout: "10s",

		Log: LogServerConfig{
			Level:      "INFO",
			TimeFormat: "2006-01-02 15:04:05",
			File:       "",
			NoColor:    false,
			JSON:       false,
			NoTerminal: false,
			Rotation: LogServerRotationConfig{
				MaxSize:    128,
				MaxBackups: 5,
				MaxAge:     16,
				Compress:   false,
			},
		},

		Metadata: MetadataServerConfig{
			Type: "sqlite",
			SQLite: MetadataSQLiteConfig{
				Path: "./data/docsync.db",
			},
			Badger: MetadataBadgerConfig{
				Path: "./data/badger",
			},
		},

		Blob: BlobServerConfig{
			Type: "memory",
			S3: BlobS3Config{
				Region: "us-east-1",
			},
		},

		API: APIServerConfig{
			Address:      ":8080",
			Metrics:      true,
			ReadTimeout:  "30s",
			WriteTimeout: "60s",
			IdleTimeout:  "120s",
		},

		Vault: VaultServerConfig{
			SLADays:      5,
			SearchCap:    500,
			RecentDays:   7,
			SystemPrefix: "upload_",
			Marker:       "__",
			MoveWorkers:  4,
			Overwrite:    true,
		},
	}
}

func setDefaults() {
	defaults := GetServerDefault()

	viper.SetDefault("shutdown_timeout", defaults.ShutdownTimeout)

	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("log.time_format", defaults.Log.TimeFormat)
	viper.SetDefault("log.file", defaults.Log.File)
	viper.SetDefault("log.no_color", defaults.Log.NoColor)
	viper.SetDefault("log.json", defaults.Log.JSON)
	viper.SetDefault("log.no_terminal", defaults.Log.NoTerminal)
	viper.SetDefault("log.rotation.max_size", defaults.Log.Rotation.MaxSize)
	viper.SetDefault("log.rotation.max_backups", defaults.Log.Rotation.MaxBackups)
	viper.SetDefault("log.rotation.max_age", defaults.Log.Rotation.MaxAge)
	viper.SetDefault("log.rotation.compress", defaults.Log.Rotation.Compress)

	viper.SetDefault("metadata.type", defaults.Metadata.Type)
	viper.SetDefault("metadata.sqlite.path", defaults.Metadata.SQLite.Path)
	viper.SetDefault("metadata.badger.path", defaults.Metadata.Badger.Path)

	viper.SetDefault("blob.type", defaults.Blob.Type)
	viper.SetDefault("blob.s3.bucket", defaults.Blob.S3.Bucket)
	viper.SetDefault("blob.s3.region", defaults.Blob.S3.Region)
	viper.SetDefault("blob.s3.endpoint", defaults.Blob.S3.Endpoint)
	viper.SetDefault("blob.s3.access_key", defaults.Blob.S3.AccessKey)
	viper.SetDefault("blob.s3.secret_key", defaults.Blob.S3.SecretKey)
	viper.SetDefault("blob.s3.key_prefix", defaults.Blob.S3.KeyPrefix)
	viper.SetDefault("blob.s3.force_path_style", defaults.Blob.S3.ForcePathStyle)

	viper.SetDefault("api.address", defaults.API.Address)
	viper.SetDefault("api.metrics", defaults.API.Metrics)
	viper.SetDefault("api.read_timeout", defaults.API.ReadTimeout)
	viper.SetDefault("api.write_timeout", defaults.API.WriteTimeout)
	viper.SetDefault("api.idle_timeout", defaults.API.IdleTimeout)

	viper.SetDefault("vault.sla_days", defaults.Vault.SLADays)
	viper.SetDefault("vault.search_cap", defaults.Vault.SearchCap)
	viper.SetDefault("vault.recent_days", defaults.Vault.RecentDays)
	viper.SetDefault("vault.system_prefix", defaults.Vault.SystemPrefix)
	viper.SetDefault("vault.marker", defaults.Vault.Marker)
	viper.SetDefault("vault.move_workers", defaults.Vault.MoveWorkers)
	viper.SetDefault("vault.overwrite", defaults.Vault.Overwrite)
}
