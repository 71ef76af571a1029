package server

// VaultServerConfig tunes the document facade.
type VaultServerConfig struct {
	SLADays      int    `mapstructure:"sla_days"      yaml:"sla_days"`
	SearchCap    int    `mapstructure:"search_cap"    yaml:"search_cap"`
	RecentDays   int    `mapstructure:"recent_days"   yaml:"recent_days"`
	SystemPrefix string `mapstructure:"system_prefix" yaml:"system_prefix"`
	Marker       string `mapstructure:"marker"        yaml:"marker"`
	MoveWorkers  int    `mapstructure:"move_workers"  yaml:"move_workers"`
	Overwrite    bool   `mapstructure:"overwrite"     yaml:"overwrite"`
}
