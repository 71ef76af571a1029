package server

type APIServerConfig struct {
	Address      string `mapstructure:"address"       yaml:"address"`
	Metrics      bool   `mapstructure:"metrics"       yaml:"metrics"`
	ReadTimeout  string `mapstructure:"read_timeout"  yaml:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  string `mapstructure:"idle_timeout"  yaml:"idle_timeout"`
}
