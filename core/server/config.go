package server

// Config holds configuration shared by the network control servers.
type Config struct {
	// Host is the interface the servers bind to.
	Host string `mapstructure:"host" default:"127.0.0.1"`
	// ApiKey is the secret key required to access the API server. Empty disables auth.
	ApiKey string `mapstructure:"api_key" default:""`
	// WorkingDir is the directory scripts are resolved against. Empty means the process cwd.
	WorkingDir string `mapstructure:"working_dir" default:""`
}

// AuthEnabled reports whether the API server requires a key.
func (c Config) AuthEnabled() bool {
	return c.ApiKey != ""
}
