// Package config provides the ambient runtime configuration for Renode.
//
// It utilizes Viper for loading configuration from environment variables
// (prefixed with RENODE_) and an optional .env file. Defaults come from the
// `default` struct tags of each section.
//
// This is distinct from the user-facing renode.config key/value file, which is
// owned by the settings package and resolved by the bootstrap sequencer.
//
// # Configuration Structure
//
//   - Log: logging level and format
//   - Engine: dispatch queue sizing
//   - Server: listen host and API key for the network control servers
//   - Database: monitor history database
//   - Storage: S3/MinIO remote artifact store
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Server.Host)
package config
