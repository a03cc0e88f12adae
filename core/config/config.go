package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/asdfjk123/renode/core/database"
	"github.com/asdfjk123/renode/core/engine"
	"github.com/asdfjk123/renode/core/logger"
	"github.com/asdfjk123/renode/core/server"
	"github.com/asdfjk123/renode/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable (RENODE_LOG_LEVEL -> log.level).
const EnvPrefix = "RENODE"

// Config holds the ambient runtime configuration.
// The user-facing renode.config file is handled separately by core/settings.
type Config struct {
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Engine tunes the engine dispatch loop.
	Engine engine.Config `mapstructure:"engine"`
	// Server holds configuration shared by the network control servers.
	Server server.Config `mapstructure:"server"`
	// Database holds configuration for the monitor history database.
	Database database.Config `mapstructure:"database"`
	// Storage holds configuration for the remote artifact store.
	Storage storage.Config `mapstructure:"storage"`
}

// LoadConfig reads dir/.env into the process environment, then builds the
// configuration from struct tag defaults overridden by RENODE_* variables.
func LoadConfig(dir string) (*Config, error) {
	// A missing .env is the common case.
	_ = godotenv.Overload(filepath.Join(dir, ".env"))

	v := viper.New()
	registerDefaults(v, reflect.TypeOf(Config{}), "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// registerDefaults walks t and records a default for every leaf key.
// AutomaticEnv only resolves keys viper already knows about, so leaves
// without a default tag are registered with an empty value.
func registerDefaults(v *viper.Viper, t reflect.Type, prefix string) {
	for _, field := range reflect.VisibleFields(t) {
		name, ok := field.Tag.Lookup("mapstructure")
		if !ok || name == "" || !field.IsExported() {
			continue
		}
		if prefix != "" {
			name = prefix + "." + name
		}

		if field.Type.Kind() == reflect.Struct {
			registerDefaults(v, field.Type, name)
			continue
		}
		v.SetDefault(name, field.Tag.Get("default"))
	}
}
