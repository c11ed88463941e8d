// Package config loads wgadmin settings from the environment, an optional
// .env file and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"wgadmin/pkg/keys"
	"wgadmin/pkg/logs"
	"wgadmin/pkg/store"
)

const EnvPrefix = "WGADMIN"

type Config struct {
	Logging struct {
		Level  string `mapstructure:"level"`  // trace|debug|info|warning|error|fatal
		Format string `mapstructure:"format"` // text|json
		File   string `mapstructure:"file"`   // log file prefix, empty means stderr only
	} `mapstructure:"logs"`

	Keys struct {
		Provider string `mapstructure:"provider"` // wg|native
		WGPath   string `mapstructure:"wg_path"`
	} `mapstructure:"keys"`

	Store store.Config `mapstructure:"store"`
}

// LogOptions returns the logger settings.
func (c *Config) LogOptions() logs.Options {
	return logs.Options{Level: c.Logging.Level, Format: c.Logging.Format, File: c.Logging.File}
}

// KeyProvider builds the configured key provider.
func (c *Config) KeyProvider() (keys.Provider, error) {
	return keys.New(c.Keys.Provider, c.Keys.WGPath)
}

// Load reads settings. path names a YAML file; when empty,
// $WGADMIN_CONFIG_FILE is used, then wgadmin.yaml in the working directory,
// $XDG_CONFIG_HOME/wgadmin and /etc/wgadmin. A missing file is not an error
// unless it was named explicitly. Environment variables (WGADMIN_STORE_DRIVER
// and so on) override the file.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logs.level", "info")
	v.SetDefault("logs.format", "text")
	v.SetDefault("logs.file", "")
	v.SetDefault("keys.provider", keys.KindWG)
	v.SetDefault("keys.wg_path", keys.DefaultWGPath)
	v.SetDefault("store.driver", store.DriverFile)
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.consul_addr", "")
	v.SetDefault("store.consul_prefix", "")

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG_FILE")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("wgadmin")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "wgadmin"))
		}
		v.AddConfigPath("/etc/wgadmin")
	}

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("config read error: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(c *Config) error {
	switch c.Keys.Provider {
	case keys.KindWG, keys.KindNative:
	default:
		return fmt.Errorf("keys.provider must be %q or %q, got %q", keys.KindWG, keys.KindNative, c.Keys.Provider)
	}
	if c.Keys.Provider == keys.KindWG && strings.TrimSpace(c.Keys.WGPath) == "" {
		return errors.New("keys.wg_path must not be empty")
	}
	if !slices.Contains(store.Drivers, c.Store.Driver) {
		return fmt.Errorf("store.driver must be one of %s, got %q", strings.Join(store.Drivers, "|"), c.Store.Driver)
	}
	if c.Store.Driver == store.DriverPostgres && c.Store.DSN == "" {
		return errors.New("store.dsn is required for postgres")
	}
	return nil
}
