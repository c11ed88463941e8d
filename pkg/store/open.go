package store

import (
	"context"
	"fmt"

	"wgadmin/pkg/consul"
	"wgadmin/pkg/db"
)

const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverMySQL    = db.DriverMySQL
	DriverPostgres = db.DriverPostgres
	DriverConsul   = "consul"
)

// Drivers lists the accepted values of Config.Driver.
var Drivers = []string{DriverFile, DriverMemory, DriverSQLite, DriverMySQL, DriverPostgres, DriverConsul}

// Config selects and configures a backend.
type Config struct {
	Driver string `mapstructure:"driver"`
	// DSN is the directory for file, the database path for sqlite and the
	// connection string for mysql and postgres.
	DSN          string `mapstructure:"dsn"`
	ConsulAddr   string `mapstructure:"consul_addr"`
	ConsulPrefix string `mapstructure:"consul_prefix"`
}

// Open returns the backend named by cfg.Driver; empty means file.
func Open(ctx context.Context, cfg Config) (DocumentStore, error) {
	switch cfg.Driver {
	case "", DriverFile:
		return NewFileStore(cfg.DSN), nil
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite:
		s, err := db.OpenSQLite(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverMySQL, DriverPostgres:
		s, err := db.OpenGorm(cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverConsul:
		s, err := consul.NewStore(cfg.ConsulAddr, cfg.ConsulPrefix)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}
