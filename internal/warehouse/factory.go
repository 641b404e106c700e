package warehouse

import (
	"context"
	"fmt"
)

// Config selects and parameterizes a warehouse target.
type Config struct {
	// Kind is one of "csv", "sqlite", "postgres", "mysql".
	Kind string `json:"kind"`
	// DSN is the connection string for the SQL kinds.
	DSN string `json:"dsn,omitempty"`
	// Dir is the output directory for the csv kind.
	Dir string `json:"dir,omitempty"`
}

// Open constructs the configured target. SQL connections are acquired here,
// per run, and released by Target.Close.
func Open(ctx context.Context, cfg Config) (Target, error) {
	switch cfg.Kind {
	case "", "csv":
		return newCSVTarget(cfg.Dir)
	case "sqlite":
		repo, err := newSQLiteRepo(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return &sqlTarget{repo: repo, dial: sqliteDialect}, nil
	case "postgres":
		repo, err := newPostgresRepo(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return &sqlTarget{repo: repo, dial: postgresDialect}, nil
	case "mysql":
		repo, err := newMySQLRepo(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return &sqlTarget{repo: repo, dial: mysqlDialect}, nil
	default:
		return nil, fmt.Errorf("warehouse: unknown target kind %q", cfg.Kind)
	}
}
