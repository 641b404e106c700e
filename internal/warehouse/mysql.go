package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// mysqlRepo is the MySQL-backed Repository. It shares the transactional
// insert path with sqlite; only driver, DDL dialect, and session setup
// differ.
type mysqlRepo struct {
	db *sql.DB
}

func newMySQLRepo(ctx context.Context, dsn string) (*mysqlRepo, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("mysql: DSN must not be empty")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}
	return &mysqlRepo{db: db}, nil
}

func (r *mysqlRepo) Exec(ctx context.Context, stmt string) error {
	if strings.TrimSpace(stmt) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("mysql: exec: %w", err)
	}
	return nil
}

func (r *mysqlRepo) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	return execBatchInsert(ctx, r.db, "mysql", mysqlDialect, table, columns, rows)
}

func (r *mysqlRepo) Close() { r.db.Close() }
