package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// sqliteRepo is the SQLite-backed Repository. Batched INSERTs inside a
// transaction stand in for a bulk-load API; SQLite has none, and the
// warehouse volumes stay moderate.
type sqliteRepo struct {
	db *sql.DB
}

func newSQLiteRepo(ctx context.Context, dsn string) (*sqliteRepo, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	_, _ = db.ExecContext(ctx, "PRAGMA foreign_keys = ON;")
	return &sqliteRepo{db: db}, nil
}

func (r *sqliteRepo) Exec(ctx context.Context, stmt string) error {
	if strings.TrimSpace(stmt) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

func (r *sqliteRepo) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	return execBatchInsert(ctx, r.db, "sqlite", sqliteDialect, table, columns, rows)
}

func (r *sqliteRepo) Close() { r.db.Close() }

// execBatchInsert is the shared database/sql insert path used by the sqlite
// and mysql repositories: one transaction, one prepared statement, one Exec
// per row.
func execBatchInsert(ctx context.Context, db *sql.DB, driver string, d dialect, table string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("%s: CopyFrom: columns must not be empty", driver)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	idents := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		idents[i] = d.ident(c)
		placeholders[i] = "?"
	}
	stmtSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.ident(table), strings.Join(idents, ", "), strings.Join(placeholders, ", "))

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: begin tx: %w", driver, err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("%s: prepare insert: %w", driver, err)
	}
	defer stmt.Close()

	var inserted int64
	args := make([]any, len(columns))
	for _, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return inserted, fmt.Errorf("%s: CopyFrom: row length %d != columns length %d", driver, len(row), len(columns))
		}
		for i, v := range row {
			args[i] = sqlValue(v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = tx.Rollback()
			return inserted, fmt.Errorf("%s: insert: %w", driver, err)
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("%s: commit: %w", driver, err)
	}
	return inserted, nil
}

// sqlValue maps cell values to driver values. No-data NaN becomes NULL so
// every backend stores the same thing the CSV target renders as empty.
func sqlValue(v any) any {
	if f, ok := v.(float64); ok && math.IsNaN(f) {
		return nil
	}
	return v
}
