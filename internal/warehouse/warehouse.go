// Package warehouse persists the star schema. A Target accepts finished
// tables; SQL targets (sqlite, postgres, mysql) sit behind a shared
// Repository surface, the CSV target writes one file per table. Dimension
// tables always load before fact tables regardless of the order the caller
// supplies.
package warehouse

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"railetl/internal/records"
)

// Target is a destination for warehouse tables. Each run regenerates every
// table whole; targets replace, never append.
type Target interface {
	WriteTable(ctx context.Context, t *records.Table) error
	Close() error
}

// Repository is the minimal SQL surface a warehouse backend provides. The
// concrete repositories differ only in driver, placeholder style, and bulk
// insert mechanics.
type Repository interface {
	Exec(ctx context.Context, stmt string) error
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
	Close()
}

// LoadOrder returns the tables sorted for referential integrity: dimensions
// first, then facts, ties broken by name. The sort is stable and total, so
// identical inputs always load identically.
func LoadOrder(tables []*records.Table) []*records.Table {
	out := append([]*records.Table(nil), tables...)
	rank := func(t *records.Table) int {
		if strings.HasPrefix(t.Source, "dim_") {
			return 0
		}
		return 1
	}
	sort.SliceStable(out, func(i, j int) bool {
		if rank(out[i]) != rank(out[j]) {
			return rank(out[i]) < rank(out[j])
		}
		return out[i].Source < out[j].Source
	})
	return out
}

// WriteAll persists every table through the target in load order.
func WriteAll(ctx context.Context, target Target, tables []*records.Table) error {
	for _, t := range LoadOrder(tables) {
		if err := target.WriteTable(ctx, t); err != nil {
			return fmt.Errorf("warehouse: write %s: %w", t.Source, err)
		}
	}
	return nil
}

// sqlTarget adapts a Repository to the Target interface using a dialect for
// DDL differences.
type sqlTarget struct {
	repo Repository
	dial dialect
}

func (s *sqlTarget) WriteTable(ctx context.Context, t *records.Table) error {
	if err := s.repo.Exec(ctx, "DROP TABLE IF EXISTS "+s.dial.ident(t.Source)); err != nil {
		return err
	}
	if err := s.repo.Exec(ctx, createTableDDL(t, s.dial)); err != nil {
		return err
	}
	rows := make([][]any, t.Len())
	for i := range rows {
		rows[i] = t.Row(i)
	}
	n, err := s.repo.CopyFrom(ctx, t.Source, t.Columns(), rows)
	if err != nil {
		return err
	}
	if n != int64(t.Len()) {
		return fmt.Errorf("inserted %d of %d rows", n, t.Len())
	}
	return nil
}

func (s *sqlTarget) Close() error {
	s.repo.Close()
	return nil
}
