package warehouse

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"railetl/internal/records"
)

// csvTarget writes one <table>.csv per warehouse table into a directory.
// This is the default target; the reporting API reads these files directly.
type csvTarget struct {
	dir string
}

func newCSVTarget(dir string) (*csvTarget, error) {
	if dir == "" {
		return nil, fmt.Errorf("csv: directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("csv: mkdir %s: %w", dir, err)
	}
	return &csvTarget{dir: dir}, nil
}

func (c *csvTarget) WriteTable(ctx context.Context, t *records.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(c.dir, t.Source+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(t.Columns()); err != nil {
		f.Close()
		return fmt.Errorf("csv: %s: header: %w", t.Source, err)
	}
	row := make([]string, len(t.Columns()))
	for i := 0; i < t.Len(); i++ {
		for j, v := range t.Row(i) {
			row[j] = records.CellString(v)
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("csv: %s: row %d: %w", t.Source, i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("csv: %s: flush: %w", t.Source, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("csv: %s: close: %w", t.Source, err)
	}
	return nil
}

func (c *csvTarget) Close() error { return nil }
