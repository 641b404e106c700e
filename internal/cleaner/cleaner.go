// Package cleaner implements the per-source cleaning stage.
//
// Every source goes through the same non-destructive contract: column names
// are already normalized by the parser, missing values are flagged and filled
// with explicit defaults, numeric coercion failures become NaN plus a flag,
// and a country_code column is resolved where the source carries country
// indicators. A cleaner never removes rows; filtering, where needed, happens
// visibly in fact building.
//
// Cleaners are selected through an explicit registry (see registry.go) rather
// than string checks scattered through the pipeline.
package cleaner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"railetl/internal/records"
)

// ErrMissingColumn reports that a raw table lacks an expected column
// entirely. It is fatal for that source's cleaning stage only: the
// orchestrator excludes the source and the run continues.
var ErrMissingColumn = errors.New("expected column missing")

// SourceCleaner is the uniform per-source cleaning capability.
type SourceCleaner interface {
	// Name returns the source identifier used in reports and the registry.
	Name() string
	// Clean normalizes raw into a processed table. The processed table has
	// exactly as many rows as raw; violations are bugs, not data conditions.
	Clean(ctx context.Context, raw *records.Table) (*records.Table, *Report, error)
}

// Report is the per-source quality report emitted alongside every processed
// table. It feeds the run-level quality document.
type Report struct {
	Source       string             `json:"source"`
	RowsIn       int                `json:"rows_in"`
	RowsOut      int                `json:"rows_out"`
	Completeness map[string]float64 `json:"column_completeness_pct"`
	Filled       map[string]int     `json:"defaults_filled"`
	ParseFailed  int                `json:"parse_failures"`
	Countries    map[string]int     `json:"country_resolution"`
	Warnings     []string           `json:"warnings,omitempty"`
}

func newReport(source string) *Report {
	return &Report{
		Source:       source,
		Completeness: map[string]float64{},
		Filled:       map[string]int{},
		Countries:    map[string]int{},
	}
}

// finish computes completeness percentages and row counts. keyCols limits the
// completeness section to the columns that matter for the source; flag
// columns are never included.
func (r *Report) finish(raw, processed *records.Table, keyCols ...string) {
	r.RowsIn = raw.Len()
	r.RowsOut = processed.Len()
	for _, col := range keyCols {
		if !processed.HasCol(col) {
			continue
		}
		n := 0
		for i := 0; i < processed.Len(); i++ {
			if processed.Value(i, col) != nil {
				n++
			}
		}
		pct := 100.0
		if processed.Len() > 0 {
			pct = float64(n) / float64(processed.Len()) * 100
		}
		r.Completeness[col] = pct
	}
}

func (r *Report) warnf(format string, a ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, a...))
}

// requireColumns returns ErrMissingColumn naming every expected column the
// table lacks.
func requireColumns(t *records.Table, cols ...string) error {
	var missing []string
	for _, c := range cols {
		if !t.HasCol(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: %s: %w", t.Source, strings.Join(missing, ", "), ErrMissingColumn)
	}
	return nil
}
