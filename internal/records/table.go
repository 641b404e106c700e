// Package records defines the in-memory table model shared by every pipeline
// stage. A Table is a named, ordered set of columns with row-major cells.
//
// Cell values are restricted to a small closed set of Go types:
//
//	string, float64, int64, bool, nil
//
// nil means "no data" and is rendered as an empty CSV cell. Stages communicate
// exclusively through Tables: cleaners produce them, dimension and fact
// builders consume and produce them, and the warehouse writer persists them.
package records

import (
	"fmt"
	"math"
	"strconv"
)

// Table is an ordered sequence of rows with named columns. The zero value is
// not usable; construct with New.
type Table struct {
	// Source identifies the originating data source (e.g. "night_trains").
	// Derived tables carry the name of the table itself (e.g. "dim_countries").
	Source string

	columns []string
	index   map[string]int
	rows    [][]any
}

// New returns an empty table with the given source name and column set.
func New(source string, columns ...string) *Table {
	t := &Table{
		Source:  source,
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range t.columns {
		t.index[c] = i
	}
	return t
}

// Columns returns the column names in declaration order. The caller must not
// mutate the returned slice.
func (t *Table) Columns() []string { return t.columns }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Col returns the index of the named column, or -1 if absent.
func (t *Table) Col(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// HasCol reports whether the named column exists.
func (t *Table) HasCol(name string) bool { return t.Col(name) >= 0 }

// AddColumn appends a new column filled with the given default value for all
// existing rows and returns its index. Adding an existing column is a no-op
// that returns the existing index.
func (t *Table) AddColumn(name string, fill any) int {
	if i := t.Col(name); i >= 0 {
		return i
	}
	t.columns = append(t.columns, name)
	i := len(t.columns) - 1
	t.index[name] = i
	for r := range t.rows {
		t.rows[r] = append(t.rows[r], fill)
	}
	return i
}

// Clone returns a deep copy sharing nothing with the receiver. Cleaners work
// on clones so raw tables stay untouched for row-count comparisons.
func (t *Table) Clone() *Table {
	c := New(t.Source, t.columns...)
	c.rows = make([][]any, len(t.rows))
	for i, row := range t.rows {
		c.rows[i] = append([]any(nil), row...)
	}
	return c
}

// AppendRow adds a row. The cell count must match the column count.
func (t *Table) AppendRow(cells ...any) error {
	if len(cells) != len(t.columns) {
		return fmt.Errorf("records: row width %d != column count %d", len(cells), len(t.columns))
	}
	t.rows = append(t.rows, append([]any(nil), cells...))
	return nil
}

// Row returns the backing slice for row r. Mutations write through.
func (t *Table) Row(r int) []any { return t.rows[r] }

// Value returns the cell at (r, col), or nil when the column is absent.
func (t *Table) Value(r int, col string) any {
	i := t.Col(col)
	if i < 0 {
		return nil
	}
	return t.rows[r][i]
}

// Set writes the cell at (r, col). Unknown columns are ignored.
func (t *Table) Set(r int, col string, v any) {
	if i := t.Col(col); i >= 0 {
		t.rows[r][i] = v
	}
}

// String returns the cell at (r, col) as a string. Non-string and nil cells
// report ok=false.
func (t *Table) String(r int, col string) (string, bool) {
	s, ok := t.Value(r, col).(string)
	return s, ok
}

// Float returns the cell at (r, col) as a float64. Integer cells are widened.
// nil, non-numeric, and NaN cells report ok=false.
func (t *Table) Float(r int, col string) (float64, bool) {
	switch v := t.Value(r, col).(type) {
	case float64:
		if math.IsNaN(v) {
			return 0, false
		}
		return v, true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Int returns the cell at (r, col) as an int64.
func (t *Table) Int(r int, col string) (int64, bool) {
	switch v := t.Value(r, col).(type) {
	case int64:
		return v, true
	case float64:
		if math.IsNaN(v) || v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	}
	return 0, false
}

// CellString renders a single cell the way the CSV writer does: nil and NaN
// become the empty string, booleans "true"/"false", floats shortest-form.
func CellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case bool:
		return strconv.FormatBool(c)
	case int64:
		return strconv.FormatInt(c, 10)
	case float64:
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return ""
		}
		return strconv.FormatFloat(c, 'g', -1, 64)
	default:
		return fmt.Sprint(c)
	}
}
