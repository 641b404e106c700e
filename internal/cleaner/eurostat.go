package cleaner

import (
	"context"
	"strconv"
	"strings"
	"time"

	"railetl/internal/records"
)

// eurostatWide cleans the wide Eurostat exports: one row per series, one
// column per year, and a composite first column holding comma-joined series
// metadata. The passenger statistics carry (freq, unit, vehicle, geo), the
// rail-traffic series (freq, train, vehicle, mot_nrg, unit, geo); the field
// list is read from the header, so both shapes share one cleaner. Cleaning
// decomposes the metadata and coerces the year columns in place; the reshape
// to one-observation-per-row happens separately and visibly via MeltYears.
type eurostatWide struct{ name string }

func (c eurostatWide) Name() string { return c.name }

func (c eurostatWide) Clean(ctx context.Context, raw *records.Table) (*records.Table, *Report, error) {
	composite := compositeColumn(raw)
	if composite == "" {
		return nil, nil, requireColumns(raw, "<composite metadata column>")
	}
	years := yearColumns(raw)
	if len(years) == 0 {
		return nil, nil, requireColumns(raw, "<year columns>")
	}
	rep := newReport(c.Name())
	t := raw.Clone()

	parts := metadataParts(composite)
	for _, p := range parts {
		t.AddColumn(p, nil)
	}
	for i := 0; i < t.Len(); i++ {
		vals := strings.Split(records.CellString(t.Value(i, composite)), ",")
		for j, p := range parts {
			if j < len(vals) {
				if v := strings.TrimSpace(vals[j]); v != "" {
					t.Set(i, p, v)
					continue
				}
			}
			rep.Filled[p]++
		}
	}
	if !t.HasCol("geo") {
		return nil, nil, requireColumns(t, "geo")
	}

	for _, col := range years {
		coerceFloat(t, rep, col)
	}
	resolveCountries(t, rep, "geo")

	rep.finish(raw, t, append([]string{"geo", "country_code"}, years...)...)
	return t, rep, nil
}

// compositeColumn finds the comma-joined metadata column, conventionally the
// first one. Eurostat writes its header as "freq,unit,vehicle,geo\TIME_PERIOD".
func compositeColumn(t *records.Table) string {
	for _, c := range t.Columns() {
		if strings.Contains(c, ",") {
			return c
		}
	}
	return ""
}

// metadataParts splits the composite header into its field names, dropping
// the "\TIME_PERIOD" tail.
func metadataParts(header string) []string {
	if i := strings.IndexByte(header, '\\'); i >= 0 {
		header = header[:i]
	}
	var parts []string
	for _, p := range strings.Split(header, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// yearColumns returns the columns whose names are four-digit years, in
// declaration order.
func yearColumns(t *records.Table) []string {
	var cols []string
	for _, c := range t.Columns() {
		if len(c) != 4 {
			continue
		}
		if _, err := strconv.Atoi(c); err == nil {
			cols = append(cols, c)
		}
	}
	return cols
}

// MeltYears reshapes a wide year-columned processed table into one row per
// (series, year) observation. keep lists the series columns to carry over;
// the measure lands in valueName with a <valueName>_missing flag for cells
// the source published as not-available. Implausible years are kept but
// flagged, mirroring the row-level policy of the cleaners.
func MeltYears(t *records.Table, valueName string, keep ...string) *records.Table {
	years := yearColumns(t)
	maxYear := int64(time.Now().Year() + 1)
	cols := append(append([]string(nil), keep...),
		"year", "year_implausible", valueName, valueName+"_missing")
	out := records.New(t.Source, cols...)
	row := make([]any, len(cols))
	for i := 0; i < t.Len(); i++ {
		for _, yc := range years {
			for j, k := range keep {
				row[j] = t.Value(i, k)
			}
			y, _ := strconv.ParseInt(yc, 10, 64)
			row[len(keep)] = y
			row[len(keep)+1] = y < 1900 || y > maxYear
			v := t.Value(i, yc)
			row[len(keep)+2] = v
			row[len(keep)+3] = v == nil
			out.AppendRow(row...)
		}
	}
	return out
}
