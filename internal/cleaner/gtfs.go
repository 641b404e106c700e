package cleaner

import (
	"context"
	"fmt"

	"railetl/internal/country"
	"railetl/internal/records"
)

// gtfsFile identifies which table of a GTFS feed a cleaner handles.
type gtfsFile string

const (
	gtfsAgency gtfsFile = "agency"
	gtfsRoutes gtfsFile = "routes"
	gtfsStops  gtfsFile = "stops"
)

// gtfs cleans one file of a national transit feed. The feed's country is a
// property of the source, not of any row, so the country_code column is
// stamped from the feed rather than resolved per row. Identifiers are
// re-prefixed with the feed name so ids from different feeds never collide.
type gtfs struct {
	feed string
	code country.Code
	file gtfsFile
}

func (g gtfs) Name() string { return fmt.Sprintf("%s_%s", g.feed, g.file) }

func (g gtfs) Clean(ctx context.Context, raw *records.Table) (*records.Table, *Report, error) {
	switch g.file {
	case gtfsAgency:
		return g.cleanAgency(raw)
	case gtfsRoutes:
		return g.cleanRoutes(raw)
	case gtfsStops:
		return g.cleanStops(raw)
	}
	return nil, nil, fmt.Errorf("gtfs: unknown file kind %q", g.file)
}

func (g gtfs) cleanAgency(raw *records.Table) (*records.Table, *Report, error) {
	if err := requireColumns(raw, "agency_name"); err != nil {
		return nil, nil, err
	}
	rep := newReport(g.Name())
	t := raw.Clone()

	t.AddColumn("agency_id", nil)
	flagMissing(t, rep, "agency_id", "")
	flagMissing(t, rep, "agency_name", "UNKNOWN")
	normalizeOperators(t, "agency_name")
	stampCountry(t, rep, g.code)
	g.prefixIDs(t, "agency_id")
	g.flagDuplicates(t, rep, "agency_id")

	rep.finish(raw, t, "agency_id", "agency_name", "country_code")
	return t, rep, nil
}

func (g gtfs) cleanRoutes(raw *records.Table) (*records.Table, *Report, error) {
	if err := requireColumns(raw, "route_id"); err != nil {
		return nil, nil, err
	}
	rep := newReport(g.Name())
	t := raw.Clone()

	for _, col := range []string{"agency_id", "route_long_name", "route_type"} {
		t.AddColumn(col, nil)
	}
	flagMissing(t, rep, "route_long_name", "")
	flagMissing(t, rep, "route_type", nil)
	coerceFloat(t, rep, "route_type")
	stampCountry(t, rep, g.code)
	g.prefixIDs(t, "route_id", "agency_id")
	g.flagDuplicates(t, rep, "route_id")

	t.AddColumn("route_uid", nil)
	for i := 0; i < t.Len(); i++ {
		t.Set(i, "route_uid", syntheticUID(g.Name(),
			records.CellString(t.Value(i, "route_id")),
			records.CellString(t.Value(i, "route_long_name"))))
	}

	rep.finish(raw, t, "route_id", "route_long_name", "route_type", "country_code")
	return t, rep, nil
}

func (g gtfs) cleanStops(raw *records.Table) (*records.Table, *Report, error) {
	if err := requireColumns(raw, "stop_id"); err != nil {
		return nil, nil, err
	}
	rep := newReport(g.Name())
	t := raw.Clone()

	for _, col := range []string{"stop_name", "stop_lat", "stop_lon"} {
		t.AddColumn(col, nil)
	}
	flagMissing(t, rep, "stop_name", "UNNAMED STOP")
	coerceFloat(t, rep, "stop_lat")
	coerceFloat(t, rep, "stop_lon")
	flagMissing(t, rep, "stop_lat", nil)
	flagMissing(t, rep, "stop_lon", nil)

	// Coordinates outside WGS84 bounds are almost always sign or scale slips
	// in the feed; keep them, flag them.
	t.AddColumn("coords_implausible", false)
	for i := 0; i < t.Len(); i++ {
		lat, latOK := t.Float(i, "stop_lat")
		lon, lonOK := t.Float(i, "stop_lon")
		if (latOK && (lat < -90 || lat > 90)) || (lonOK && (lon < -180 || lon > 180)) {
			t.Set(i, "coords_implausible", true)
			rep.warnf("%s: row %d: coordinates out of bounds (%g, %g)", g.Name(), i, lat, lon)
		}
	}

	stampCountry(t, rep, g.code)
	g.prefixIDs(t, "stop_id")
	g.flagDuplicates(t, rep, "stop_id")

	t.AddColumn("stop_uid", nil)
	for i := 0; i < t.Len(); i++ {
		t.Set(i, "stop_uid", syntheticUID(g.Name(),
			records.CellString(t.Value(i, "stop_id"))))
	}

	rep.finish(raw, t, "stop_id", "stop_name", "stop_lat", "stop_lon", "country_code")
	return t, rep, nil
}

// prefixIDs namespaces identifier columns with the feed name. Empty cells
// stay empty.
func (g gtfs) prefixIDs(t *records.Table, cols ...string) {
	for _, col := range cols {
		if !t.HasCol(col) {
			continue
		}
		for i := 0; i < t.Len(); i++ {
			s := records.CellString(t.Value(i, col))
			if s == "" {
				continue
			}
			t.Set(i, col, g.feed+":"+s)
		}
	}
}

// flagDuplicates adds <col>_duplicate, marking the second and later
// occurrences of each identifier.
func (g gtfs) flagDuplicates(t *records.Table, rep *Report, col string) {
	flag := col + "_duplicate"
	t.AddColumn(flag, false)
	seen := map[string]bool{}
	for i := 0; i < t.Len(); i++ {
		s := records.CellString(t.Value(i, col))
		if s == "" {
			continue
		}
		if seen[s] {
			t.Set(i, flag, true)
			rep.warnf("%s: duplicate %s %q", g.Name(), col, s)
			continue
		}
		seen[s] = true
	}
}
