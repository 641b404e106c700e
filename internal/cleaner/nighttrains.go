package cleaner

import (
	"context"
	"strings"

	"railetl/internal/records"
)

// nightTrains cleans the night-train catalog export. One row per listed
// route; the countries, itinerary and route name fields are free text and
// feed the country resolver in that order.
type nightTrains struct{}

func (nightTrains) Name() string { return "night_trains" }

func (c nightTrains) Clean(ctx context.Context, raw *records.Table) (*records.Table, *Report, error) {
	if err := requireColumns(raw, "route_id", "operators", "countries"); err != nil {
		return nil, nil, err
	}
	rep := newReport(c.Name())
	t := raw.Clone()

	for _, col := range []string{"night_train", "itinerary", "route_long_name"} {
		t.AddColumn(col, nil)
	}
	flagMissing(t, rep, "operators", "UNKNOWN")
	flagMissing(t, rep, "countries", "")
	flagMissing(t, rep, "itinerary", "")
	flagMissing(t, rep, "route_long_name", "")
	// The catalog lists night trains; an absent marker means listed-as-such.
	flagMissing(t, rep, "night_train", "yes")

	t.AddColumn("is_night_train", nil)
	for i := 0; i < t.Len(); i++ {
		s := strings.ToLower(strings.TrimSpace(records.CellString(t.Value(i, "night_train"))))
		t.Set(i, "is_night_train", s == "yes" || s == "true" || s == "1" || s == "x")
	}

	normalizeOperators(t, "operators")

	// Endpoints come out of the itinerary, which reads "A - B - ... - Z".
	t.AddColumn("origin", nil)
	t.AddColumn("destination", nil)
	for i := 0; i < t.Len(); i++ {
		stops := splitItinerary(records.CellString(t.Value(i, "itinerary")))
		if len(stops) == 0 {
			continue
		}
		t.Set(i, "origin", stops[0])
		t.Set(i, "destination", stops[len(stops)-1])
	}

	resolveCountries(t, rep, "countries", "itinerary", "route_long_name")

	t.AddColumn("route_uid", nil)
	for i := 0; i < t.Len(); i++ {
		t.Set(i, "route_uid", syntheticUID(c.Name(),
			records.CellString(t.Value(i, "route_id")),
			records.CellString(t.Value(i, "route_long_name"))))
	}

	rep.finish(raw, t, "route_id", "operators", "countries", "itinerary", "country_code")
	return t, rep, nil
}

// splitItinerary breaks "Wien - Budapest - Bucuresti" into its stops. The
// catalog mixes spaced hyphens, en dashes, "A to B" phrasing, and bare
// hyphens; city names with inner hyphens survive because bare hyphens are
// only treated as separators when no spaced form is present.
func splitItinerary(s string) []string {
	if s == "" {
		return nil
	}
	sep := "-"
	for _, cand := range []string{" - ", " – ", " to "} {
		if strings.Contains(s, cand) {
			sep = cand
			break
		}
	}
	var stops []string
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			stops = append(stops, p)
		}
	}
	return stops
}
