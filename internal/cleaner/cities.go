package cleaner

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"railetl/internal/records"
)

// nightCities cleans the night-train city export, the catalog's companion
// table with one row per served city. Each row names the stop, its country,
// and the comma-joined ids of the routes calling there; the route count
// drives a connectivity class used by the dashboard collaborators.
type nightCities struct{}

func (nightCities) Name() string { return "night_cities" }

func (c nightCities) Clean(ctx context.Context, raw *records.Table) (*records.Table, *Report, error) {
	if err := requireColumns(raw, "stop_id", "stop_cityname_romanized", "stop_country"); err != nil {
		return nil, nil, err
	}
	rep := newReport(c.Name())
	t := raw.Clone()
	t.AddColumn("stop_route_ids", nil)

	flagMissing(t, rep, "stop_cityname_romanized", "")
	flagMissing(t, rep, "stop_country", "")
	flagMissing(t, rep, "stop_route_ids", "")

	// Romanized names arrive with stray casing and doubled spaces.
	title := cases.Title(language.Und)
	for i := 0; i < t.Len(); i++ {
		s := records.CellString(t.Value(i, "stop_cityname_romanized"))
		t.Set(i, "stop_cityname_romanized", title.String(strings.Join(strings.Fields(s), " ")))
	}

	t.AddColumn("route_count", nil)
	t.AddColumn("city_class", nil)
	for i := 0; i < t.Len(); i++ {
		n := countRouteIDs(records.CellString(t.Value(i, "stop_route_ids")))
		t.Set(i, "route_count", n)
		t.Set(i, "city_class", classifyCity(n))
	}

	resolveCountries(t, rep, "stop_country")

	t.AddColumn("city_uid", nil)
	for i := 0; i < t.Len(); i++ {
		t.Set(i, "city_uid", syntheticUID(c.Name(),
			records.CellString(t.Value(i, "stop_id")),
			records.CellString(t.Value(i, "country_code"))))
	}

	rep.finish(raw, t, "stop_id", "stop_cityname_romanized", "country_code")
	return t, rep, nil
}

// countRouteIDs counts the numeric ids in a comma-joined route-id list.
// Malformed tokens are ignored rather than failed: the count feeds a coarse
// connectivity class, not a join.
func countRouteIDs(s string) int64 {
	var n int64
	for _, tok := range strings.Split(strings.ReplaceAll(s, " ", ""), ",") {
		if tok == "" {
			continue
		}
		digits := true
		for _, r := range tok {
			if r < '0' || r > '9' {
				digits = false
				break
			}
		}
		if digits {
			n++
		}
	}
	return n
}

// classifyCity buckets a city by how many routes call there.
func classifyCity(routes int64) string {
	switch {
	case routes >= 10:
		return "hub_major"
	case routes >= 5:
		return "hub_medium"
	case routes >= 2:
		return "connected"
	default:
		return "terminal"
	}
}
