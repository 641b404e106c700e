package cleaner

import (
	"context"
	"strings"
	"time"

	"railetl/internal/records"
)

// Emissions values arrive in million tonnes; the warehouse stores kilotonnes.
const mioTonnesToKilotonnes = 1000.0

// emissions cleans the Eurostat SDMX greenhouse-gas export. The file is
// already long (one observation per row) but mixes every pollutant and source
// sector; rail-transport CO2 rows are flagged rather than filtered so the
// processed table keeps the raw row count.
type emissions struct{}

func (emissions) Name() string { return "emissions" }

func (c emissions) Clean(ctx context.Context, raw *records.Table) (*records.Table, *Report, error) {
	if err := requireColumns(raw, "geo", "time_period", "obs_value"); err != nil {
		return nil, nil, err
	}
	rep := newReport(c.Name())
	t := raw.Clone()

	for _, col := range []string{"airpol", "src_crf", "unit"} {
		t.AddColumn(col, nil)
	}
	flagMissing(t, rep, "airpol", "")
	flagMissing(t, rep, "src_crf", "")
	flagMissing(t, rep, "unit", "")

	t.AddColumn("year", nil)
	for i := 0; i < t.Len(); i++ {
		t.Set(i, "year", t.Value(i, "time_period"))
	}
	coerceYear(t, rep, "year", int64(time.Now().Year()+1))
	coerceFloat(t, rep, "obs_value")

	// Keep obs_value as published; co2_emissions carries the kilotonne figure.
	t.AddColumn("co2_emissions", nil)
	for i := 0; i < t.Len(); i++ {
		v, ok := t.Float(i, "obs_value")
		if !ok {
			t.Set(i, "co2_emissions", t.Value(i, "obs_value"))
			continue
		}
		if unit := records.CellString(t.Value(i, "unit")); strings.EqualFold(unit, "MIO_T") {
			v *= mioTonnesToKilotonnes
		}
		t.Set(i, "co2_emissions", v)
	}

	t.AddColumn("is_rail_transport", nil)
	for i := 0; i < t.Len(); i++ {
		airpol := records.CellString(t.Value(i, "airpol"))
		src := records.CellString(t.Value(i, "src_crf"))
		t.Set(i, "is_rail_transport",
			strings.Contains(strings.ToUpper(airpol), "CO2") && strings.Contains(src, "1.A.3.c"))
	}

	resolveCountries(t, rep, "geo")

	rep.finish(raw, t, "geo", "year", "obs_value", "co2_emissions", "country_code")
	return t, rep, nil
}
