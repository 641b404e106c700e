// Package fact builds the warehouse fact tables from processed sources and
// the finished dimensions. Fact rows never carry null foreign keys: any
// unresolved reference maps to the dimension's sentinel row and is counted in
// the builder's report.
package fact

import (
	"railetl/internal/country"
	"railetl/internal/dimension"
	"railetl/internal/records"
)

// NightTrainsReport summarizes the sentinel fallbacks taken while building
// facts_night_trains.
type NightTrainsReport struct {
	Rows              int `json:"rows"`
	UnknownCountries  int `json:"unknown_country_keys"`
	SentinelYears     int `json:"sentinel_year_keys"`
	UnknownOperators  int `json:"unknown_operator_keys"`
	MissingRouteNames int `json:"missing_route_names"`
}

// BuildNightTrains derives facts_night_trains from the processed night-train
// catalog. One fact row per catalog row; the table is regenerated whole on
// every run. Multi-operator routes reference the first listed operator, the
// full list stays available upstream in the processed table.
func BuildNightTrains(trains *records.Table, countries *dimension.Countries, years *dimension.Years, operators *dimension.Operators) (*records.Table, *NightTrainsReport) {
	out := records.New("facts_night_trains",
		"fact_id", "route_id", "night_train", "country_id", "year_id", "operator_id")
	rep := &NightTrainsReport{}
	if trains == nil {
		return out, rep
	}
	for i := 0; i < trains.Len(); i++ {
		code, _ := trains.String(i, "country_code")
		countryID := countries.ID(country.Code(code))
		if countryID == countries.ID(country.Unknown) {
			rep.UnknownCountries++
		}

		yearID := years.ID(dimension.SentinelYear)
		if y, ok := trains.Int(i, "year"); ok {
			yearID = years.ID(y)
		}
		if yearID == years.ID(dimension.SentinelYear) {
			rep.SentinelYears++
		}

		operatorID := operators.ID(dimension.UnknownOperator)
		if ops := dimension.SplitOperators(records.CellString(trains.Value(i, "operators"))); len(ops) > 0 {
			operatorID = operators.ID(ops[0])
		}
		if operatorID == operators.ID(dimension.UnknownOperator) {
			rep.UnknownOperators++
		}

		if records.CellString(trains.Value(i, "route_long_name")) == "" {
			rep.MissingRouteNames++
		}

		out.AppendRow(
			int64(out.Len()+1),
			records.CellString(trains.Value(i, "route_id")),
			records.CellString(trains.Value(i, "night_train")),
			countryID,
			yearID,
			operatorID,
		)
	}
	rep.Rows = out.Len()
	return out, rep
}
