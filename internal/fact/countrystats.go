package fact

import (
	"math"
	"sort"

	"railetl/internal/country"
	"railetl/internal/dimension"
	"railetl/internal/records"
)

// FillStats counts, per metric, how each missing cell was resolved. The
// chain is fixed: the country's own mean across years, then the global mean,
// then explicit no-data. Never random, never silent.
type FillStats struct {
	Observed    int `json:"observed"`
	CountryMean int `json:"filled_country_mean"`
	GlobalMean  int `json:"filled_global_mean"`
	NoData      int `json:"no_data"`
}

// CountryStatsReport summarizes the build of facts_country_stats.
type CountryStatsReport struct {
	Rows           int       `json:"rows"`
	Passengers     FillStats `json:"passengers"`
	CO2Emissions   FillStats `json:"co2_emissions"`
	RatioNoData    int       `json:"co2_per_passenger_no_data"`
	DivisionGuards int       `json:"division_guards"`
}

// statKey addresses one (country, year) cell of the joined table.
type statKey struct {
	code country.Code
	year int64
}

// metric accumulates observations for one measure across all its source rows
// and answers the fill chain.
type metric struct {
	sum   map[statKey]float64
	count map[statKey]int
}

func newMetric() *metric {
	return &metric{sum: map[statKey]float64{}, count: map[statKey]int{}}
}

func (m *metric) add(k statKey, v float64) {
	m.sum[k] += v
	m.count[k]++
}

// mean returns the cell's observed mean.
func (m *metric) mean(k statKey) (float64, bool) {
	if m.count[k] == 0 {
		return 0, false
	}
	return m.sum[k] / float64(m.count[k]), true
}

// countryMean averages the cell means of one country across all its years.
func (m *metric) countryMean(code country.Code) (float64, bool) {
	var sum float64
	n := 0
	for k := range m.count {
		if k.code != code {
			continue
		}
		v, _ := m.mean(k)
		sum += v
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// globalMean averages all cell means.
func (m *metric) globalMean() (float64, bool) {
	var sum float64
	n := 0
	for k := range m.count {
		v, _ := m.mean(k)
		sum += v
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// fill resolves one cell through the documented chain and tallies the
// outcome. A no-data outcome is NaN, which the writers render as empty.
func (m *metric) fill(k statKey, stats *FillStats) float64 {
	if v, ok := m.mean(k); ok {
		stats.Observed++
		return v
	}
	if v, ok := m.countryMean(k.code); ok {
		stats.CountryMean++
		return v
	}
	if v, ok := m.globalMean(); ok {
		stats.GlobalMean++
		return v
	}
	stats.NoData++
	return math.NaN()
}

// BuildCountryStats derives facts_country_stats from the long-form passenger
// observations and the processed emissions table. The two sides are joined
// full-outer on (country_code, year): a cell present in either source yields
// a fact row. Emissions rows only contribute when flagged as rail-transport
// CO2; nothing else in that export describes this measure.
func BuildCountryStats(passengers, emissions *records.Table, countries *dimension.Countries, years *dimension.Years) (*records.Table, *CountryStatsReport) {
	rep := &CountryStatsReport{}
	pax := newMetric()
	co2 := newMetric()
	cells := map[statKey]bool{}

	collect := func(t *records.Table, valueCol string, m *metric, railOnly bool) {
		if t == nil {
			return
		}
		for i := 0; i < t.Len(); i++ {
			if railOnly {
				if rail, _ := t.Value(i, "is_rail_transport").(bool); !rail {
					continue
				}
			}
			code, _ := t.String(i, "country_code")
			year, yearOK := t.Int(i, "year")
			if code == "" || !yearOK {
				continue
			}
			k := statKey{code: country.Code(code), year: year}
			cells[k] = true
			if v, ok := t.Float(i, valueCol); ok {
				m.add(k, v)
			}
		}
	}
	collect(passengers, "passengers", pax, false)
	collect(emissions, "co2_emissions", co2, true)

	keys := make([]statKey, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].code != keys[j].code {
			return keys[i].code < keys[j].code
		}
		return keys[i].year < keys[j].year
	})

	out := records.New("facts_country_stats",
		"stat_id", "country_id", "year_id", "passengers", "co2_emissions", "co2_per_passenger")
	for _, k := range keys {
		p := pax.fill(k, &rep.Passengers)
		c := co2.fill(k, &rep.CO2Emissions)

		ratio := math.NaN()
		switch {
		case math.IsNaN(p) || math.IsNaN(c):
			rep.RatioNoData++
		case p == 0:
			rep.DivisionGuards++
			rep.RatioNoData++
		default:
			ratio = c / p
			if math.IsInf(ratio, 0) || math.IsNaN(ratio) {
				ratio = math.NaN()
				rep.DivisionGuards++
				rep.RatioNoData++
			}
		}

		out.AppendRow(
			int64(out.Len()+1),
			countries.ID(k.code),
			years.ID(k.year),
			asCell(p),
			asCell(c),
			asCell(ratio),
		)
	}
	rep.Rows = out.Len()
	return out, rep
}

// asCell maps a no-data NaN to a nil cell so every writer renders it the
// same way.
func asCell(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
