// Package dimension builds the warehouse dimension tables. Every builder is
// deterministic: surrogate ids come from a stable sort of the member values,
// never from insertion order, so identical inputs always produce identical
// keys. Each dimension carries its sentinel members at the head of the table
// so fact rows can always fall back to a real surrogate key instead of null.
package dimension

import (
	"sort"
	"strings"

	"railetl/internal/country"
	"railetl/internal/records"
)

// UnknownOperator is the sentinel member of the operator dimension.
const UnknownOperator = "UNKNOWN"

// SentinelYear marks observations whose year could not be resolved.
const SentinelYear int64 = 0

// Countries is the country dimension with its code -> surrogate id lookup.
type Countries struct {
	Table *records.Table
	ids   map[country.Code]int64
	// Observed counts how many rows across all sources resolved to each
	// member, for the quality report.
	Observed map[country.Code]int
}

// BuildCountries assembles dim_countries from the static reference list of
// supported codes plus one row per sentinel. Observed codes from the
// processed tables are tallied but never extend the member set: the resolver
// already guarantees membership.
func BuildCountries(sources ...*records.Table) *Countries {
	c := &Countries{
		Table:    records.New("dim_countries", "country_id", "country_code", "country_name"),
		ids:      map[country.Code]int64{},
		Observed: map[country.Code]int{},
	}
	for _, t := range sources {
		if t == nil || !t.HasCol("country_code") {
			continue
		}
		for i := 0; i < t.Len(); i++ {
			if s, ok := t.String(i, "country_code"); ok && s != "" {
				c.Observed[country.Code(s)]++
			}
		}
	}
	members := append([]country.Code(nil), country.Sentinels...)
	members = append(members, country.Supported()...)
	for i, code := range members {
		id := int64(i + 1)
		c.ids[code] = id
		c.Table.AppendRow(id, string(code), country.Name(code))
	}
	return c
}

// ID returns the surrogate key for a code; anything outside the dimension
// maps to the UNKNOWN row.
func (c *Countries) ID(code country.Code) int64 {
	if id, ok := c.ids[code]; ok {
		return id
	}
	return c.ids[country.Unknown]
}

// Len returns the member count, sentinels included.
func (c *Countries) Len() int { return c.Table.Len() }

// Years is the year dimension with its year -> surrogate id lookup.
type Years struct {
	Table *records.Table
	ids   map[int64]int64
	// Implausible counts year values rejected from the dimension.
	Implausible int
}

// BuildYears assembles dim_years from the union of plausible observed years
// across the given tables' year columns. The sentinel year sits at id 1;
// real years follow in ascending order. maxYear bounds plausibility at the
// top, normally the current year plus one.
func BuildYears(maxYear int64, sources ...*records.Table) *Years {
	y := &Years{
		Table: records.New("dim_years", "year_id", "year", "is_after_2010"),
		ids:   map[int64]int64{},
	}
	seen := map[int64]bool{}
	for _, t := range sources {
		if t == nil || !t.HasCol("year") {
			continue
		}
		for i := 0; i < t.Len(); i++ {
			v, ok := t.Int(i, "year")
			if !ok {
				continue
			}
			if v < 1900 || v > maxYear {
				y.Implausible++
				continue
			}
			seen[v] = true
		}
	}
	years := make([]int64, 0, len(seen))
	for v := range seen {
		years = append(years, v)
	}
	sort.Slice(years, func(i, j int) bool { return years[i] < years[j] })

	y.ids[SentinelYear] = 1
	y.Table.AppendRow(int64(1), SentinelYear, false)
	for i, v := range years {
		id := int64(i + 2)
		y.ids[v] = id
		y.Table.AppendRow(id, v, v >= 2010)
	}
	return y
}

// ID returns the surrogate key for a year, or the sentinel row's key for
// years outside the dimension.
func (y *Years) ID(year int64) int64 {
	if id, ok := y.ids[year]; ok {
		return id
	}
	return y.ids[SentinelYear]
}

// Len returns the member count, sentinel included.
func (y *Years) Len() int { return y.Table.Len() }

// Operators is the operator dimension with its name -> surrogate id lookup.
type Operators struct {
	Table *records.Table
	ids   map[string]int64
}

// operatorColumns are scanned, in order, in every processed table.
var operatorColumns = []string{"operators", "agency_name"}

// BuildOperators assembles dim_operators from every operator text field in
// the given tables: comma-split, trimmed, upper-cased, de-duplicated, sorted.
// The UNKNOWN sentinel sits at id 1 whether or not any source produced it.
func BuildOperators(sources ...*records.Table) *Operators {
	o := &Operators{
		Table: records.New("dim_operators", "operator_id", "operator_name"),
		ids:   map[string]int64{},
	}
	seen := map[string]bool{}
	for _, t := range sources {
		if t == nil {
			continue
		}
		for _, col := range operatorColumns {
			if !t.HasCol(col) {
				continue
			}
			for i := 0; i < t.Len(); i++ {
				for _, name := range SplitOperators(records.CellString(t.Value(i, col))) {
					seen[name] = true
				}
			}
		}
	}
	delete(seen, UnknownOperator)
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)

	o.ids[UnknownOperator] = 1
	o.Table.AppendRow(int64(1), UnknownOperator)
	for i, n := range names {
		id := int64(i + 2)
		o.ids[n] = id
		o.Table.AppendRow(id, n)
	}
	return o
}

// ID returns the surrogate key for an operator name (canonicalized the same
// way the builder canonicalizes members); unknown names map to the UNKNOWN
// row.
func (o *Operators) ID(name string) int64 {
	if id, ok := o.ids[canonicalOperator(name)]; ok {
		return id
	}
	return o.ids[UnknownOperator]
}

// Len returns the member count, sentinel included.
func (o *Operators) Len() int { return o.Table.Len() }

// SplitOperators canonicalizes a comma-joined operator list into its distinct
// member names.
func SplitOperators(s string) []string {
	if s == "" {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, part := range strings.Split(s, ",") {
		name := canonicalOperator(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func canonicalOperator(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
