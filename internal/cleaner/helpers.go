package cleaner

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"

	"railetl/internal/country"
	"railetl/internal/records"
)

// groupedNumber matches numbers whose commas are thousands separators.
var groupedNumber = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+(\.\d+)?$`)

// flagMissing adds a <col>_missing boolean column, replaces missing cells
// with fill, and records the fill count in the report. A nil fill leaves the
// cell empty but still flags it.
func flagMissing(t *records.Table, rep *Report, col string, fill any) {
	flag := col + "_missing"
	t.AddColumn(flag, false)
	for i := 0; i < t.Len(); i++ {
		if t.Value(i, col) != nil {
			continue
		}
		t.Set(i, flag, true)
		if fill != nil {
			t.Set(i, col, fill)
		}
		rep.Filled[col]++
	}
}

// coerceFloat rewrites col in place as float64. Cells that do not parse
// become NaN and are flagged in <col>_parse_failed; missing cells stay nil
// and are not counted as failures.
func coerceFloat(t *records.Table, rep *Report, col string) {
	flag := col + "_parse_failed"
	t.AddColumn(flag, false)
	for i := 0; i < t.Len(); i++ {
		v := t.Value(i, col)
		if v == nil {
			continue
		}
		switch x := v.(type) {
		case float64:
			continue
		case int64:
			t.Set(i, col, float64(x))
			continue
		case string:
			s := strings.TrimSpace(x)
			// Eurostat publishes ":" for not-available.
			if s == "" || s == ":" {
				t.Set(i, col, nil)
				continue
			}
			// Some exports attach observation flags after the number.
			if j := strings.IndexByte(s, ' '); j > 0 {
				s = s[:j]
			}
			// Commas are stripped only when they group digits ("1,234").
			// A decimal comma ("1,5") must fail the parse, never silently
			// become 15.
			if groupedNumber.MatchString(s) {
				s = strings.ReplaceAll(s, ",", "")
			}
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				t.Set(i, col, math.NaN())
				t.Set(i, flag, true)
				rep.ParseFailed++
				continue
			}
			t.Set(i, col, f)
		default:
			t.Set(i, col, math.NaN())
			t.Set(i, flag, true)
			rep.ParseFailed++
		}
	}
}

// coerceYear rewrites col as int64 years and flags implausible ones in
// <col>_implausible. maxYear is normally the current year plus one.
func coerceYear(t *records.Table, rep *Report, col string, maxYear int64) {
	flag := col + "_implausible"
	t.AddColumn(flag, false)
	for i := 0; i < t.Len(); i++ {
		v := t.Value(i, col)
		if v == nil {
			continue
		}
		var y int64
		switch x := v.(type) {
		case int64:
			y = x
		case float64:
			y = int64(x)
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
			if err != nil {
				t.Set(i, col, nil)
				t.Set(i, flag, true)
				rep.ParseFailed++
				continue
			}
			y = n
		}
		t.Set(i, col, y)
		if y < 1900 || y > maxYear {
			t.Set(i, flag, true)
			rep.warnf("%s: row %d: implausible year %d", t.Source, i, y)
		}
	}
}

// resolveCountries adds a country_code column resolved from the listed
// candidate columns, in order, and tallies the outcomes in the report. The
// resolver never fails; rows without any usable indicator get the UNKNOWN
// sentinel.
func resolveCountries(t *records.Table, rep *Report, candidateCols ...string) {
	t.AddColumn("country_code", nil)
	fields := make([]string, 0, len(candidateCols))
	for i := 0; i < t.Len(); i++ {
		fields = fields[:0]
		for _, col := range candidateCols {
			if !t.HasCol(col) {
				continue
			}
			fields = append(fields, records.CellString(t.Value(i, col)))
		}
		code := country.Resolve(fields...)
		t.Set(i, "country_code", string(code))
		rep.Countries[string(code)]++
	}
}

// stampCountry sets a constant country_code on every row, for sources whose
// geography is a property of the feed rather than the row.
func stampCountry(t *records.Table, rep *Report, code country.Code) {
	t.AddColumn("country_code", string(code))
	rep.Countries[string(code)] += t.Len()
}

// normalizeOperators rewrites an operator list column to a canonical form:
// comma-split, trimmed, upper-cased, de-duplicated, re-joined in input order.
func normalizeOperators(t *records.Table, col string) {
	for i := 0; i < t.Len(); i++ {
		s := records.CellString(t.Value(i, col))
		if s == "" {
			continue
		}
		seen := map[string]bool{}
		var out []string
		for _, part := range strings.Split(s, ",") {
			p := strings.ToUpper(strings.TrimSpace(part))
			if p == "" || seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
		t.Set(i, col, strings.Join(out, ","))
	}
}

// syntheticUID derives a stable synthetic identifier from the source name
// and the row's natural key fields. Identical inputs yield identical UIDs
// across runs and platforms.
func syntheticUID(source string, parts ...string) string {
	h := xxh3.New()
	h.WriteString(source)
	for _, p := range parts {
		h.WriteString("\x1f")
		h.WriteString(p)
	}
	return fmt.Sprintf("%s-%016x", source, h.Sum64())
}
