// Package country is the single authoritative source for country-code
// vocabulary in the pipeline. Every other component resolves heterogeneous
// country indicators (alpha-2 and alpha-3 codes, free-text route names, city
// names, phone prefixes) through this package and receives a member of a
// closed code set, never a raw unvalidated string.
//
// The code universe is the supported European alpha-2 set plus three
// sentinels:
//
//	Unknown — no usable indicator was found
//	Multi   — the indicator names several countries with no single principal
//	Other   — a recognized ISO code outside the supported European set
package country

import "sort"

// Code is an ISO-3166-alpha-2-like country code or one of the sentinels.
type Code string

// Sentinel codes. They are dimension members in their own right; foreign keys
// fall back to them instead of going null.
const (
	Unknown Code = "UNKNOWN"
	Multi   Code = "MULTI"
	Other   Code = "OTHER"
)

// Sentinels lists the sentinel codes in their fixed dimension order.
var Sentinels = []Code{Unknown, Multi, Other}

// names maps every supported alpha-2 code to its English display name.
// This is the one reference list; the dimension builder unions it with
// observed codes so the country dimension is complete even for codes that
// never appear in fact data.
var names = map[Code]string{
	"AL": "Albania",
	"AT": "Austria",
	"BA": "Bosnia and Herzegovina",
	"BE": "Belgium",
	"BG": "Bulgaria",
	"CH": "Switzerland",
	"CZ": "Czechia",
	"DE": "Germany",
	"DK": "Denmark",
	"EE": "Estonia",
	"ES": "Spain",
	"FI": "Finland",
	"FR": "France",
	"GB": "United Kingdom",
	"GR": "Greece",
	"HR": "Croatia",
	"HU": "Hungary",
	"IE": "Ireland",
	"IT": "Italy",
	"LT": "Lithuania",
	"LU": "Luxembourg",
	"LV": "Latvia",
	"MD": "Moldova",
	"ME": "Montenegro",
	"MK": "North Macedonia",
	"NL": "Netherlands",
	"NO": "Norway",
	"PL": "Poland",
	"PT": "Portugal",
	"RO": "Romania",
	"RS": "Serbia",
	"SE": "Sweden",
	"SI": "Slovenia",
	"SK": "Slovakia",
	"UA": "Ukraine",
	"XK": "Kosovo",
}

// aliases maps legacy or agency-specific two-letter spellings onto the
// canonical codes. Eurostat uses EL for Greece and UK for Great Britain.
var aliases = map[string]Code{
	"UK": "GB",
	"EL": "GR",
}

// alpha3 maps ISO-3166 alpha-3 codes of supported countries to alpha-2.
var alpha3 = map[string]Code{
	"ALB": "AL", "AUT": "AT", "BIH": "BA", "BEL": "BE", "BGR": "BG",
	"CHE": "CH", "CZE": "CZ", "DEU": "DE", "DNK": "DK", "EST": "EE",
	"ESP": "ES", "FIN": "FI", "FRA": "FR", "GBR": "GB", "GRC": "GR",
	"HRV": "HR", "HUN": "HU", "IRL": "IE", "ITA": "IT", "LTU": "LT",
	"LUX": "LU", "LVA": "LV", "MDA": "MD", "MNE": "ME", "MKD": "MK",
	"NLD": "NL", "NOR": "NO", "POL": "PL", "PRT": "PT", "ROU": "RO",
	"SRB": "RS", "SWE": "SE", "SVN": "SI", "SVK": "SK", "UKR": "UA",
	"XKX": "XK",
}

// otherISO lists ISO codes the resolver recognizes as real countries that are
// outside the supported European set. They resolve to the Other sentinel
// rather than Unknown so the distinction survives into the dimension.
var otherISO = map[string]struct{}{
	"US": {}, "USA": {}, "CA": {}, "CAN": {}, "JP": {}, "JPN": {},
	"CN": {}, "CHN": {}, "RU": {}, "RUS": {}, "TR": {}, "TUR": {},
	"MA": {}, "MAR": {}, "DZ": {}, "DZA": {}, "TN": {}, "TUN": {},
	"EG": {}, "EGY": {}, "IL": {}, "ISR": {}, "IN": {}, "IND": {},
	"BR": {}, "BRA": {}, "AU": {}, "AUS": {}, "NZ": {}, "NZL": {},
	"KR": {}, "KOR": {}, "BY": {}, "BLR": {}, "IS": {}, "ISL": {},
}

// IsSupported reports whether c is a supported (non-sentinel) country code.
func IsSupported(c Code) bool {
	_, ok := names[c]
	return ok
}

// IsMember reports whether c belongs to the closed code set (supported codes
// and sentinels). Every value the resolver returns satisfies IsMember.
func IsMember(c Code) bool {
	if IsSupported(c) {
		return true
	}
	for _, s := range Sentinels {
		if c == s {
			return true
		}
	}
	return false
}

// Name returns the display name for a code. Sentinels carry fixed names so
// they render as regular dimension rows.
func Name(c Code) string {
	switch c {
	case Unknown:
		return "Unknown"
	case Multi:
		return "Multiple countries"
	case Other:
		return "Other country"
	}
	return names[c]
}

// Supported returns all supported codes, sorted. The slice is freshly
// allocated on every call.
func Supported() []Code {
	out := make([]Code, 0, len(names))
	for c := range names {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
