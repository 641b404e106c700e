package country

import "sort"

// cities maps major European rail cities to their country. Keys are stored
// folded (lower-case, no diacritics); both local and English spellings are
// listed because route itineraries mix them freely.
var cities = map[string]Code{
	"amsterdam":    "NL",
	"antwerpen":    "BE",
	"athina":       "GR",
	"athens":       "GR",
	"barcelona":    "ES",
	"basel":        "CH",
	"belgrade":     "RS",
	"beograd":      "RS",
	"berlin":       "DE",
	"bern":         "CH",
	"bratislava":   "SK",
	"bruxelles":    "BE",
	"brussels":     "BE",
	"bucharest":    "RO",
	"bucuresti":    "RO",
	"budapest":     "HU",
	"chisinau":     "MD",
	"cologne":      "DE",
	"copenhagen":   "DK",
	"dublin":       "IE",
	"frankfurt":    "DE",
	"geneva":       "CH",
	"geneve":       "CH",
	"hamburg":      "DE",
	"helsinki":     "FI",
	"innsbruck":    "AT",
	"kobenhavn":    "DK",
	"koln":         "DE",
	"krakow":       "PL",
	"kyiv":         "UA",
	"lisboa":       "PT",
	"lisbon":       "PT",
	"ljubljana":    "SI",
	"london":       "GB",
	"luxembourg":   "LU",
	"lyon":         "FR",
	"madrid":       "ES",
	"malmo":        "SE",
	"marseille":    "FR",
	"milan":        "IT",
	"milano":       "IT",
	"minsk":        Other, // recognized, outside the supported set
	"munchen":      "DE",
	"munich":       "DE",
	"nice":         "FR",
	"oslo":         "NO",
	"paris":        "FR",
	"podgorica":    "ME",
	"porto":        "PT",
	"prague":       "CZ",
	"praha":        "CZ",
	"riga":         "LV",
	"roma":         "IT",
	"rome":         "IT",
	"rotterdam":    "NL",
	"sarajevo":     "BA",
	"skopje":       "MK",
	"sofia":        "BG",
	"stockholm":    "SE",
	"strasbourg":   "FR",
	"stuttgart":    "DE",
	"tallinn":      "EE",
	"thessaloniki": "GR",
	"tirana":       "AL",
	"venezia":      "IT",
	"venice":       "IT",
	"vienna":       "AT",
	"vilnius":      "LT",
	"warsaw":       "PL",
	"warszawa":     "PL",
	"wien":         "AT",
	"zagreb":       "HR",
	"zurich":       "CH",
}

// localNames lists frequent local-language country spellings used by the
// name-matching step alongside the English display names. Keys are folded.
var localNames = map[string]Code{
	"osterreich":   "AT",
	"belgie":       "BE",
	"belgique":     "BE",
	"schweiz":      "CH",
	"suisse":       "CH",
	"cesko":        "CZ",
	"deutschland":  "DE",
	"danmark":      "DK",
	"espana":       "ES",
	"suomi":        "FI",
	"hrvatska":     "HR",
	"magyarorszag": "HU",
	"italia":       "IT",
	"nederland":    "NL",
	"norge":        "NO",
	"polska":       "PL",
	"sverige":      "SE",
	"slovensko":    "SK",
}

// phonePrefixes maps international dialing prefixes to countries. Matching is
// substring-based and lowest-confidence, so it sits last in the fallback
// chain. Longer prefixes must win over shorter ones ("+383" before "+38").
var phonePrefixes = map[string]Code{
	"+30":  "GR",
	"+31":  "NL",
	"+32":  "BE",
	"+33":  "FR",
	"+34":  "ES",
	"+351": "PT",
	"+352": "LU",
	"+353": "IE",
	"+355": "AL",
	"+358": "FI",
	"+359": "BG",
	"+36":  "HU",
	"+370": "LT",
	"+371": "LV",
	"+372": "EE",
	"+373": "MD",
	"+380": "UA",
	"+381": "RS",
	"+382": "ME",
	"+383": "XK",
	"+385": "HR",
	"+386": "SI",
	"+387": "BA",
	"+389": "MK",
	"+39":  "IT",
	"+40":  "RO",
	"+41":  "CH",
	"+420": "CZ",
	"+421": "SK",
	"+43":  "AT",
	"+44":  "GB",
	"+45":  "DK",
	"+46":  "SE",
	"+47":  "NO",
	"+48":  "PL",
	"+49":  "DE",
}

// foldedNames and sortedCities/sortedPrefixes are match orders precomputed at
// init time so resolution is deterministic: longer keys first, then
// lexicographic, so "north macedonia" is tried before "macedonia"-style
// substrings and "+383" before "+38".
var (
	foldedNames    []nameEntry
	sortedCities   []nameEntry
	sortedPrefixes []nameEntry
)

type nameEntry struct {
	key  string
	code Code
}

func init() {
	for c, n := range names {
		foldedNames = append(foldedNames, nameEntry{key: fold(n), code: c})
	}
	for k, c := range localNames {
		foldedNames = append(foldedNames, nameEntry{key: k, code: c})
	}
	for k, c := range cities {
		sortedCities = append(sortedCities, nameEntry{key: k, code: c})
	}
	for k, c := range phonePrefixes {
		sortedPrefixes = append(sortedPrefixes, nameEntry{key: k, code: c})
	}
	byLenThenKey := func(es []nameEntry) {
		sort.Slice(es, func(i, j int) bool {
			if len(es[i].key) != len(es[j].key) {
				return len(es[i].key) > len(es[j].key)
			}
			return es[i].key < es[j].key
		})
	}
	byLenThenKey(foldedNames)
	byLenThenKey(sortedCities)
	byLenThenKey(sortedPrefixes)
}
