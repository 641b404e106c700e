package country

import (
	"strings"
	"unicode"
)

// Resolve maps an ordered list of text fields onto a member of the closed
// code set. Candidates are given in priority order, most authoritative first
// (e.g. an explicit country-list column before a free-text itinerary before a
// long-name column).
//
// The fallback chain, first hit wins:
//
//  1. direct alpha-2 code in the highest-priority field (per comma token)
//  2. alpha-3 code in the highest-priority field (per comma token)
//  3. embedded alpha-2 token bounded by whitespace/punctuation, any field
//  4. full country name (case- and diacritic-insensitive), any field
//  5. major-city name, any field
//  6. international phone-prefix substring, any field
//  7. Unknown
//
// A comma-separated list naming more than one distinct supported country
// resolves to Multi. A code that is recognized ISO but outside the supported
// European set resolves to Other. Resolve is pure and never fails.
func Resolve(candidates ...string) Code {
	// Steps 1–2: token-wise code lookup on the first non-empty field.
	for _, cand := range candidates {
		if strings.TrimSpace(cand) == "" {
			continue
		}
		if c, decided := resolveCodeList(cand); decided {
			return c
		}
		break // only the highest-priority non-empty field gets steps 1–2
	}

	// Step 3: embedded upper-case alpha-2 token in any field.
	for _, cand := range candidates {
		if c, ok := findEmbeddedCode(cand); ok {
			return c
		}
	}

	// Steps 4–6: name, city, phone prefix. Each step scans every candidate
	// before the chain moves on, so a city match in a low-priority field
	// still beats a phone prefix in a high-priority one.
	for _, step := range []struct{ entries []nameEntry }{
		{foldedNames},
		{sortedCities},
		{sortedPrefixes},
	} {
		for _, cand := range candidates {
			if c, ok := findEntry(cand, step.entries); ok {
				return c
			}
		}
	}

	return Unknown
}

// resolveCodeList applies the per-token alpha-2/alpha-3 lookup to a field
// that may list several comma-separated codes. decided=false means the field
// held no recognizable code at all and the chain should continue.
func resolveCodeList(field string) (Code, bool) {
	var (
		supported []Code
		sawOther  bool
	)
	for _, tok := range strings.Split(field, ",") {
		tok = strings.ToUpper(strings.TrimSpace(tok))
		switch len(tok) {
		case 2:
			if c, ok := canonical2(tok); ok {
				supported = appendDistinct(supported, c)
			} else if _, ok := otherISO[tok]; ok {
				sawOther = true
			}
		case 3:
			if c, ok := alpha3[tok]; ok {
				supported = appendDistinct(supported, c)
			} else if _, ok := otherISO[tok]; ok {
				sawOther = true
			}
		}
	}
	switch {
	case len(supported) > 1:
		return Multi, true
	case len(supported) == 1:
		return supported[0], true
	case sawOther:
		return Other, true
	}
	return Unknown, false
}

// canonical2 maps an upper-case two-letter token to a supported code,
// applying legacy aliases (UK, EL).
func canonical2(tok string) (Code, bool) {
	if c, ok := aliases[tok]; ok {
		return c, true
	}
	if IsSupported(Code(tok)) {
		return Code(tok), true
	}
	return "", false
}

// findEmbeddedCode scans a free-text field for a two-letter upper-case token
// bounded by whitespace or punctuation ("Nightjet AT 490", "BOT-FR-12").
// Lower-case pairs are ignored; words like "to" or "in" must not match.
func findEmbeddedCode(field string) (Code, bool) {
	start := -1
	upper := 0
	flush := func(end int) (Code, bool) {
		if start >= 0 && end-start == 2 && upper == 2 {
			if c, ok := canonical2(field[start:end]); ok {
				return c, true
			}
			if _, ok := otherISO[field[start:end]]; ok {
				return Other, true
			}
		}
		return "", false
	}
	for i, r := range field {
		if unicode.IsLetter(r) {
			if start < 0 {
				start = i
				upper = 0
			}
			if unicode.IsUpper(r) {
				upper++
			}
			continue
		}
		if c, ok := flush(i); ok {
			return c, true
		}
		start = -1
	}
	return flush(len(field))
}

// findEntry locates the entry whose key occurs earliest in the folded field,
// so "Wien - Budapest" resolves by its first station, not its last. Entries
// are pre-sorted longest-first, which breaks position ties in favor of the
// more specific key ("venice" over the "nice" embedded in it).
func findEntry(field string, entries []nameEntry) (Code, bool) {
	f := fold(field)
	if f == "" {
		return "", false
	}
	best := -1
	var bestCode Code
	for _, e := range entries {
		if ix := strings.Index(f, e.key); ix >= 0 && (best < 0 || ix < best) {
			best, bestCode = ix, e.code
		}
	}
	return bestCode, best >= 0
}

func appendDistinct(cs []Code, c Code) []Code {
	for _, have := range cs {
		if have == c {
			return cs
		}
	}
	return append(cs, c)
}
