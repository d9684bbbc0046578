// Package geotext provides deterministic geographic inference from
// cheap text signals: postal-code patterns, top-level domains, and
// canonical city identifiers.
package geotext

import (
	"regexp"
	"strings"
)

// PostalMatch is one detected postal code with the country its format
// belongs to. City is set only for styles that embed one (US).
type PostalMatch struct {
	Code    string
	Style   string
	Country string
	City    string
}

type postalPattern struct {
	style   string
	country string
	re      *regexp.Regexp
	// cityGroup is the capture group index holding a city name, 0 if none.
	cityGroup int
	codeGroup int
}

// One pattern per major postal-code style. Plain 5-digit codes are
// ambiguous across countries and are deliberately not matched.
var postalPatterns = []postalPattern{
	{
		style:     "uk",
		country:   "United Kingdom",
		re:        regexp.MustCompile(`\b([A-Z]{1,2}[0-9][A-Z0-9]?[ ]?[0-9][A-Z]{2})\b`),
		codeGroup: 1,
	},
	{
		style:     "nl",
		country:   "Netherlands",
		re:        regexp.MustCompile(`\b([1-9][0-9]{3}[ ]?[A-Z]{2})\b`),
		codeGroup: 1,
	},
	{
		style:     "ca",
		country:   "Canada",
		re:        regexp.MustCompile(`\b([ABCEGHJ-NPRSTVXY][0-9][A-Z][ ]?[0-9][A-Z][0-9])\b`),
		codeGroup: 1,
	},
	{
		style:     "jp",
		country:   "Japan",
		re:        regexp.MustCompile(`(?:〒[ ]?)?\b([0-9]{3}-[0-9]{4})\b`),
		codeGroup: 1,
	},
	{
		style:     "us",
		country:   "United States",
		re:        regexp.MustCompile(`\b([A-Z][a-zA-Z .']+),[ ]?[A-Z]{2}[ ]+([0-9]{5})(?:-[0-9]{4})?\b`),
		cityGroup: 1,
		codeGroup: 2,
	},
}

// DetectPostal scans text for postal codes, one match per style, in
// pattern order. US is matched before bare patterns would swallow it,
// so styles are tried in declaration order with dedup by style.
func DetectPostal(text string) []PostalMatch {
	var out []PostalMatch
	for _, p := range postalPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		match := PostalMatch{
			Code:    strings.TrimSpace(m[p.codeGroup]),
			Style:   p.style,
			Country: p.country,
		}
		if p.cityGroup > 0 {
			match.City = strings.TrimSpace(m[p.cityGroup])
		}
		out = append(out, match)
	}
	return out
}
