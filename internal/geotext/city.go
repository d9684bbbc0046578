package geotext

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// CanonicalCityID derives a stable identifier from a display city name:
// diacritics folded, lowercased, non-alphanumerics collapsed to dashes.
// "São Paulo" and "Sao Paulo" map to the same identifier.
func CanonicalCityID(city string) string {
	folded, _, err := transform.String(foldDiacritics, city)
	if err != nil {
		folded = city
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	lastDash := true // suppress leading dash
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
