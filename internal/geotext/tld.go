package geotext

import "strings"

// countryByTLD maps country-code TLDs to country names. Generic TLDs
// carry no geographic signal and are absent.
var countryByTLD = map[string]string{
	"uk": "United Kingdom",
	"fr": "France",
	"de": "Germany",
	"nl": "Netherlands",
	"be": "Belgium",
	"it": "Italy",
	"es": "Spain",
	"pt": "Portugal",
	"at": "Austria",
	"ch": "Switzerland",
	"dk": "Denmark",
	"se": "Sweden",
	"no": "Norway",
	"fi": "Finland",
	"ie": "Ireland",
	"gr": "Greece",
	"cz": "Czech Republic",
	"pl": "Poland",
	"jp": "Japan",
	"kr": "South Korea",
	"tw": "Taiwan",
	"sg": "Singapore",
	"hk": "Hong Kong",
	"th": "Thailand",
	"vn": "Vietnam",
	"in": "India",
	"au": "Australia",
	"nz": "New Zealand",
	"ca": "Canada",
	"mx": "Mexico",
	"br": "Brazil",
	"ar": "Argentina",
	"us": "United States",
}

// CountryForTLD returns the country for a country-code TLD like "uk"
// or "co.uk". Generic TLDs return false.
func CountryForTLD(tld string) (string, bool) {
	tld = strings.ToLower(strings.TrimPrefix(tld, "."))
	if i := strings.LastIndex(tld, "."); i >= 0 {
		tld = tld[i+1:]
	}
	c, ok := countryByTLD[tld]
	return c, ok
}

// countryByISO maps common ISO 3166-1 alpha-2 codes seen in structured
// data addressCountry fields to full country names.
var countryByISO = map[string]string{
	"GB": "United Kingdom",
	"FR": "France",
	"DE": "Germany",
	"NL": "Netherlands",
	"BE": "Belgium",
	"IT": "Italy",
	"ES": "Spain",
	"PT": "Portugal",
	"AT": "Austria",
	"CH": "Switzerland",
	"DK": "Denmark",
	"SE": "Sweden",
	"NO": "Norway",
	"FI": "Finland",
	"IE": "Ireland",
	"GR": "Greece",
	"CZ": "Czech Republic",
	"PL": "Poland",
	"JP": "Japan",
	"KR": "South Korea",
	"TW": "Taiwan",
	"SG": "Singapore",
	"HK": "Hong Kong",
	"TH": "Thailand",
	"VN": "Vietnam",
	"IN": "India",
	"AU": "Australia",
	"NZ": "New Zealand",
	"CA": "Canada",
	"MX": "Mexico",
	"BR": "Brazil",
	"AR": "Argentina",
	"US": "United States",
}

// NormalizeCountry expands an ISO alpha-2 code to a country name and
// passes full names through unchanged.
func NormalizeCountry(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 2 {
		if name, ok := countryByISO[strings.ToUpper(s)]; ok {
			return name
		}
	}
	return s
}

// continentByCountry covers every country geotext can produce.
var continentByCountry = map[string]string{
	"United Kingdom": "Europe",
	"France":         "Europe",
	"Germany":        "Europe",
	"Netherlands":    "Europe",
	"Belgium":        "Europe",
	"Italy":          "Europe",
	"Spain":          "Europe",
	"Portugal":       "Europe",
	"Austria":        "Europe",
	"Switzerland":    "Europe",
	"Denmark":        "Europe",
	"Sweden":         "Europe",
	"Norway":         "Europe",
	"Finland":        "Europe",
	"Ireland":        "Europe",
	"Greece":         "Europe",
	"Czech Republic": "Europe",
	"Poland":         "Europe",
	"Japan":          "Asia",
	"South Korea":    "Asia",
	"Taiwan":         "Asia",
	"Singapore":      "Asia",
	"Hong Kong":      "Asia",
	"Thailand":       "Asia",
	"Vietnam":        "Asia",
	"India":          "Asia",
	"Australia":      "Oceania",
	"New Zealand":    "Oceania",
	"Canada":         "North America",
	"Mexico":         "North America",
	"United States":  "North America",
	"Brazil":         "South America",
	"Argentina":      "South America",
}

// ContinentForCountry returns the continent for a known country name.
func ContinentForCountry(country string) (string, bool) {
	c, ok := continentByCountry[country]
	return c, ok
}
