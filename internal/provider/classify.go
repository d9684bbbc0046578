// Package provider classifies a resolved URL into a provider tag and
// recovers provider-native identifiers directly from the URL. The
// classifier is pure: no I/O, deterministic for the same input.
package provider

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/tripstash/placeimport/internal/model"
)

// Classification is the classifier output for one URL.
type Classification struct {
	Provider    model.Provider
	Confidence  model.Confidence
	NativeID    string
	Coordinates *model.Coordinates
	// NameHint is a human-readable name recovered from the URL path,
	// e.g. the place segment of a maps URL.
	NameHint string
}

var (
	// Google encodes the place identifier inside the data= blob with
	// the !1s marker, either as a hex feature ID pair or a ChIJ token.
	dataBlobIDRe = regexp.MustCompile(`!1s(0x[0-9a-fA-F]+:0x[0-9a-fA-F]+|ChIJ[0-9A-Za-z_-]+)`)
	atCoordsRe   = regexp.MustCompile(`/@(-?\d{1,3}\.\d+),(-?\d{1,3}\.\d+)`)
	mapsPlaceRe  = regexp.MustCompile(`/maps/place/([^/]+)`)
	pinPathRe    = regexp.MustCompile(`^/pin/(\d+)`)
	digitsOnlyRe = regexp.MustCompile(`^\d+$`)
)

// Classify assigns a provider tag to a resolved URL. Confidence is
// high when a native identifier was recovered, medium for a recognized
// provider without one, and low for an unclassified website.
func Classify(rawURL string) Classification {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return Classification{Provider: model.ProviderWebsite, Confidence: model.ConfidenceLow}
	}
	host := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))

	switch {
	case isGoogleMapsHost(host, u.Path):
		return classifyGoogleMaps(u)
	case strings.HasPrefix(host, "pinterest.") || strings.Contains(host, ".pinterest."):
		return classifyPinterest(u)
	case isReviewHost(host):
		return Classification{Provider: model.ProviderReview, Confidence: model.ConfidenceMedium}
	case isSocialHost(host):
		return Classification{Provider: model.ProviderSocial, Confidence: model.ConfidenceMedium}
	default:
		return Classification{Provider: model.ProviderWebsite, Confidence: model.ConfidenceLow}
	}
}

func isGoogleMapsHost(host, path string) bool {
	if host == "maps.app.goo.gl" {
		return true
	}
	if host == "goo.gl" && strings.HasPrefix(path, "/maps") {
		return true
	}
	if strings.HasPrefix(host, "maps.google.") {
		return true
	}
	if strings.HasPrefix(host, "google.") || strings.Contains(host, ".google.") {
		return strings.HasPrefix(path, "/maps")
	}
	return false
}

func classifyGoogleMaps(u *url.URL) Classification {
	c := Classification{Provider: model.ProviderGoogleMaps, Confidence: model.ConfidenceMedium}

	q := u.Query()
	for _, key := range []string{"place_id", "query_place_id", "ftid"} {
		if id := q.Get(key); id != "" {
			c.NativeID = id
			break
		}
	}
	if c.NativeID == "" {
		if m := dataBlobIDRe.FindStringSubmatch(u.String()); m != nil {
			c.NativeID = m[1]
		}
	}
	if c.NativeID != "" {
		c.Confidence = model.ConfidenceHigh
	}

	if m := atCoordsRe.FindStringSubmatch(u.Path); m != nil {
		lat, latErr := strconv.ParseFloat(m[1], 64)
		lng, lngErr := strconv.ParseFloat(m[2], 64)
		if latErr == nil && lngErr == nil {
			c.Coordinates = &model.Coordinates{Lat: lat, Lng: lng}
		}
	}

	if m := mapsPlaceRe.FindStringSubmatch(u.Path); m != nil {
		c.NameHint = decodePathSegment(m[1])
	}

	return c
}

func classifyPinterest(u *url.URL) Classification {
	c := Classification{Provider: model.ProviderPinterest, Confidence: model.ConfidenceMedium}
	if m := pinPathRe.FindStringSubmatch(u.Path); m != nil {
		c.NativeID = m[1]
		c.Confidence = model.ConfidenceHigh
	}
	return c
}

var reviewHosts = []string{
	"tripadvisor.",
	"yelp.",
	"foursquare.",
	"opentable.",
	"thefork.",
}

func isReviewHost(host string) bool {
	for _, h := range reviewHosts {
		if strings.HasPrefix(host, h) || strings.Contains(host, "."+h) {
			return true
		}
	}
	return false
}

var socialHosts = []string{
	"instagram.com",
	"tiktok.com",
	"facebook.com",
	"fb.com",
	"twitter.com",
	"x.com",
	"threads.net",
}

func isSocialHost(host string) bool {
	for _, h := range socialHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// decodePathSegment turns a URL path segment into readable text:
// percent-decoding and plus-to-space.
func decodePathSegment(seg string) string {
	seg = strings.ReplaceAll(seg, "+", " ")
	if dec, err := url.PathUnescape(seg); err == nil {
		seg = dec
	}
	return strings.TrimSpace(seg)
}

// NameFromURL guesses a display name from the URL when nothing better
// exists: the maps place segment, else the last meaningful path
// segment, else the bare host.
func NameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	if m := mapsPlaceRe.FindStringSubmatch(u.Path); m != nil {
		return decodePathSegment(m[1])
	}

	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segs) - 1; i >= 0; i-- {
		s := decodePathSegment(segs[i])
		s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
		s = strings.TrimSpace(strings.TrimSuffix(s, ".html"))
		if len(s) > 2 && !digitsOnlyRe.MatchString(s) {
			return titleCase(s)
		}
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	if i := strings.Index(host, "."); i > 0 {
		return titleCase(host[:i])
	}
	return host
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
