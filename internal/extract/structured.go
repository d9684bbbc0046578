package extract

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/tripstash/placeimport/internal/model"
)

// ldBlock is one decoded JSON-LD object.
type ldBlock map[string]any

// collectLD gathers every JSON-LD object embedded in the page,
// flattening top-level arrays and @graph containers. Malformed blocks
// are skipped.
func collectLD(doc *goquery.Document) []ldBlock {
	var blocks []ldBlock
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}

		var decoded any
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			return
		}
		blocks = append(blocks, flattenLD(decoded)...)
	})
	return blocks
}

func flattenLD(v any) []ldBlock {
	switch t := v.(type) {
	case map[string]any:
		if graph, ok := t["@graph"].([]any); ok {
			var out []ldBlock
			for _, g := range graph {
				out = append(out, flattenLD(g)...)
			}
			return out
		}
		return []ldBlock{t}
	case []any:
		var out []ldBlock
		for _, e := range t {
			out = append(out, flattenLD(e)...)
		}
		return out
	default:
		return nil
	}
}

// placeLikeTypes are schema.org types that describe a physical place.
var placeLikeTypes = map[string]model.Category{
	"Restaurant":             model.CategoryRestaurant,
	"FoodEstablishment":      model.CategoryRestaurant,
	"CafeOrCoffeeShop":       model.CategoryCafe,
	"Bakery":                 model.CategoryBakery,
	"BarOrPub":               model.CategoryBar,
	"Hotel":                  model.CategoryHotel,
	"LodgingBusiness":        model.CategoryHotel,
	"Museum":                 model.CategoryMuseum,
	"ArtGallery":             model.CategoryGallery,
	"Park":                   model.CategoryPark,
	"Beach":                  model.CategoryBeach,
	"Store":                  model.CategoryShop,
	"ShoppingCenter":         model.CategoryShop,
	"TouristAttraction":      model.CategoryAttraction,
	"LandmarksOrHistorical":  model.CategoryAttraction,
	"LocalBusiness":          model.CategoryOther,
	"Place":                  model.CategoryOther,
}

func ldTypes(b ldBlock) []string {
	switch t := b["@type"].(type) {
	case string:
		return []string{t}
	case []any:
		var out []string
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// scoreLD ranks a block by how much it looks like a place record:
// place-like type, name, address, and geo each add weight.
func scoreLD(b ldBlock) int {
	score := 0
	for _, t := range ldTypes(b) {
		if _, ok := placeLikeTypes[t]; ok {
			score += 3
			break
		}
	}
	if ldString(b, "name") != "" {
		score += 2
	}
	if _, ok := b["address"]; ok {
		score += 2
	}
	if _, ok := b["geo"]; ok {
		score += 2
	}
	return score
}

// pickLD chooses the best-scoring block, requiring a minimum score so
// a bare WebSite block does not win.
func pickLD(doc *goquery.Document) (ldBlock, bool) {
	var best ldBlock
	bestScore := 0
	for _, b := range collectLD(doc) {
		if s := scoreLD(b); s > bestScore {
			best, bestScore = b, s
		}
	}
	return best, bestScore >= 3
}

func ldString(b ldBlock, key string) string {
	switch v := b[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		// e.g. {"@type":"ImageObject","url":"..."} or localized text
		if s, ok := v["url"].(string); ok {
			return strings.TrimSpace(s)
		}
		if s, ok := v["@value"].(string); ok {
			return strings.TrimSpace(s)
		}
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// ldAddress holds the parts of a schema.org PostalAddress.
type ldAddress struct {
	Street     string
	Locality   string
	PostalCode string
	Country    string
	Full       string
}

func parseLDAddress(b ldBlock) *ldAddress {
	raw, ok := b["address"]
	if !ok {
		return nil
	}

	switch v := raw.(type) {
	case string:
		return &ldAddress{Full: strings.TrimSpace(v)}
	case map[string]any:
		addr := &ldAddress{
			Street:     ldString(v, "streetAddress"),
			Locality:   ldString(v, "addressLocality"),
			PostalCode: ldString(v, "postalCode"),
			Country:    ldString(v, "addressCountry"),
		}
		parts := []string{}
		for _, p := range []string{addr.Street, addr.Locality, addr.PostalCode} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		addr.Full = strings.Join(parts, ", ")
		return addr
	}
	return nil
}

func parseLDGeo(b ldBlock) *model.Coordinates {
	geo, ok := b["geo"].(map[string]any)
	if !ok {
		return nil
	}
	lat, latOK := ldFloat(geo, "latitude")
	lng, lngOK := ldFloat(geo, "longitude")
	if !latOK || !lngOK {
		return nil
	}
	return &model.Coordinates{Lat: lat, Lng: lng}
}

func ldFloat(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// parseLDHours reads openingHours / openingHoursSpecification into a
// raw hours list.
func parseLDHours(b ldBlock) *model.OpeningHours {
	var raw []string

	switch v := b["openingHours"].(type) {
	case string:
		raw = append(raw, strings.TrimSpace(v))
	case []any:
		for _, e := range v {
			if s, ok := e.(string); ok {
				raw = append(raw, strings.TrimSpace(s))
			}
		}
	}

	if specs, ok := b["openingHoursSpecification"].([]any); ok {
		for _, e := range specs {
			spec, ok := e.(map[string]any)
			if !ok {
				continue
			}
			opens := ldString(spec, "opens")
			closes := ldString(spec, "closes")
			day := ldString(spec, "dayOfWeek")
			if opens == "" {
				continue
			}
			entry := strings.TrimSpace(day + " " + opens + "-" + closes)
			raw = append(raw, entry)
		}
	}

	if len(raw) == 0 {
		return nil
	}
	return &model.OpeningHours{Source: model.HoursSourceStructuredData, Raw: raw}
}

// categoryFromLD maps the block's schema.org types to a category.
func categoryFromLD(b ldBlock) model.Category {
	for _, t := range ldTypes(b) {
		if cat, ok := placeLikeTypes[t]; ok && cat != model.CategoryOther {
			return cat
		}
	}
	// servesCuisine implies a restaurant even on generic types.
	if _, ok := b["servesCuisine"]; ok {
		return model.CategoryRestaurant
	}
	return ""
}
