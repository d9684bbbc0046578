package extract

import (
	"context"

	"go.uber.org/zap"

	"github.com/tripstash/placeimport/internal/geotext"
	"github.com/tripstash/placeimport/internal/model"
	"github.com/tripstash/placeimport/internal/provider"
	"github.com/tripstash/placeimport/pkg/places"
)

// GoogleMaps is the authoritative place-API strategy. It never falls
// back to generic HTML scraping: with no API key or a failed lookup it
// degrades to a URL-only minimal draft so the source is never
// misrepresented.
type GoogleMaps struct {
	places places.Client // nil when no API key is configured
}

// NewGoogleMaps creates the strategy. Pass a nil client when the
// Places API key is absent.
func NewGoogleMaps(client places.Client) *GoogleMaps {
	return &GoogleMaps{places: client}
}

func (s *GoogleMaps) Name() string { return "google_maps" }

// Extract resolves the native place identifier through the Places API
// when possible, disambiguates by text search when only a name and
// coordinates were recoverable, and otherwise returns a URL-only
// draft.
func (s *GoogleMaps) Extract(ctx context.Context, req Request) (*model.ImportResult, error) {
	meta := model.NewMeta(model.ProviderGoogleMaps, req.Classification.Confidence)
	meta.PlaceID = req.Classification.NativeID

	if s.places == nil {
		meta.Warn("Google Places API key not configured; only URL-derived data is available")
		return s.urlOnly(req, meta), nil
	}

	if req.Classification.NativeID != "" {
		place, err := s.places.Details(ctx, req.Classification.NativeID)
		if err == nil {
			return s.fromPlace(req, meta, place, model.MethodPlacesDetails, model.ConfidenceHigh), nil
		}
		zap.L().Warn("extract: place details lookup failed",
			zap.String("place_id", req.Classification.NativeID),
			zap.Error(err),
		)
		meta.Warn("place lookup failed; only URL-derived data is available")
		return s.urlOnly(req, meta), nil
	}

	// No native identifier: one text-search disambiguation attempt
	// biased toward coordinates parsed from the URL.
	name := req.Classification.NameHint
	if name == "" {
		name = provider.NameFromURL(req.URL)
	}
	if name != "" {
		var bias *places.LatLng
		if c := req.Classification.Coordinates; c != nil {
			bias = &places.LatLng{Latitude: c.Lat, Longitude: c.Lng}
		}
		results, err := s.places.TextSearch(ctx, name, bias)
		if err == nil && len(results) > 0 {
			// The match is a guess, not an identifier resolution:
			// confidence is capped at medium so the gate stays closed.
			meta.Warn("place matched by text search on %q; please verify it is the right one", name)
			return s.fromPlace(req, meta, &results[0], model.MethodPlacesTextSearch, model.ConfidenceMedium), nil
		}
		if err != nil {
			zap.L().Debug("extract: text search disambiguation failed",
				zap.String("query", name),
				zap.Error(err),
			)
		}
	}

	meta.Warn("no place identifier in URL and text search found nothing")
	return s.urlOnly(req, meta), nil
}

// fromPlace builds the draft from an API place at a uniform tier.
func (s *GoogleMaps) fromPlace(req Request, meta model.Meta, p *places.Place, method model.Method, tier model.Confidence) *model.ImportResult {
	meta.Method = method
	meta.PlaceID = p.ID

	draft := model.Draft{
		Name:      p.DisplayName.Text,
		Address:   p.FormattedAddress,
		City:      p.Locality(),
		Country:   p.CountryName(),
		SourceURL: req.URL,
	}
	draft.CityID = geotext.CanonicalCityID(draft.City)
	if cont, ok := geotext.ContinentForCountry(draft.Country); ok {
		draft.Continent = cont
	}
	if p.Location != nil {
		draft.Coordinates = &model.Coordinates{Lat: p.Location.Latitude, Lng: p.Location.Longitude}
	}
	if cat := categoryFromPlaceTypes(p); cat != "" {
		draft.Category = cat
		meta.SetField(model.FieldCategory, tier)
	}
	if p.RegularOpeningHours != nil && len(p.RegularOpeningHours.WeekdayDescriptions) > 0 {
		draft.Hours = &model.OpeningHours{
			Source: model.HoursSourcePlacesAPI,
			Raw:    p.RegularOpeningHours.WeekdayDescriptions,
		}
	}
	if len(p.Photos) > 0 {
		draft.PhotoURL = p.Photos[0].Name
		meta.SetField(model.FieldPhoto, tier)
	}

	if draft.Name != "" {
		meta.SetField(model.FieldName, tier)
	}
	if draft.Address != "" {
		meta.SetField(model.FieldAddress, tier)
	}
	if draft.City != "" {
		meta.SetField(model.FieldCity, tier)
	}
	if draft.Country != "" {
		meta.SetField(model.FieldCountry, tier)
	}
	if draft.Continent != "" {
		meta.SetField(model.FieldContinent, tier)
	}
	if draft.Coordinates != nil {
		meta.SetField(model.FieldCoordinates, tier)
	}

	for _, t := range p.Types {
		meta.AddSignal("place_type", t)
	}

	meta.RecomputeGate()
	return &model.ImportResult{Draft: draft, Meta: meta}
}

// urlOnly is the strategy's internal fallback: a minimal draft built
// from URL text alone, no coordinates, full confirmation required.
func (s *GoogleMaps) urlOnly(req Request, meta model.Meta) *model.ImportResult {
	meta.Method = model.MethodURLOnly

	draft := model.Draft{SourceURL: req.URL}
	if name := req.Classification.NameHint; name != "" {
		draft.Name = name
		meta.SetField(model.FieldName, model.ConfidenceMedium)
	} else if name := provider.NameFromURL(req.URL); name != "" {
		draft.Name = name
		meta.SetField(model.FieldName, model.ConfidenceLow)
	}

	meta.RecomputeGate()
	return &model.ImportResult{Draft: draft, Meta: meta}
}

// categoryFromPlaceTypes maps Google place types onto the fixed
// category vocabulary.
var placeTypeCategories = map[string]model.Category{
	"restaurant":          model.CategoryRestaurant,
	"meal_takeaway":       model.CategoryRestaurant,
	"cafe":                model.CategoryCafe,
	"coffee_shop":         model.CategoryCafe,
	"bar":                 model.CategoryBar,
	"pub":                 model.CategoryBar,
	"bakery":              model.CategoryBakery,
	"lodging":             model.CategoryHotel,
	"hotel":               model.CategoryHotel,
	"museum":              model.CategoryMuseum,
	"art_gallery":         model.CategoryGallery,
	"park":                model.CategoryPark,
	"national_park":       model.CategoryPark,
	"tourist_attraction":  model.CategoryAttraction,
	"historical_landmark": model.CategoryAttraction,
	"shopping_mall":       model.CategoryShop,
	"store":               model.CategoryShop,
	"market":              model.CategoryShop,
	"beach":               model.CategoryBeach,
}

func categoryFromPlaceTypes(p *places.Place) model.Category {
	if cat, ok := placeTypeCategories[p.PrimaryType]; ok {
		return cat
	}
	for _, t := range p.Types {
		if cat, ok := placeTypeCategories[t]; ok {
			return cat
		}
	}
	return ""
}
