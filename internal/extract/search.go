package extract

import (
	"context"

	"github.com/tripstash/placeimport/internal/model"
	"github.com/tripstash/placeimport/pkg/foursquare"
	"github.com/tripstash/placeimport/pkg/places"
)

// placesSearcher adapts the Places text search to the recovery
// Searcher contract.
type placesSearcher struct {
	client places.Client
}

// NewPlacesSearcher wraps a Places client as a recovery backend.
func NewPlacesSearcher(c places.Client) Searcher {
	return &placesSearcher{client: c}
}

func (s *placesSearcher) SearchPlace(ctx context.Context, query string, bias *model.Coordinates) (*SearchResult, error) {
	var ll *places.LatLng
	if bias != nil {
		ll = &places.LatLng{Latitude: bias.Lat, Longitude: bias.Lng}
	}
	results, err := s.client.TextSearch(ctx, query, ll)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	p := results[0]
	out := &SearchResult{
		Name:     p.DisplayName.Text,
		Address:  p.FormattedAddress,
		City:     p.Locality(),
		Country:  p.CountryName(),
		Category: categoryFromPlaceTypes(&p),
	}
	if p.Location != nil {
		out.Coordinates = &model.Coordinates{Lat: p.Location.Latitude, Lng: p.Location.Longitude}
	}
	return out, nil
}

// foursquareSearcher is the alternative recovery backend.
type foursquareSearcher struct {
	client foursquare.Client
}

// NewFoursquareSearcher wraps a Foursquare client as a recovery backend.
func NewFoursquareSearcher(c foursquare.Client) Searcher {
	return &foursquareSearcher{client: c}
}

func (s *foursquareSearcher) SearchPlace(ctx context.Context, query string, bias *model.Coordinates) (*SearchResult, error) {
	var lat, lng float64
	if bias != nil {
		lat, lng = bias.Lat, bias.Lng
	}
	venues, err := s.client.Search(ctx, query, lat, lng)
	if err != nil {
		return nil, err
	}
	if len(venues) == 0 {
		return nil, nil
	}

	v := venues[0]
	out := &SearchResult{
		Name:    v.Name,
		Address: v.Location.FormattedAddress,
		City:    v.Location.Locality,
		Country: v.Location.Country,
	}
	if v.Geocodes.Main.Latitude != 0 || v.Geocodes.Main.Longitude != 0 {
		out.Coordinates = &model.Coordinates{Lat: v.Geocodes.Main.Latitude, Lng: v.Geocodes.Main.Longitude}
	}
	for _, c := range v.Categories {
		if cat, _ := categoryFromKeywords(c.Name); cat != "" {
			out.Category = cat
			break
		}
	}
	return out, nil
}
