// Package model defines the draft place record and the extraction
// metadata that travels with it through the import pipeline.
package model

// Category is the fixed place-type vocabulary.
type Category string

const (
	CategoryRestaurant Category = "restaurant"
	CategoryCafe       Category = "cafe"
	CategoryBar        Category = "bar"
	CategoryBakery     Category = "bakery"
	CategoryHotel      Category = "hotel"
	CategoryMuseum     Category = "museum"
	CategoryGallery    Category = "gallery"
	CategoryPark       Category = "park"
	CategoryViewpoint  Category = "viewpoint"
	CategoryBeach      Category = "beach"
	CategoryShop       Category = "shop"
	CategoryAttraction Category = "attraction"
	CategoryOther      Category = "other"
)

// AllCategories returns every defined category.
func AllCategories() []Category {
	return []Category{
		CategoryRestaurant,
		CategoryCafe,
		CategoryBar,
		CategoryBakery,
		CategoryHotel,
		CategoryMuseum,
		CategoryGallery,
		CategoryPark,
		CategoryViewpoint,
		CategoryBeach,
		CategoryShop,
		CategoryAttraction,
		CategoryOther,
	}
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HoursSource tags where an opening-hours structure came from.
type HoursSource string

const (
	HoursSourcePlacesAPI      HoursSource = "places_api"
	HoursSourceStructuredData HoursSource = "structured_data"
)

// OpeningHours holds opening hours as the source published them.
type OpeningHours struct {
	Source HoursSource `json:"source"`
	Raw    []string    `json:"raw"`
}

// VisitSource tags where a visit suggestion came from.
type VisitSource string

const (
	VisitSourceHours    VisitSource = "hours"
	VisitSourceInferred VisitSource = "inferred"
	VisitSourceUser     VisitSource = "user"
)

// VisitSuggestion proposes a plausible visiting window for a place.
type VisitSuggestion struct {
	Window     string      `json:"window"`
	Source     VisitSource `json:"source"`
	Confidence Confidence  `json:"confidence"`
}

// Draft is the in-progress place record pending user confirmation.
// Every field is either unset or consistent with the record's current
// confidence for that field.
type Draft struct {
	Name        string           `json:"name,omitempty"`
	Address     string           `json:"address,omitempty"`
	City        string           `json:"city,omitempty"`
	CityID      string           `json:"city_id,omitempty"` // canonical city identifier
	Country     string           `json:"country,omitempty"`
	Continent   string           `json:"continent,omitempty"`
	Coordinates *Coordinates     `json:"coordinates,omitempty"`
	Category    Category         `json:"category,omitempty"`
	SourceURL   string           `json:"source_url,omitempty"`
	Comments    string           `json:"comments,omitempty"`
	PhotoURL    string           `json:"photo_url,omitempty"`
	Hours       *OpeningHours    `json:"hours,omitempty"`
	Visit       *VisitSuggestion `json:"visit,omitempty"`
}

// ImportResult is the final output of one import request.
type ImportResult struct {
	Draft Draft `json:"draft"`
	Meta  Meta  `json:"meta"`
}
