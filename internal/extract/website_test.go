package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripstash/placeimport/internal/model"
	"github.com/tripstash/placeimport/internal/provider"
	"github.com/tripstash/placeimport/pkg/fetch"
)

func htmlServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func websiteRequest(url string) Request {
	return Request{
		URL: url,
		Classification: provider.Classification{
			Provider:   model.ProviderWebsite,
			Confidence: model.ConfidenceLow,
		},
	}
}

func TestWebsiteStructuredData(t *testing.T) {
	srv := htmlServer(t, `<html><head>
		<script type="application/ld+json">
		{
			"@context": "https://schema.org",
			"@type": "Restaurant",
			"name": "The Clove Club",
			"address": {
				"@type": "PostalAddress",
				"streetAddress": "Shoreditch Town Hall, 380 Old St",
				"addressLocality": "London",
				"postalCode": "EC1V 9LT"
			},
			"geo": {"@type": "GeoCoordinates", "latitude": 51.5265, "longitude": -0.0825},
			"openingHours": ["Tu-Sa 12:00-21:30"],
			"servesCuisine": "Modern British"
		}
		</script>
		<title>The Clove Club | Shoreditch</title>
		</head><body></body></html>`)

	s := NewWebsite(fetch.New(), nil)
	res, err := s.Extract(context.Background(), websiteRequest(srv.URL+"/reservations"))

	require.NoError(t, err)
	assert.Equal(t, model.MethodStructuredData, res.Meta.Method)

	d := res.Draft
	assert.Equal(t, "The Clove Club", d.Name)
	assert.Equal(t, "London", d.City)
	assert.Equal(t, "london", d.CityID)
	assert.Equal(t, model.CategoryRestaurant, d.Category)
	require.NotNil(t, d.Coordinates)
	assert.InDelta(t, 51.5265, d.Coordinates.Lat, 1e-9)
	require.NotNil(t, d.Hours)
	assert.Equal(t, model.HoursSourceStructuredData, d.Hours.Source)

	assert.Equal(t, model.ConfidenceMedium, res.Meta.Confidence(model.FieldName))
	assert.Equal(t, model.ConfidenceMedium, res.Meta.Confidence(model.FieldCity))

	// The postal code is recorded as evidence for enrichment; the
	// country field itself stays empty here.
	assert.Empty(t, d.Country)
	assert.Equal(t, []string{"EC1V 9LT"}, res.Meta.Signals["postal_code"])

	assert.True(t, res.Meta.RequiresConfirmation, "nothing here is high confidence")
}

func TestWebsiteMetaTagFallback(t *testing.T) {
	srv := htmlServer(t, `<html><head>
		<meta property="og:title" content="Quimet y Quimet | Barcelona's tiny tapas bar">
		<meta property="og:description" content="Standing-room-only conservas bar in Poble Sec.">
		<meta property="og:image" content="https://img.example.com/quimet.jpg">
		</head><body></body></html>`)

	s := NewWebsite(fetch.New(), nil)
	res, err := s.Extract(context.Background(), websiteRequest(srv.URL+"/about"))

	require.NoError(t, err)
	assert.Equal(t, model.MethodMetaTags, res.Meta.Method)
	assert.Equal(t, "Quimet y Quimet", res.Draft.Name)
	assert.Equal(t, "Standing-room-only conservas bar in Poble Sec.", res.Draft.Comments)
	assert.Equal(t, "https://img.example.com/quimet.jpg", res.Draft.PhotoURL)
	assert.Equal(t, model.ConfidenceLow, res.Meta.Confidence(model.FieldName))
	assert.True(t, res.Meta.RequiresConfirmation)
}

func TestWebsiteTextAddressHeuristics(t *testing.T) {
	srv := htmlServer(t, `<html><head><title>Tasty N Alder</title></head>
		<body><p>Find us at 580 SW 12th Ave, Portland, OR 97205.</p></body></html>`)

	s := NewWebsite(fetch.New(), nil)
	res, err := s.Extract(context.Background(), websiteRequest(srv.URL+"/visit"))

	require.NoError(t, err)
	assert.Equal(t, "Portland", res.Draft.City)
	assert.Equal(t, model.ConfidenceMedium, res.Meta.Confidence(model.FieldCity))
	assert.Contains(t, res.Meta.Signals["postal_code"], "97205")
}

func TestWebsiteStructuredAddressSuppressesTextHeuristics(t *testing.T) {
	srv := htmlServer(t, `<html><head>
		<script type="application/ld+json">
		{"@type": "Restaurant", "name": "Somewhere", "address": "1 Plaza Mayor, Madrid"}
		</script>
		</head><body><p>Our sister venue: 9 Elm St, Boston, MA 02129.</p></body></html>`)

	s := NewWebsite(fetch.New(), nil)
	res, err := s.Extract(context.Background(), websiteRequest(srv.URL))

	require.NoError(t, err)
	assert.Equal(t, "1 Plaza Mayor, Madrid", res.Draft.Address)
	assert.Empty(t, res.Draft.City, "text heuristics must not run over a structured address")
}

type fakeSearcher struct {
	result *SearchResult
	err    error
	query  string
}

func (f *fakeSearcher) SearchPlace(_ context.Context, query string, _ *model.Coordinates) (*SearchResult, error) {
	f.query = query
	return f.result, f.err
}

func TestWebsiteBlockedPageSearchRecovery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	search := &fakeSearcher{result: &SearchResult{
		Name:        "The Clove Club",
		Address:     "380 Old St, London",
		City:        "London",
		Country:     "GB",
		Coordinates: &model.Coordinates{Lat: 51.5265, Lng: -0.0825},
		Category:    model.CategoryRestaurant,
	}}

	s := NewWebsite(fetch.New(), search)
	res, err := s.Extract(context.Background(), websiteRequest(srv.URL+"/the-clove-club"))

	require.NoError(t, err)
	assert.Equal(t, model.MethodSearchRecovery, res.Meta.Method)
	assert.Equal(t, "The Clove Club", search.query)
	assert.Equal(t, "The Clove Club", res.Draft.Name)
	assert.Equal(t, "United Kingdom", res.Draft.Country)
	assert.Equal(t, "Europe", res.Draft.Continent)

	// Recovered data is a guess about which place the page meant.
	assert.Equal(t, model.ConfidenceMedium, res.Meta.Confidence(model.FieldName))
	assert.Equal(t, model.ConfidenceMedium, res.Meta.Confidence(model.FieldCoordinates))
	assert.True(t, res.Meta.RequiresConfirmation)

	require.NotEmpty(t, res.Meta.Warnings)
	assert.Contains(t, res.Meta.Warnings[0], "unreachable")
}

func TestWebsiteBlockedPageNoSearcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	s := NewWebsite(fetch.New(), nil)
	res, err := s.Extract(context.Background(), websiteRequest(srv.URL+"/la-taqueria"))

	require.NoError(t, err)
	assert.Equal(t, model.MethodTitleFallback, res.Meta.Method)
	assert.Equal(t, "La Taqueria", res.Draft.Name)
	assert.Equal(t, model.ConfidenceLow, res.Meta.Confidence(model.FieldName))
	assert.True(t, res.Meta.RequiresConfirmation)

	require.NotEmpty(t, res.Meta.Warnings)
	assert.Contains(t, res.Meta.Warnings[0], "fill in the details manually")
}
