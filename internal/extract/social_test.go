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

func socialRequest(url string) Request {
	return Request{
		URL: url,
		Classification: provider.Classification{
			Provider:   model.ProviderSocial,
			Confidence: model.ConfidenceMedium,
		},
	}
}

func TestSocialMetaOnly(t *testing.T) {
	srv := htmlServer(t, `<html><head>
		<meta property="og:title" content="brunch at La Perla – worth the queue">
		<meta property="og:description" content="Best huevos rotos in Madrid, hands down.">
		<meta property="og:image" content="https://cdn.example.com/post.jpg">
		</head><body><p>1,024 likes</p></body></html>`)

	s := NewSocial(fetch.New())
	res, err := s.Extract(context.Background(), socialRequest(srv.URL+"/p/Cxyz/"))

	require.NoError(t, err)
	assert.Equal(t, model.MethodSocialMeta, res.Meta.Method)

	assert.Equal(t, "brunch at La Perla", res.Draft.Name)
	assert.Equal(t, "Best huevos rotos in Madrid, hands down.", res.Draft.Comments)
	assert.Equal(t, "https://cdn.example.com/post.jpg", res.Draft.PhotoURL)

	// Nothing in an ephemeral post is trustworthy on its own: every
	// location field sits at low, so the gate stays closed.
	for _, f := range []model.Field{
		model.FieldName, model.FieldCity, model.FieldCountry, model.FieldCoordinates,
	} {
		assert.Equal(t, model.ConfidenceLow, res.Meta.Confidence(f), string(f))
	}
	assert.True(t, res.Meta.RequiresConfirmation)

	// No location inference from captions here.
	assert.Empty(t, res.Draft.City)
	assert.Empty(t, res.Draft.Coordinates)
}

func TestSocialUnreadablePost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	s := NewSocial(fetch.New())
	res, err := s.Extract(context.Background(), socialRequest(srv.URL+"/p/Cxyz/"))

	require.NoError(t, err)
	assert.Empty(t, res.Draft.Name)
	assert.Equal(t, srv.URL+"/p/Cxyz/", res.Draft.SourceURL)
	assert.True(t, res.Meta.RequiresConfirmation)

	require.NotEmpty(t, res.Meta.Warnings)
	assert.Contains(t, res.Meta.Warnings[0], "could not be read")
}
