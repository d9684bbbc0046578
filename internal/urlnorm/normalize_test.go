package urlnorm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripstash/placeimport/pkg/fetch"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"https", "https://maps.app.goo.gl/abc123", false},
		{"http", "http://example.com/menu", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"no scheme", "example.com/cafe", true},
		{"ftp", "ftp://example.com", true},
		{"scheme only", "https://", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidation(err))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestNormalizer_Normalize_ResolvesRedirect(t *testing.T) {
	final := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer final.Close()

	short := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL+"/maps/place/cafe", http.StatusMovedPermanently)
	}))
	defer short.Close()

	n := New(fetch.New())
	resolved, warnings, err := n.Normalize(context.Background(), short.URL)

	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, final.URL+"/maps/place/cafe", resolved)
}

func TestNormalizer_Normalize_ResolutionFailureNonFatal(t *testing.T) {
	// Nothing listens here; resolution fails fast with connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead := srv.URL
	srv.Close()

	n := New(fetch.New())
	resolved, warnings, err := n.Normalize(context.Background(), dead)

	require.NoError(t, err)
	assert.Equal(t, dead, resolved)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "redirects")
}

func TestNormalizer_Normalize_InvalidURL(t *testing.T) {
	n := New(fetch.New())
	_, _, err := n.Normalize(context.Background(), "not a url")

	require.Error(t, err)
	assert.True(t, IsValidation(err))
}
