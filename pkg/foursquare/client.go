// Package foursquare is a minimal client for the Foursquare Places
// search API, used as an alternative place-search backend.
package foursquare

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.foursquare.com/v3"

// Client performs Foursquare place searches.
type Client interface {
	Search(ctx context.Context, query string, lat, lng float64) ([]Venue, error)
}

// Venue is one search result.
type Venue struct {
	FSQID      string     `json:"fsq_id"`
	Name       string     `json:"name"`
	Location   Location   `json:"location"`
	Categories []Category `json:"categories"`
	Geocodes   Geocodes   `json:"geocodes"`
}

// Location holds the venue's address parts.
type Location struct {
	FormattedAddress string `json:"formatted_address"`
	Locality         string `json:"locality"`
	Country          string `json:"country"`
	Postcode         string `json:"postcode"`
}

// Category is a Foursquare venue category.
type Category struct {
	Name string `json:"name"`
}

// Geocodes holds the venue's main coordinates.
type Geocodes struct {
	Main Point `json:"main"`
}

// Point is a latitude/longitude pair.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Foursquare API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type searchResponse struct {
	Results []Venue `json:"results"`
}

// Search finds venues matching a query near the given point. Pass
// zero coordinates to search without a location anchor.
func (c *httpClient) Search(ctx context.Context, query string, lat, lng float64) ([]Venue, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("limit", "3")
	if lat != 0 || lng != 0 {
		q.Set("ll", fmt.Sprintf("%f,%f", lat, lng))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/places/search?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "foursquare: create request")
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "foursquare: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "foursquare: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("foursquare: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result searchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "foursquare: unmarshal response")
	}
	return result.Results, nil
}
