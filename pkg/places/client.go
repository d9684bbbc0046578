// Package places is a client for the Google Places API (New, v1):
// place details by resource name and text search with location bias.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://places.googleapis.com/v1"

// Full field mask requested first; reducedFieldMask is the degraded
// retry when the API rejects a field in the full mask.
const (
	fullFieldMask    = "id,displayName,formattedAddress,addressComponents,location,types,primaryType,regularOpeningHours,photos"
	reducedFieldMask = "id,displayName,formattedAddress,addressComponents,location"
)

// Client performs Google Places API operations.
type Client interface {
	Details(ctx context.Context, placeID string) (*Place, error)
	TextSearch(ctx context.Context, query string, bias *LatLng) ([]Place, error)
}

// LatLng is a WGS84 point.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DisplayName holds the place's display name.
type DisplayName struct {
	Text string `json:"text"`
}

// AddressComponent is one structured address part.
type AddressComponent struct {
	LongText  string   `json:"longText"`
	ShortText string   `json:"shortText"`
	Types     []string `json:"types"`
}

// OpeningHours holds the API's weekday descriptions.
type OpeningHours struct {
	WeekdayDescriptions []string `json:"weekdayDescriptions"`
}

// Photo references one place photo resource.
type Photo struct {
	Name string `json:"name"`
}

// Place represents a place returned by the API.
type Place struct {
	ID                  string             `json:"id"`
	DisplayName         DisplayName        `json:"displayName"`
	FormattedAddress    string             `json:"formattedAddress"`
	AddressComponents   []AddressComponent `json:"addressComponents"`
	Location            *LatLng            `json:"location"`
	Types               []string           `json:"types"`
	PrimaryType         string             `json:"primaryType"`
	RegularOpeningHours *OpeningHours      `json:"regularOpeningHours"`
	Photos              []Photo            `json:"photos"`
}

// Component returns the long text of the first address component with
// the given type, empty if absent.
func (p *Place) Component(typ string) string {
	for _, c := range p.AddressComponents {
		for _, t := range c.Types {
			if t == typ {
				return c.LongText
			}
		}
	}
	return ""
}

// Locality returns the place's city, falling back to the postal town.
func (p *Place) Locality() string {
	if l := p.Component("locality"); l != "" {
		return l
	}
	return p.Component("postal_town")
}

// CountryName returns the place's country.
func (p *Place) CountryName() string {
	return p.Component("country")
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

// NewClient creates a Google Places API client.
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

// Details looks up a place by identifier. If the API rejects the full
// field mask (some place types do not support every field), the call
// is retried exactly once with a reduced mask before failing.
func (c *httpClient) Details(ctx context.Context, placeID string) (*Place, error) {
	place, status, body, err := c.details(ctx, placeID, fullFieldMask)
	if err == nil {
		return place, nil
	}
	if !isFieldMaskError(status, body) {
		return nil, err
	}

	zap.L().Debug("places: full field mask rejected, retrying with reduced mask",
		zap.String("place_id", placeID),
	)
	place, _, _, err = c.details(ctx, placeID, reducedFieldMask)
	if err != nil {
		return nil, eris.Wrap(err, "places: reduced field mask retry")
	}
	return place, nil
}

func (c *httpClient) details(ctx context.Context, placeID, fieldMask string) (*Place, int, []byte, error) {
	endpoint := c.baseURL + "/places/" + url.PathEscape(placeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, nil, eris.Wrap(err, "places: create request")
	}
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, nil, eris.Wrap(err, "places: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, nil, eris.Wrap(err, "places: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, respBody, eris.Errorf("places: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var place Place
	if err := json.Unmarshal(respBody, &place); err != nil {
		return nil, resp.StatusCode, respBody, eris.Wrap(err, "places: unmarshal response")
	}
	return &place, resp.StatusCode, respBody, nil
}

// isFieldMaskError detects the API's complaint about an unsupported
// field in the requested mask.
func isFieldMaskError(status int, body []byte) bool {
	if status != http.StatusBadRequest {
		return false
	}
	s := strings.ToLower(string(body))
	return strings.Contains(s, "field") &&
		(strings.Contains(s, "mask") || strings.Contains(s, "unsupported") || strings.Contains(s, "invalid_argument"))
}

type textSearchRequest struct {
	TextQuery    string        `json:"textQuery"`
	PageSize     int           `json:"pageSize,omitempty"`
	LocationBias *locationBias `json:"locationBias,omitempty"`
}

type locationBias struct {
	Circle circle `json:"circle"`
}

type circle struct {
	Center LatLng  `json:"center"`
	Radius float64 `json:"radius"`
}

type textSearchResponse struct {
	Places []Place `json:"places"`
}

// TextSearch finds places matching a free-text query, biased toward
// the given point when one is provided.
func (c *httpClient) TextSearch(ctx context.Context, query string, bias *LatLng) ([]Place, error) {
	reqBody := textSearchRequest{TextQuery: query, PageSize: 3}
	if bias != nil {
		reqBody.LocationBias = &locationBias{
			Circle: circle{Center: *bias, Radius: 2000},
		}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, eris.Wrap(err, "places: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/places:searchText", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "places: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask",
		"places.id,places.displayName,places.formattedAddress,places.addressComponents,places.location,places.types,places.primaryType")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "places: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "places: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("places: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result textSearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "places: unmarshal response")
	}
	return result.Places, nil
}
