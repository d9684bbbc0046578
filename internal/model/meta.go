package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Provider classifies the origin of the input URL.
type Provider string

const (
	ProviderGoogleMaps Provider = "google_maps"
	ProviderPinterest  Provider = "pinterest"
	ProviderReview     Provider = "review"
	ProviderSocial     Provider = "social"
	ProviderWebsite    Provider = "website"
)

// Method names the strategy sub-path that produced the draft.
type Method string

const (
	MethodPlacesDetails      Method = "places_details"
	MethodPlacesTextSearch   Method = "places_text_search"
	MethodURLOnly            Method = "url_only"
	MethodCuratedPage        Method = "curated_page"
	MethodCuratedDestination Method = "curated_destination"
	MethodStructuredData     Method = "structured_data"
	MethodMetaTags           Method = "meta_tags"
	MethodTitleFallback      Method = "title_fallback"
	MethodSearchRecovery     Method = "search_recovery"
	MethodSocialMeta         Method = "social_meta"
)

// AISuggestion records one inference-backend proposal and whether it
// was applied to the draft.
type AISuggestion struct {
	Field      Field   `json:"field"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning,omitempty"`
	Applied    bool    `json:"applied"`
}

// Meta is the extraction metadata accompanying a draft through the
// pipeline. It is scoped to one import request.
type Meta struct {
	ImportID             string               `json:"import_id"`
	Provider             Provider             `json:"provider"`
	ProviderConfidence   Confidence           `json:"provider_confidence"`
	PlaceID              string               `json:"place_id,omitempty"`
	Method               Method               `json:"method"`
	Fields               map[Field]Confidence `json:"fields"`
	RequiresConfirmation bool                 `json:"requires_confirmation"`
	ForceConfirmation    bool                 `json:"force_confirmation,omitempty"`
	Warnings             []string             `json:"warnings,omitempty"`
	Signals              map[string][]string  `json:"signals,omitempty"`
	AISuggestions        []AISuggestion       `json:"ai_suggestions,omitempty"`
}

// NewMeta creates metadata for one extraction attempt.
func NewMeta(p Provider, providerConfidence Confidence) Meta {
	return Meta{
		ImportID:             uuid.New().String(),
		Provider:             p,
		ProviderConfidence:   providerConfidence,
		Fields:               make(map[Field]Confidence),
		RequiresConfirmation: true,
		Signals:              make(map[string][]string),
	}
}

// SetField records a field's confidence tier.
func (m *Meta) SetField(f Field, c Confidence) {
	m.Fields[f] = c
}

// Confidence returns the recorded tier for a field, none if absent.
func (m *Meta) Confidence(f Field) Confidence {
	return m.Fields[f]
}

// Warn appends a human-readable warning.
func (m *Meta) Warn(format string, args ...any) {
	m.Warnings = append(m.Warnings, fmt.Sprintf(format, args...))
}

// AddSignal records an evidence signal under a key.
func (m *Meta) AddSignal(key, value string) {
	m.Signals[key] = append(m.Signals[key], value)
}

// Signal returns the first signal recorded under a key.
func (m *Meta) Signal(key string) (string, bool) {
	vs := m.Signals[key]
	if len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// RecomputeGate rederives the confirmation gate from the current field
// confidence map. Called after every stage that can change confidence.
func (m *Meta) RecomputeGate() {
	m.RequiresConfirmation = m.ForceConfirmation || RequiresConfirmation(m.Fields)
}

// Clone returns a deep copy so each pipeline stage can produce a new
// metadata value instead of mutating its input.
func (m Meta) Clone() Meta {
	out := m
	out.Fields = make(map[Field]Confidence, len(m.Fields))
	for k, v := range m.Fields {
		out.Fields[k] = v
	}
	out.Warnings = append([]string(nil), m.Warnings...)
	out.Signals = make(map[string][]string, len(m.Signals))
	for k, v := range m.Signals {
		out.Signals[k] = append([]string(nil), v...)
	}
	out.AISuggestions = append([]AISuggestion(nil), m.AISuggestions...)
	return out
}
