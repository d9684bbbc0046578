// Package enrich fills missing or low-confidence draft fields from
// cheap deterministic signals and, optionally, an AI inference
// backend. Enrichment never downgrades a field and never overwrites a
// value that is already medium or high confidence.
package enrich

import (
	"strings"

	"go.uber.org/zap"

	"github.com/tripstash/placeimport/internal/geotext"
	"github.com/tripstash/placeimport/internal/model"
)

// Proposal is one deterministic inference with its evidence.
type Proposal struct {
	Field      model.Field
	Value      string
	Confidence model.Confidence
	Evidence   []string
}

// eligible reports whether a field may still be filled: missing or low
// confidence, never medium or high.
func eligible(m *model.Meta, f model.Field) bool {
	return !m.Confidence(f).Trusted()
}

// Deterministic runs the signal-based pass over a draft. Each applied
// proposal records its evidence in the signals bag.
func Deterministic(d model.Draft, m model.Meta) (model.Draft, model.Meta) {
	out := m.Clone()

	for _, p := range proposals(d, &out) {
		if !eligible(&out, p.Field) {
			continue
		}
		if p.Confidence <= out.Confidence(p.Field) {
			continue
		}
		applyProposal(&d, &out, p)
	}

	// Derived identifiers follow their parent field and carry no
	// confidence of their own.
	if d.City != "" && d.CityID == "" {
		d.CityID = geotext.CanonicalCityID(d.City)
	}
	if d.Country != "" && d.Continent == "" {
		if cont, ok := geotext.ContinentForCountry(d.Country); ok {
			d.Continent = cont
			out.SetField(model.FieldContinent, out.Confidence(model.FieldCountry))
		}
	}

	return d, out
}

func proposals(d model.Draft, m *model.Meta) []Proposal {
	var out []Proposal

	// Postal-code formats are the strongest cheap signal.
	for _, code := range m.Signals["postal_code"] {
		for _, match := range geotext.DetectPostal(code) {
			out = append(out, Proposal{
				Field:      model.FieldCountry,
				Value:      match.Country,
				Confidence: model.ConfidenceMedium,
				Evidence:   []string{"postal code " + match.Code + " matches the " + match.Country + " format"},
			})
			if match.City != "" {
				out = append(out, Proposal{
					Field:      model.FieldCity,
					Value:      match.City,
					Confidence: model.ConfidenceMedium,
					Evidence:   []string{"city read from postal address " + match.Code},
				})
			}
		}
	}

	// The resolved URL's country-code TLD is a weaker hint.
	if tld, ok := m.Signal("tld"); ok {
		if country, ok := geotext.CountryForTLD(tld); ok {
			out = append(out, Proposal{
				Field:      model.FieldCountry,
				Value:      country,
				Confidence: model.ConfidenceLow,
				Evidence:   []string{"domain ends in ." + tld},
			})
		}
	}

	return out
}

func applyProposal(d *model.Draft, m *model.Meta, p Proposal) {
	switch p.Field {
	case model.FieldCountry:
		d.Country = p.Value
	case model.FieldCity:
		d.City = p.Value
		d.CityID = geotext.CanonicalCityID(p.Value)
	default:
		return
	}

	m.SetField(p.Field, p.Confidence)
	for _, e := range p.Evidence {
		m.AddSignal("evidence", e)
	}

	zap.L().Debug("enrich: applied deterministic proposal",
		zap.String("field", string(p.Field)),
		zap.String("value", p.Value),
		zap.String("confidence", p.Confidence.String()),
		zap.String("evidence", strings.Join(p.Evidence, "; ")),
	)
}
