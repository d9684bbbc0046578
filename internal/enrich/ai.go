package enrich

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/tripstash/placeimport/internal/geotext"
	"github.com/tripstash/placeimport/internal/model"
	"github.com/tripstash/placeimport/pkg/anthropic"
)

// Threshold policy for applying an AI suggestion to a field.
const (
	applySilent = 0.8 // >= applySilent: apply, confidence high
	applyWarn   = 0.4 // >= applyWarn: apply with a warning, confidence medium
)

// aiFields is the fixed set of fields the backend may fill.
// Coordinates are deliberately absent: the backend must not invent
// location facts precise enough to place a pin.
var aiFields = []model.Field{
	model.FieldCity,
	model.FieldCountry,
	model.FieldContinent,
	model.FieldCategory,
}

const systemPrompt = `You fill gaps in a draft record of a physical place.
You are given the known fields, the evidence signals, and the names of the fields to infer.
Rules:
- Never invent location facts. Only infer what the evidence supports.
- If the evidence for a field is weak, return null for its value and a confidence of 0.
- Reply with a single JSON object, no prose: {"<field>": {"value": <string or null>, "confidence": <0..1>, "reasoning": "<short>"}}`

// AI is the optional inference-backed enrichment pass.
type AI struct {
	client anthropic.Client
	model  string
}

// NewAI creates the pass. A nil client disables it.
func NewAI(client anthropic.Client, modelName string) *AI {
	return &AI{client: client, model: modelName}
}

// Enabled reports whether an inference backend is configured.
func (a *AI) Enabled() bool { return a != nil && a.client != nil }

// Apply asks the backend to fill the still-eligible fields and applies
// suggestions under the threshold policy. Backend failures and invalid
// responses are treated as "no suggestion", never as an error.
func (a *AI) Apply(ctx context.Context, d model.Draft, m model.Meta) (model.Draft, model.Meta) {
	if !a.Enabled() {
		return d, m
	}

	needed := neededFields(&m)
	if len(needed) == 0 {
		return d, m
	}

	out := m.Clone()

	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     a.model,
		MaxTokens: 1024,
		System:    systemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: buildPrompt(d, &out, needed)},
		},
	})
	if err != nil {
		zap.L().Warn("enrich: inference call failed", zap.Error(err))
		return d, m
	}

	suggestions, ok := parseSuggestions(resp.Text(), needed)
	if !ok {
		zap.L().Debug("enrich: inference response failed schema validation, ignoring")
		return d, m
	}

	for _, s := range suggestions {
		s.Applied = applySuggestion(&d, &out, s)
		out.AISuggestions = append(out.AISuggestions, s)
	}

	return d, out
}

func neededFields(m *model.Meta) []model.Field {
	var out []model.Field
	for _, f := range aiFields {
		if eligible(m, f) {
			out = append(out, f)
		}
	}
	return out
}

func buildPrompt(d model.Draft, m *model.Meta, needed []model.Field) string {
	known := map[string]any{}
	if d.Name != "" {
		known["name"] = d.Name
	}
	if d.Address != "" {
		known["address"] = d.Address
	}
	if d.City != "" {
		known["city"] = d.City
	}
	if d.Country != "" {
		known["country"] = d.Country
	}
	if d.Category != "" {
		known["category"] = string(d.Category)
	}
	if d.Comments != "" {
		known["description"] = d.Comments
	}
	known["source_url"] = d.SourceURL

	fields := make([]string, len(needed))
	for i, f := range needed {
		fields[i] = string(f)
	}

	payload := map[string]any{
		"known":            known,
		"signals":          m.Signals,
		"fields_to_infer":  fields,
		"category_options": model.AllCategories(),
	}
	b, _ := json.Marshal(payload)
	return string(b)
}

type aiSuggestionPayload struct {
	Value      *string `json:"value"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// parseSuggestions schema-validates the backend's reply. Any field
// outside the requested set is discarded; a reply that is not a JSON
// object of the expected shape yields ok=false.
func parseSuggestions(text string, needed []model.Field) ([]model.AISuggestion, bool) {
	text = stripFences(text)

	var decoded map[string]aiSuggestionPayload
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return nil, false
	}

	allowed := map[model.Field]bool{}
	for _, f := range needed {
		allowed[f] = true
	}

	var out []model.AISuggestion
	for name, p := range decoded {
		f := model.Field(name)
		if !allowed[f] {
			continue
		}
		if p.Value == nil || strings.TrimSpace(*p.Value) == "" {
			continue
		}
		if p.Confidence < 0 || p.Confidence > 1 {
			return nil, false
		}
		out = append(out, model.AISuggestion{
			Field:      f,
			Value:      strings.TrimSpace(*p.Value),
			Confidence: p.Confidence,
			Reasoning:  p.Reasoning,
		})
	}
	return out, true
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if i := strings.LastIndex(text, "```"); i >= 0 {
			text = text[:i]
		}
	}
	return strings.TrimSpace(text)
}

// applySuggestion applies the threshold policy to one suggestion.
// It reports whether the draft was changed.
func applySuggestion(d *model.Draft, m *model.Meta, s model.AISuggestion) bool {
	if !eligible(m, s.Field) {
		return false
	}
	if s.Confidence < applyWarn {
		return false
	}

	tier := model.ConfidenceMedium
	if s.Confidence >= applySilent {
		tier = model.ConfidenceHigh
	}
	// Never downgrade: an existing low value only moves up.
	if tier <= m.Confidence(s.Field) {
		return false
	}

	switch s.Field {
	case model.FieldCity:
		d.City = s.Value
		d.CityID = geotext.CanonicalCityID(s.Value)
	case model.FieldCountry:
		d.Country = s.Value
	case model.FieldContinent:
		d.Continent = s.Value
	case model.FieldCategory:
		cat := model.Category(strings.ToLower(s.Value))
		if !validCategory(cat) {
			return false
		}
		d.Category = cat
	default:
		return false
	}

	m.SetField(s.Field, tier)
	if s.Confidence < applySilent {
		evidence := s.Reasoning
		if evidence == "" {
			evidence = "weak evidence"
		}
		m.Warn("%s was inferred (%s); please verify", s.Field, evidence)
	}
	return true
}

func validCategory(c model.Category) bool {
	for _, v := range model.AllCategories() {
		if c == v {
			return true
		}
	}
	return false
}
