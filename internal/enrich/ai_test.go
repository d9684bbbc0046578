package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripstash/placeimport/internal/model"
	"github.com/tripstash/placeimport/pkg/anthropic"
)

type fakeInference struct {
	reply string
	err   error
	calls int
	last  anthropic.MessageRequest
}

func (f *fakeInference) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: f.reply}},
	}, nil
}

func TestAIAppliesHighConfidenceSilently(t *testing.T) {
	fake := &fakeInference{
		reply: `{"country": {"value": "Japan", "confidence": 0.92, "reasoning": "address is in Tokyo"}}`,
	}
	ai := NewAI(fake, "claude-sonnet-4-20250514")

	m := model.NewMeta(model.ProviderWebsite, model.ConfidenceLow)
	d := model.Draft{Name: "Afuri Ramen", Address: "Ebisu, Tokyo"}

	out, meta := ai.Apply(context.Background(), d, m)

	assert.Equal(t, "Japan", out.Country)
	assert.Equal(t, model.ConfidenceHigh, meta.Confidence(model.FieldCountry))
	assert.Empty(t, meta.Warnings)

	require.Len(t, meta.AISuggestions, 1)
	assert.True(t, meta.AISuggestions[0].Applied)
}

func TestAIAppliesMidConfidenceWithWarning(t *testing.T) {
	fake := &fakeInference{
		reply: `{"city": {"value": "Lisbon", "confidence": 0.55, "reasoning": "caption mentions Alfama"}}`,
	}
	ai := NewAI(fake, "m")

	m := model.NewMeta(model.ProviderSocial, model.ConfidenceMedium)
	out, meta := ai.Apply(context.Background(), model.Draft{Name: "Miradouro"}, m)

	assert.Equal(t, "Lisbon", out.City)
	assert.Equal(t, "lisbon", out.CityID)
	assert.Equal(t, model.ConfidenceMedium, meta.Confidence(model.FieldCity))

	require.Len(t, meta.Warnings, 1)
	assert.Contains(t, meta.Warnings[0], "city was inferred")
	assert.Contains(t, meta.Warnings[0], "Alfama")
}

func TestAIDiscardsLowConfidence(t *testing.T) {
	fake := &fakeInference{
		reply: `{"country": {"value": "Portugal", "confidence": 0.2, "reasoning": "guess"}}`,
	}
	ai := NewAI(fake, "m")

	m := model.NewMeta(model.ProviderWebsite, model.ConfidenceLow)
	out, meta := ai.Apply(context.Background(), model.Draft{}, m)

	assert.Empty(t, out.Country)
	assert.Equal(t, model.ConfidenceNone, meta.Confidence(model.FieldCountry))

	require.Len(t, meta.AISuggestions, 1)
	assert.False(t, meta.AISuggestions[0].Applied)
}

func TestAIThresholdBoundaries(t *testing.T) {
	cases := []struct {
		name       string
		confidence string
		applied    bool
		tier       model.Confidence
		warnings   int
	}{
		{"exactly 0.8 applies silently", "0.8", true, model.ConfidenceHigh, 0},
		{"exactly 0.4 applies with warning", "0.4", true, model.ConfidenceMedium, 1},
		{"just under 0.4 is discarded", "0.39", false, model.ConfidenceNone, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeInference{
				reply: `{"country": {"value": "Japan", "confidence": ` + tc.confidence + `, "reasoning": "tokyo in address"}}`,
			}
			ai := NewAI(fake, "m")

			m := model.NewMeta(model.ProviderWebsite, model.ConfidenceLow)
			out, meta := ai.Apply(context.Background(), model.Draft{}, m)

			require.Len(t, meta.AISuggestions, 1)
			assert.Equal(t, tc.applied, meta.AISuggestions[0].Applied)
			assert.Equal(t, tc.tier, meta.Confidence(model.FieldCountry))
			assert.Len(t, meta.Warnings, tc.warnings)
			if tc.applied {
				assert.Equal(t, "Japan", out.Country)
			} else {
				assert.Empty(t, out.Country)
			}
		})
	}
}

func TestAISkipsTrustedFields(t *testing.T) {
	fake := &fakeInference{reply: `{}`}
	ai := NewAI(fake, "m")

	m := model.NewMeta(model.ProviderGoogleMaps, model.ConfidenceHigh)
	for _, f := range aiFields {
		m.SetField(f, model.ConfidenceHigh)
	}

	_, _ = ai.Apply(context.Background(), model.Draft{}, m)

	assert.Zero(t, fake.calls, "no eligible fields should mean no backend call")
}

func TestAITreatsBackendFailureAsNoSuggestion(t *testing.T) {
	fake := &fakeInference{err: errors.New("rate limited")}
	ai := NewAI(fake, "m")

	m := model.NewMeta(model.ProviderWebsite, model.ConfidenceLow)
	d := model.Draft{Name: "Somewhere"}

	out, meta := ai.Apply(context.Background(), d, m)

	assert.Equal(t, d, out)
	assert.Empty(t, meta.AISuggestions)
	assert.Empty(t, meta.Warnings)
}

func TestAIRejectsMalformedReply(t *testing.T) {
	for name, reply := range map[string]string{
		"prose":          "The city is probably Lisbon.",
		"bad confidence": `{"city": {"value": "Lisbon", "confidence": 7}}`,
	} {
		t.Run(name, func(t *testing.T) {
			ai := NewAI(&fakeInference{reply: reply}, "m")

			m := model.NewMeta(model.ProviderWebsite, model.ConfidenceLow)
			out, meta := ai.Apply(context.Background(), model.Draft{}, m)

			assert.Empty(t, out.City)
			assert.Empty(t, meta.AISuggestions)
		})
	}
}

func TestAIIgnoresUnrequestedFields(t *testing.T) {
	fake := &fakeInference{
		reply: `{"coordinates": {"value": "38.7,-9.1", "confidence": 0.99}, "name": {"value": "Hacked", "confidence": 0.99}}`,
	}
	ai := NewAI(fake, "m")

	m := model.NewMeta(model.ProviderWebsite, model.ConfidenceLow)
	d := model.Draft{Name: "Original"}

	out, meta := ai.Apply(context.Background(), d, m)

	assert.Equal(t, "Original", out.Name)
	assert.Nil(t, out.Coordinates)
	assert.Empty(t, meta.AISuggestions)
}

func TestAIValidatesCategoryVocabulary(t *testing.T) {
	fake := &fakeInference{
		reply: `{"category": {"value": "speakeasy", "confidence": 0.95}}`,
	}
	ai := NewAI(fake, "m")

	m := model.NewMeta(model.ProviderWebsite, model.ConfidenceLow)
	out, meta := ai.Apply(context.Background(), model.Draft{}, m)

	assert.Empty(t, out.Category)
	require.Len(t, meta.AISuggestions, 1)
	assert.False(t, meta.AISuggestions[0].Applied)
}

func TestAIDisabledWithoutClient(t *testing.T) {
	ai := NewAI(nil, "")
	assert.False(t, ai.Enabled())

	m := model.NewMeta(model.ProviderWebsite, model.ConfidenceLow)
	d := model.Draft{Name: "Somewhere"}

	out, meta := ai.Apply(context.Background(), d, m)
	assert.Equal(t, d, out)
	assert.Equal(t, m, meta)
}
