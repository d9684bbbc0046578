package extract

import (
	"bytes"
	"context"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/tripstash/placeimport/internal/model"
	"github.com/tripstash/placeimport/pkg/fetch"
)

// Social is the minimal low-trust strategy for ephemeral social posts:
// page metadata only, no location inference, every location field low.
type Social struct {
	fetcher *fetch.Fetcher
}

// NewSocial creates the strategy.
func NewSocial(f *fetch.Fetcher) *Social {
	return &Social{fetcher: f}
}

func (s *Social) Name() string { return "social" }

// Extract reads only the post's preview metadata.
func (s *Social) Extract(ctx context.Context, req Request) (*model.ImportResult, error) {
	meta := model.NewMeta(model.ProviderSocial, req.Classification.Confidence)
	meta.Method = model.MethodSocialMeta

	// Location fields are low by policy, populated or not.
	for _, f := range []model.Field{model.FieldName, model.FieldCity, model.FieldCountry, model.FieldCoordinates} {
		meta.SetField(f, model.ConfidenceLow)
	}

	draft := model.Draft{SourceURL: req.URL}

	page, err := s.fetcher.Get(ctx, req.URL)
	if err != nil || !page.OK() || page.Blocked() || !page.IsHTML() {
		if err != nil {
			zap.L().Debug("extract: social fetch failed", zap.String("url", req.URL), zap.Error(err))
		}
		meta.Warn("the post could not be read; fill in the details manually")
		meta.RecomputeGate()
		return &model.ImportResult{Draft: draft, Meta: meta}, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		meta.Warn("the post could not be parsed; fill in the details manually")
		meta.RecomputeGate()
		return &model.ImportResult{Draft: draft, Meta: meta}, nil
	}

	pm := parseMeta(doc)
	if name := cleanTitle(pm.Title); name != "" {
		draft.Name = name
	}
	if pm.Description != "" {
		draft.Comments = pm.Description
	}
	if pm.Image != "" {
		draft.PhotoURL = pm.Image
		meta.SetField(model.FieldPhoto, model.ConfidenceLow)
	}

	meta.RecomputeGate()
	return &model.ImportResult{Draft: draft, Meta: meta}, nil
}
