package extract

import (
	"bytes"
	"context"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/tripstash/placeimport/internal/geotext"
	"github.com/tripstash/placeimport/internal/model"
	"github.com/tripstash/placeimport/internal/provider"
	"github.com/tripstash/placeimport/pkg/fetch"
)

// Website is the generic fallback strategy for unclassified sites and
// review pages: structured data first, then meta tags, then a heading
// or URL-derived title, with regex address heuristics over the visible
// text.
type Website struct {
	fetcher *fetch.Fetcher
	search  Searcher // optional last-resort recovery backend
}

// NewWebsite creates the strategy. search may be nil.
func NewWebsite(f *fetch.Fetcher, search Searcher) *Website {
	return &Website{fetcher: f, search: search}
}

func (s *Website) Name() string { return "website" }

// Extract scrapes the page through the extraction priority chain.
func (s *Website) Extract(ctx context.Context, req Request) (*model.ImportResult, error) {
	meta := model.NewMeta(req.Classification.Provider, req.Classification.Confidence)

	page, err := s.fetcher.Get(ctx, req.URL)
	if err != nil || !page.OK() || page.Blocked() || !page.IsHTML() {
		if err != nil {
			zap.L().Debug("extract: website fetch failed", zap.String("url", req.URL), zap.Error(err))
		}
		return s.recover(ctx, req, meta), nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		meta.Warn("page could not be parsed as HTML")
		return s.recover(ctx, req, meta), nil
	}

	draft := model.Draft{SourceURL: req.URL}

	// 1. Structured data: a scored pick among the embedded blocks.
	if block, ok := pickLD(doc); ok {
		s.applyStructured(&draft, &meta, block)
	}

	// 2. Meta tags.
	pm := parseMeta(doc)
	if draft.Name == "" {
		if title := cleanTitle(pm.Title); title != "" {
			draft.Name = title
			meta.SetField(model.FieldName, model.ConfidenceLow)
			if meta.Method == "" {
				meta.Method = model.MethodMetaTags
			}
		}
	}
	if draft.Comments == "" && pm.Description != "" {
		draft.Comments = pm.Description
	}
	if draft.PhotoURL == "" && pm.Image != "" {
		draft.PhotoURL = pm.Image
		meta.SetField(model.FieldPhoto, model.ConfidenceLow)
	}

	// 3. First heading, then URL-derived title, as a last resort.
	if draft.Name == "" {
		if h1 := cleanTitle(doc.Find("h1").First().Text()); h1 != "" {
			draft.Name = h1
			meta.SetField(model.FieldName, model.ConfidenceLow)
		} else if name := provider.NameFromURL(req.URL); name != "" {
			draft.Name = name
			meta.SetField(model.FieldName, model.ConfidenceLow)
		}
		if meta.Method == "" {
			meta.Method = model.MethodTitleFallback
		}
	}

	// Address heuristics over visible text, only when structured data
	// has not already supplied an address. Country attribution from
	// postal codes is owned by the deterministic enrichment pass.
	if draft.Address == "" {
		s.applyTextAddress(&draft, &meta, visibleText(doc))
	}

	if meta.Method == "" {
		meta.Method = model.MethodMetaTags
	}
	meta.RecomputeGate()
	return &model.ImportResult{Draft: draft, Meta: meta}, nil
}

// applyStructured fills the draft from the best JSON-LD block. Values
// come from the site's own publication, so they cap at medium.
func (s *Website) applyStructured(draft *model.Draft, meta *model.Meta, block ldBlock) {
	meta.Method = model.MethodStructuredData

	if name := ldString(block, "name"); name != "" {
		draft.Name = name
		meta.SetField(model.FieldName, model.ConfidenceMedium)
	}
	if addr := parseLDAddress(block); addr != nil {
		if addr.Full != "" {
			draft.Address = addr.Full
			meta.SetField(model.FieldAddress, model.ConfidenceMedium)
		}
		if addr.Locality != "" {
			draft.City = addr.Locality
			draft.CityID = geotext.CanonicalCityID(addr.Locality)
			meta.SetField(model.FieldCity, model.ConfidenceMedium)
		}
		if addr.Country != "" {
			draft.Country = geotext.NormalizeCountry(addr.Country)
			meta.SetField(model.FieldCountry, model.ConfidenceMedium)
		}
		if addr.PostalCode != "" {
			meta.AddSignal("postal_code", addr.PostalCode)
		}
	}
	if geo := parseLDGeo(block); geo != nil {
		draft.Coordinates = geo
		meta.SetField(model.FieldCoordinates, model.ConfidenceMedium)
	}
	if cat := categoryFromLD(block); cat != "" {
		draft.Category = cat
		meta.SetField(model.FieldCategory, model.ConfidenceMedium)
	}
	if hours := parseLDHours(block); hours != nil {
		draft.Hours = hours
	}
	if img := ldString(block, "image"); img != "" && draft.PhotoURL == "" {
		draft.PhotoURL = img
		meta.SetField(model.FieldPhoto, model.ConfidenceMedium)
	}
	for _, t := range ldTypes(block) {
		meta.AddSignal("ld_type", t)
	}
}

// applyTextAddress runs the per-style postal regexes over the page
// text and records what they find as signals plus weak field values.
func (s *Website) applyTextAddress(draft *model.Draft, meta *model.Meta, text string) {
	for _, m := range geotext.DetectPostal(text) {
		meta.AddSignal("postal_code", m.Code)
		if m.City != "" && draft.City == "" {
			draft.City = m.City
			draft.CityID = geotext.CanonicalCityID(m.City)
			meta.SetField(model.FieldCity, model.ConfidenceMedium)
		}
	}
}

// recover handles a blocked or unreadable page: one text-search call
// against the configured place-search backend when a derivable title
// exists, otherwise a minimal stub requiring full confirmation.
func (s *Website) recover(ctx context.Context, req Request, meta model.Meta) *model.ImportResult {
	title := provider.NameFromURL(req.URL)

	if title != "" && s.search != nil {
		result, err := s.search.SearchPlace(ctx, title, nil)
		if err == nil && result != nil {
			return s.fromSearch(req, meta, title, result)
		}
		if err != nil {
			zap.L().Debug("extract: search recovery failed", zap.String("query", title), zap.Error(err))
		}
	}

	meta.Method = model.MethodTitleFallback
	meta.Warn("page could not be fetched; fill in the details manually")

	draft := model.Draft{SourceURL: req.URL}
	if title != "" {
		draft.Name = title
		meta.SetField(model.FieldName, model.ConfidenceLow)
	}
	meta.RecomputeGate()
	return &model.ImportResult{Draft: draft, Meta: meta}
}

func (s *Website) fromSearch(req Request, meta model.Meta, query string, r *SearchResult) *model.ImportResult {
	meta.Method = model.MethodSearchRecovery
	meta.Warn("page was unreachable; details recovered by searching for %q", query)

	draft := model.Draft{
		Name:        r.Name,
		Address:     r.Address,
		City:        r.City,
		Country:     geotext.NormalizeCountry(r.Country),
		Coordinates: r.Coordinates,
		Category:    r.Category,
		SourceURL:   req.URL,
	}
	draft.CityID = geotext.CanonicalCityID(draft.City)
	if cont, ok := geotext.ContinentForCountry(draft.Country); ok {
		draft.Continent = cont
	}

	if draft.Name != "" {
		meta.SetField(model.FieldName, model.ConfidenceMedium)
	}
	if draft.Address != "" {
		meta.SetField(model.FieldAddress, model.ConfidenceMedium)
	}
	if draft.City != "" {
		meta.SetField(model.FieldCity, model.ConfidenceMedium)
	}
	if draft.Country != "" {
		meta.SetField(model.FieldCountry, model.ConfidenceMedium)
		meta.SetField(model.FieldContinent, model.ConfidenceMedium)
	}
	if draft.Coordinates != nil {
		meta.SetField(model.FieldCoordinates, model.ConfidenceMedium)
	}
	if draft.Category != "" {
		meta.SetField(model.FieldCategory, model.ConfidenceMedium)
	}

	meta.RecomputeGate()
	return &model.ImportResult{Draft: draft, Meta: meta}
}
