package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/tripstash/placeimport/internal/model"
	"github.com/tripstash/placeimport/internal/provider"
	"github.com/tripstash/placeimport/pkg/fetch"
)

// Curated is the recursive pin/curation strategy. It extracts the
// curation page's own preview, looks for a destination URL, and runs
// the full pipeline on the destination one hop deep. Destination
// confidence is downgraded a tier and confirmation is always forced:
// a pin is an indirection, not a source.
type Curated struct {
	fetcher *fetch.Fetcher
	recurse Recurser
}

// NewCurated creates the strategy. The Recurser is set by the pipeline
// after construction to break the wiring cycle.
func NewCurated(f *fetch.Fetcher) *Curated {
	return &Curated{fetcher: f}
}

// SetRecurser wires the pipeline re-entry point.
func (s *Curated) SetRecurser(r Recurser) { s.recurse = r }

func (s *Curated) Name() string { return "curated" }

// Extract reads the pin's preview, then follows the destination URL if
// one exists and recursion is still allowed.
func (s *Curated) Extract(ctx context.Context, req Request) (*model.ImportResult, error) {
	meta := model.NewMeta(model.ProviderPinterest, req.Classification.Confidence)
	meta.ForceConfirmation = true

	preview, destination := s.readPage(ctx, req)

	if destination != "" && s.recurse != nil && req.Depth < MaxRecursionDepth {
		// A destination pointing at another curation page is treated
		// as no destination: at most one hop is ever followed.
		if provider.Classify(destination).Provider == model.ProviderPinterest {
			zap.L().Debug("extract: curated destination is another curation page, ignoring",
				zap.String("destination", destination),
			)
		} else {
			dest, err := s.recurse.Run(ctx, destination, req.Depth+1)
			if err == nil && dest != nil {
				return s.merge(req, meta, preview, destination, dest), nil
			}
			if err != nil {
				zap.L().Debug("extract: destination extraction failed",
					zap.String("destination", destination),
					zap.Error(err),
				)
				meta.Warn("the pin's destination page could not be read")
			}
		}
	}

	return s.fromPreview(req, meta, preview), nil
}

// readPage fetches the pin page, falling back to the unauthenticated
// oEmbed endpoint when the page itself blocks scraping.
func (s *Curated) readPage(ctx context.Context, req Request) (pageMeta, string) {
	page, err := s.fetcher.Get(ctx, req.URL)
	if err != nil || !page.OK() || page.Blocked() || !page.IsHTML() {
		if err != nil {
			zap.L().Debug("extract: curated page fetch failed", zap.String("url", req.URL), zap.Error(err))
		}
		return s.oembedPreview(ctx, req.URL), ""
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return s.oembedPreview(ctx, req.URL), ""
	}

	preview := parseMeta(doc)
	return preview, findDestination(doc, page.Body, req.URL)
}

// oembedResponse is the subset of the oEmbed payload we read.
type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// oembedPreview asks the provider's oEmbed endpoint for the pin's
// preview when the page is not directly readable.
func (s *Curated) oembedPreview(ctx context.Context, pinURL string) pageMeta {
	u, err := url.Parse(pinURL)
	if err != nil {
		return pageMeta{}
	}
	endpoint := u.Scheme + "://" + u.Host + "/oembed.json?url=" + url.QueryEscape(pinURL)

	page, err := s.fetcher.Get(ctx, endpoint)
	if err != nil || !page.OK() {
		return pageMeta{}
	}

	var resp oembedResponse
	if err := json.Unmarshal(page.Body, &resp); err != nil {
		return pageMeta{}
	}
	return pageMeta{
		Title:    resp.Title,
		SiteName: resp.AuthorName,
		Image:    resp.ThumbnailURL,
	}
}

var embeddedLinkRe = regexp.MustCompile(`"link"\s*:\s*"(https?:\\?/\\?/[^"]+)"`)

// findDestination looks for the URL the pin points at: structured
// data, an off-host canonical link, or the provider's internal JSON.
func findDestination(doc *goquery.Document, body []byte, pinURL string) string {
	pinHost := hostOf(pinURL)

	for _, block := range collectLD(doc) {
		for _, key := range []string{"url", "sameAs", "contentUrl"} {
			if dest := ldString(block, key); isOffHost(dest, pinHost) {
				return dest
			}
		}
	}

	if canonical, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok {
		if isOffHost(canonical, pinHost) {
			return canonical
		}
	}
	if seeAlso, ok := doc.Find(`meta[property="og:see_also"]`).First().Attr("content"); ok {
		if isOffHost(seeAlso, pinHost) {
			return seeAlso
		}
	}

	// Internal JSON state: the first off-host "link" field wins.
	for _, m := range embeddedLinkRe.FindAllSubmatch(body, 10) {
		dest := strings.ReplaceAll(string(m[1]), `\/`, "/")
		if isOffHost(dest, pinHost) {
			return dest
		}
	}

	return ""
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func isOffHost(raw, pinHost string) bool {
	if raw == "" || pinHost == "" {
		return false
	}
	h := hostOf(raw)
	if h == "" || h == pinHost {
		return false
	}
	// Subdomains of the curation service are still the same service.
	base := pinHost
	if i := strings.Index(base, "."); i > 0 {
		base = base[:i]
	}
	return !strings.Contains(h, base+".")
}

// merge combines the destination's structured result with the pin's
// presentation data. Destination fields win; the pin keeps its image
// and caption; every inherited confidence drops exactly one tier.
func (s *Curated) merge(req Request, meta model.Meta, preview pageMeta, destination string, dest *model.ImportResult) *model.ImportResult {
	draft := dest.Draft
	draft.SourceURL = req.URL

	if preview.Image != "" {
		draft.PhotoURL = preview.Image
	}
	caption := strings.TrimSpace(preview.Description)
	if caption == "" {
		caption = cleanTitle(preview.Title)
	}
	if caption != "" {
		if draft.Comments != "" {
			draft.Comments = caption + "\n" + draft.Comments
		} else {
			draft.Comments = caption
		}
	}

	meta.Method = model.MethodCuratedDestination
	meta.AddSignal("destination_url", destination)
	for f, c := range dest.Meta.Fields {
		meta.SetField(f, c.Downgrade())
	}
	if preview.Image != "" {
		meta.SetField(model.FieldPhoto, model.ConfidenceMedium)
	}
	meta.Warnings = append(meta.Warnings, dest.Meta.Warnings...)
	for k, vs := range dest.Meta.Signals {
		for _, v := range vs {
			meta.AddSignal(k, v)
		}
	}

	meta.RecomputeGate()
	return &model.ImportResult{Draft: draft, Meta: meta}
}

var inCityRe = regexp.MustCompile(`\bin ([A-Z][a-zA-Z]+(?: [A-Z][a-zA-Z]+)?)\b`)

// fromPreview builds a weak draft from the pin's own title and
// description: explicit keyword matches only, never fuzzy guesses.
func (s *Curated) fromPreview(req Request, meta model.Meta, preview pageMeta) *model.ImportResult {
	meta.Method = model.MethodCuratedPage

	draft := model.Draft{SourceURL: req.URL}

	if name := cleanTitle(preview.Title); name != "" {
		draft.Name = name
		meta.SetField(model.FieldName, model.ConfidenceMedium)
	}
	if preview.Description != "" {
		draft.Comments = preview.Description
	}
	if preview.Image != "" {
		draft.PhotoURL = preview.Image
		meta.SetField(model.FieldPhoto, model.ConfidenceMedium)
	}

	text := preview.Title + " " + preview.Description
	if cat, keyword := categoryFromKeywords(text); cat != "" {
		draft.Category = cat
		meta.SetField(model.FieldCategory, model.ConfidenceMedium)
		meta.AddSignal("category_keyword", keyword)
	}
	if m := inCityRe.FindStringSubmatch(text); m != nil {
		draft.City = m[1]
		meta.SetField(model.FieldCity, model.ConfidenceLow)
		meta.AddSignal("city_phrase", m[0])
	}

	if draft.Name == "" && draft.PhotoURL == "" {
		meta.Warn("nothing could be read from the pin; fill in the details manually")
	}

	meta.RecomputeGate()
	return &model.ImportResult{Draft: draft, Meta: meta}
}
