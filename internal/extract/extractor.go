// Package extract implements the provider extraction strategies. Every
// strategy honors the same contract: resolved URL in, draft plus
// metadata out, degrading to weaker sub-paths instead of failing.
package extract

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/tripstash/placeimport/internal/model"
	"github.com/tripstash/placeimport/internal/provider"
)

// Request carries one extraction attempt through a strategy.
type Request struct {
	URL            string
	Classification provider.Classification
	// Depth counts recursive pipeline hops; the curated strategy
	// refuses to follow destinations past MaxRecursionDepth.
	Depth int
}

// Strategy is the common extraction contract.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, req Request) (*model.ImportResult, error)
}

// Recurser re-enters the full import pipeline for a destination URL
// discovered inside a curation page.
type Recurser interface {
	Run(ctx context.Context, url string, depth int) (*model.ImportResult, error)
}

// MaxRecursionDepth bounds curated-destination recursion to one hop.
const MaxRecursionDepth = 1

// SearchResult is a place found through a text-search backend.
type SearchResult struct {
	Name        string
	Address     string
	City        string
	Country     string
	Coordinates *model.Coordinates
	Category    model.Category
}

// Searcher is the optional authoritative place-search backend used for
// last-resort recovery when a page cannot be read.
type Searcher interface {
	SearchPlace(ctx context.Context, query string, bias *model.Coordinates) (*SearchResult, error)
}

// pageMeta holds the preview metadata of an HTML page.
type pageMeta struct {
	Title       string
	Description string
	Image       string
	SiteName    string
	Canonical   string
}

// parseMeta reads Open Graph, Twitter, and plain HTML metadata.
func parseMeta(doc *goquery.Document) pageMeta {
	var m pageMeta

	metaContent := func(names ...string) string {
		for _, name := range names {
			sel := doc.Find(`meta[property="` + name + `"], meta[name="` + name + `"]`).First()
			if v, ok := sel.Attr("content"); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
		return ""
	}

	m.Title = metaContent("og:title", "twitter:title")
	if m.Title == "" {
		m.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	m.Description = metaContent("og:description", "twitter:description", "description")
	m.Image = metaContent("og:image", "twitter:image")
	m.SiteName = metaContent("og:site_name")
	if href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok {
		m.Canonical = strings.TrimSpace(href)
	}

	return m
}

// cleanTitle strips common site-name suffixes from a page title:
// "The Ivy | Covent Garden" keeps its head segment.
func cleanTitle(title string) string {
	for _, sep := range []string{" | ", " – ", " — ", " - "} {
		if i := strings.Index(title, sep); i > 0 {
			return strings.TrimSpace(title[:i])
		}
	}
	return strings.TrimSpace(title)
}

// visibleText extracts the page's visible text with scripts and styles
// removed, collapsed to single spaces.
func visibleText(doc *goquery.Document) string {
	clone := doc.Clone()
	clone.Find("script, style, noscript, nav, footer").Remove()
	return strings.Join(strings.Fields(clone.Find("body").Text()), " ")
}

// categoryKeywords maps explicit keywords to categories. Matching is
// word-boundary exact, never fuzzy.
var categoryKeywords = map[string]model.Category{
	"restaurant":  model.CategoryRestaurant,
	"bistro":      model.CategoryRestaurant,
	"trattoria":   model.CategoryRestaurant,
	"cafe":        model.CategoryCafe,
	"café":        model.CategoryCafe,
	"coffee":      model.CategoryCafe,
	"bar":         model.CategoryBar,
	"pub":         model.CategoryBar,
	"bakery":      model.CategoryBakery,
	"patisserie":  model.CategoryBakery,
	"hotel":       model.CategoryHotel,
	"hostel":      model.CategoryHotel,
	"museum":      model.CategoryMuseum,
	"gallery":     model.CategoryGallery,
	"park":        model.CategoryPark,
	"garden":      model.CategoryPark,
	"viewpoint":   model.CategoryViewpoint,
	"beach":       model.CategoryBeach,
	"shop":        model.CategoryShop,
	"store":       model.CategoryShop,
	"market":      model.CategoryShop,
	"attraction":  model.CategoryAttraction,
	"monument":    model.CategoryAttraction,
	"landmark":    model.CategoryAttraction,
}

// categoryFromKeywords finds the first explicit category keyword in
// text, scanning whole words only.
func categoryFromKeywords(text string) (model.Category, string) {
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,;:!?()[]\"'")
		if cat, ok := categoryKeywords[word]; ok {
			return cat, word
		}
	}
	return "", ""
}
