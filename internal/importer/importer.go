// Package importer wires the full pipeline: normalize, classify,
// extract with graceful degradation, enrich, infer a visit time, and
// hand back a gated draft for confirmation.
package importer

import (
	"context"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/tripstash/placeimport/internal/enrich"
	"github.com/tripstash/placeimport/internal/extract"
	"github.com/tripstash/placeimport/internal/geotext"
	"github.com/tripstash/placeimport/internal/model"
	"github.com/tripstash/placeimport/internal/provider"
	"github.com/tripstash/placeimport/internal/urlnorm"
	"github.com/tripstash/placeimport/pkg/fetch"
)

// Importer runs one URL through the whole import pipeline. It is safe
// for concurrent use.
type Importer struct {
	norm *urlnorm.Normalizer
	ai   *enrich.AI

	googleMaps *extract.GoogleMaps
	curated    *extract.Curated
	social     *extract.Social
	website    *extract.Website
}

// New assembles the pipeline. The curated strategy re-enters the
// pipeline for pin destinations, so it is wired back to the importer
// after construction.
func New(fetcher *fetch.Fetcher, googleMaps *extract.GoogleMaps, search extract.Searcher, ai *enrich.AI) *Importer {
	i := &Importer{
		norm:       urlnorm.New(fetcher),
		ai:         ai,
		googleMaps: googleMaps,
		curated:    extract.NewCurated(fetcher),
		social:     extract.NewSocial(fetcher),
		website:    extract.NewWebsite(fetcher, search),
	}
	i.curated.SetRecurser(i)
	return i
}

// Import runs the pipeline for one pasted URL.
func (i *Importer) Import(ctx context.Context, rawURL string) (*model.ImportResult, error) {
	return i.Run(ctx, rawURL, 0)
}

// Run is the re-enterable pipeline core. Depth is zero for a pasted
// URL and grows when the curated strategy follows a pin destination;
// AI enrichment and visit-time inference run only at the top level so
// a recursed result pays for them exactly once, after merging.
func (i *Importer) Run(ctx context.Context, rawURL string, depth int) (*model.ImportResult, error) {
	resolved, warnings, err := i.norm.Normalize(ctx, rawURL)
	if err != nil {
		return nil, eris.Wrap(err, "importer")
	}

	cls := provider.Classify(resolved)
	strategy := i.strategyFor(cls.Provider)

	zap.L().Info("importer: extracting",
		zap.String("url", resolved),
		zap.String("provider", string(cls.Provider)),
		zap.String("strategy", strategy.Name()),
		zap.Int("depth", depth),
	)

	res, err := strategy.Extract(ctx, extract.Request{URL: resolved, Classification: cls, Depth: depth})
	if err != nil {
		if strategy == extract.Strategy(i.website) || strategy == extract.Strategy(i.googleMaps) {
			return nil, eris.Wrapf(err, "importer: %s extraction", strategy.Name())
		}
		// Degrade to the generic scrape rather than failing the import.
		zap.L().Warn("importer: strategy failed, degrading to generic scrape",
			zap.String("strategy", strategy.Name()),
			zap.Error(err),
		)
		res, err = i.website.Extract(ctx, extract.Request{URL: resolved, Classification: cls, Depth: depth})
		if err != nil {
			return nil, eris.Wrap(err, "importer: fallback extraction")
		}
		res.Meta.Warn("the %s page could not be processed normally; generic extraction was used", cls.Provider)
	}

	res.Meta.Warnings = append(warnings, res.Meta.Warnings...)
	if tld := countryTLD(resolved); tld != "" {
		res.Meta.AddSignal("tld", tld)
	}

	draft, meta := enrich.Deterministic(res.Draft, res.Meta)

	if depth == 0 && i.ai.Enabled() {
		draft, meta = i.ai.Apply(ctx, draft, meta)
	}
	if depth == 0 {
		draft = enrich.VisitFromHours(draft)
		draft = enrich.InferVisitTime(draft)
	}

	meta.RecomputeGate()

	zap.L().Debug("importer: done",
		zap.String("import_id", meta.ImportID),
		zap.String("method", string(meta.Method)),
		zap.Bool("requires_confirmation", meta.RequiresConfirmation),
		zap.Int("warnings", len(meta.Warnings)),
	)
	return &model.ImportResult{Draft: draft, Meta: meta}, nil
}

func (i *Importer) strategyFor(p model.Provider) extract.Strategy {
	switch p {
	case model.ProviderGoogleMaps:
		return i.googleMaps
	case model.ProviderPinterest:
		return i.curated
	case model.ProviderSocial:
		return i.social
	default:
		// Review sites and unclassified websites share the generic
		// scrape chain.
		return i.website
	}
}

// countryTLD returns the URL's country-code domain suffix when it maps
// to a known country, empty otherwise.
func countryTLD(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return ""
	}

	tld := labels[len(labels)-1]
	if _, ok := geotext.CountryForTLD(tld); !ok {
		return ""
	}
	return tld
}
