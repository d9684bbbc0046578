package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tripstash/placeimport/internal/config"
	"github.com/tripstash/placeimport/internal/enrich"
	"github.com/tripstash/placeimport/internal/extract"
	"github.com/tripstash/placeimport/internal/importer"
	anthropicpkg "github.com/tripstash/placeimport/pkg/anthropic"
	"github.com/tripstash/placeimport/pkg/fetch"
	"github.com/tripstash/placeimport/pkg/foursquare"
	"github.com/tripstash/placeimport/pkg/places"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "placeimport",
	Short: "URL-to-place-draft import pipeline",
	Long:  "Turns a pasted URL (maps link, pin, review page, social post, or plain website) into a draft place record with per-field confidence, ready for confirmation.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// newImporter assembles the pipeline from the loaded configuration.
// Missing API keys disable the corresponding collaborators rather than
// failing startup.
func newImporter() *importer.Importer {
	opts := []fetch.Option{
		fetch.WithTimeout(time.Duration(cfg.Fetch.TimeoutSecs) * time.Second),
		fetch.WithMaxBody(cfg.Fetch.MaxBodyBytes),
		fetch.WithRateLimit(cfg.Fetch.RequestsPerSec),
	}
	if cfg.Fetch.UserAgent != "" {
		opts = append(opts, fetch.WithUserAgent(cfg.Fetch.UserAgent))
	}
	fetcher := fetch.New(opts...)

	var placesClient places.Client
	if cfg.Places.Key != "" {
		placesClient = places.NewClient(cfg.Places.Key)
	}

	// Recovery searches prefer the Places backend and fall back to
	// Foursquare when only that key is configured.
	var search extract.Searcher
	switch {
	case placesClient != nil:
		search = extract.NewPlacesSearcher(placesClient)
	case cfg.Foursquare.Key != "":
		search = extract.NewFoursquareSearcher(foursquare.NewClient(cfg.Foursquare.Key))
	}

	var ai *enrich.AI
	if cfg.Anthropic.Key != "" {
		ai = enrich.NewAI(anthropicpkg.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model)
	}

	return importer.New(fetcher, extract.NewGoogleMaps(placesClient), search, ai)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
