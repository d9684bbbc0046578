package main

import (
	"encoding/json"
	"os"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tripstash/placeimport/internal/model"
)

var importConcurrency int

var importCmd = &cobra.Command{
	Use:   "import URL [URL...]",
	Short: "Import one or more URLs into draft place records",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		imp := newImporter()

		concurrency := importConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Import.MaxConcurrent
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)

		// Each goroutine writes its own slot, so no lock is needed.
		results := make([]*model.ImportResult, len(args))
		var failed atomic.Int64

		for idx, rawURL := range args {
			idx, rawURL := idx, rawURL
			g.Go(func() error {
				log := zap.L().With(zap.String("url", rawURL))

				res, err := imp.Import(gctx, rawURL)
				if err != nil {
					failed.Add(1)
					log.Error("import failed", zap.Error(err))
					return nil // one bad URL does not abort the batch
				}

				log.Info("import complete",
					zap.String("name", res.Draft.Name),
					zap.String("provider", string(res.Meta.Provider)),
					zap.Bool("requires_confirmation", res.Meta.RequiresConfirmation),
				)
				results[idx] = res
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "import batch")
		}

		out := make([]*model.ImportResult, 0, len(results))
		for _, r := range results {
			if r != nil {
				out = append(out, r)
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return eris.Wrap(err, "encode results")
		}

		if n := failed.Load(); n > 0 {
			zap.L().Warn("some imports failed", zap.Int64("failed", n), zap.Int("total", len(args)))
		}
		return nil
	},
}

func init() {
	importCmd.Flags().IntVar(&importConcurrency, "concurrency", 0, "concurrent imports (default from config)")
	rootCmd.AddCommand(importCmd)
}
