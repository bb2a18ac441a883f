package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Syfer2025/Catlogodepeas-sub005/internal/autocateg"
	"github.com/Syfer2025/Catlogodepeas-sub005/internal/storage"
	"github.com/Syfer2025/Catlogodepeas-sub005/internal/watcher"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Fetch the catalog and score every product against the category tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		client, err := newCatalogClient(store)
		if err != nil {
			return err
		}

		log.Info().Msg("fetching catalog data")
		ds, err := autocateg.FetchDataset(ctx, client)
		if err != nil {
			return err
		}

		engine := autocateg.NewEngine(ds.Tree)
		log.Info().
			Int("products", len(ds.Products)).
			Int("categories", len(engine.Categories())).
			Msg("dataset ready")

		run, err := store.CreateRun(storage.RunSourceManual, len(ds.Products))
		if err != nil {
			return err
		}

		started := time.Now()
		results, runErr := engine.Run(ctx, ds, func(processed, total, matched int) {
			log.Info().
				Int("processed", processed).
				Int("total", total).
				Int("matched", matched).
				Msg("scoring products")
		})
		if runErr != nil {
			log.Warn().Err(runErr).Msg("analysis interrupted, keeping scored results")
		}

		if err := store.SaveResults(run.ID, results); err != nil {
			return err
		}

		status := storage.RunStatusDone
		if runErr != nil {
			status = storage.RunStatusCancelled
		}
		summary := autocateg.Summarize(results)
		if err := store.FinishRun(run.ID, status, summary); err != nil {
			return err
		}
		log.Info().
			Str("runID", run.ID).
			Dur("duration", time.Since(started)).
			Msg("analysis finished")

		fmt.Println(formatText(`
			Run %s (%s)

			  Products scored:  %d
			  Matched:          %d
			  High confidence:  %d
			  Already correct:  %d

			Next: autocateg review %s
		`, run.ID, status, summary.Total, summary.Matched, summary.HighConfidence, summary.AlreadyCorrect, run.ID))
		return nil
	},
}

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the catalog and score new uncategorized products as they appear",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		client, err := newCatalogClient(store)
		if err != nil {
			return err
		}

		watcher.NewService(store, client, watchInterval).Run(cmd.Context())
		return nil
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", watcher.DefaultPollInterval, "time between catalog polls")
}
