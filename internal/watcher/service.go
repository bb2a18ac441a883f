package watcher

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Syfer2025/Catlogodepeas-sub005/internal/autocateg"
	"github.com/Syfer2025/Catlogodepeas-sub005/internal/catalog"
	"github.com/Syfer2025/Catlogodepeas-sub005/internal/storage"
)

const (
	// DefaultPollInterval is the time between polling cycles.
	DefaultPollInterval = 30 * time.Minute

	// PruneInterval is how often the seen-product ledger gets pruned.
	PruneInterval = 24 * time.Hour

	// SeenProductsMaxAge is how long a product stays in the ledger before
	// the watcher will look at it again.
	SeenProductsMaxAge = 30 * 24 * time.Hour // 30 days

	// MinConfidenceToKeep is the score below which a watch suggestion is
	// not worth persisting for review.
	MinConfidenceToKeep = 50
)

// Service is the background watcher: it polls the catalog for products
// that are new and still uncategorized, scores them, and records a run
// with the suggestions worth reviewing.
type Service struct {
	store    *storage.SQLiteStore
	catalog  catalog.Service
	interval time.Duration
}

// NewService creates a watcher service. interval <= 0 falls back to
// DefaultPollInterval.
func NewService(store *storage.SQLiteStore, svc catalog.Service, interval time.Duration) *Service {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Service{
		store:    store,
		catalog:  svc,
		interval: interval,
	}
}

// Run starts the polling loop. It blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) {
	log.Info().Dur("interval", s.interval).Msg("starting watcher service")

	s.poll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	pruneTicker := time.NewTicker(PruneInterval)
	defer pruneTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("watcher service stopped")
			return
		case <-ticker.C:
			s.poll(ctx)
		case <-pruneTicker.C:
			s.pruneSeenProducts()
		}
	}
}

// poll executes one polling cycle.
func (s *Service) poll(ctx context.Context) {
	log.Debug().Msg("starting poll cycle")

	ds, err := autocateg.FetchDataset(ctx, s.catalog)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch catalog dataset")
		return
	}

	seen, err := s.store.SeenSKUs()
	if err != nil {
		log.Error().Err(err).Msg("failed to load seen products")
		return
	}

	var pending []catalog.Product
	for _, p := range ds.Products {
		if !seen[p.SKU] && ds.Current[p.SKU] == "" {
			pending = append(pending, p)
		}
	}

	if len(pending) == 0 {
		log.Debug().Msg("no new uncategorized products")
		return
	}

	log.Debug().Int("pending", len(pending)).Msg("scoring new products")

	engine := autocateg.NewEngine(ds.Tree)
	results, runErr := engine.Run(ctx, &autocateg.Dataset{
		Products:   pending,
		Attributes: ds.Attributes,
		Tree:       ds.Tree,
		Current:    ds.Current,
	}, nil)
	if runErr != nil {
		log.Warn().Err(runErr).Int("scored", len(results)).Msg("poll cut short, keeping scored results")
	}

	processed := make([]string, 0, len(results))
	var kept []autocateg.MatchResult
	for _, r := range results {
		processed = append(processed, r.SKU)
		if r.Confidence >= MinConfidenceToKeep {
			kept = append(kept, r)
		}
	}

	if len(kept) > 0 {
		if err := s.recordRun(len(pending), results, kept, runErr != nil); err != nil {
			log.Error().Err(err).Msg("failed to record watch run")
			return
		}
	} else {
		log.Debug().Int("scored", len(results)).Msg("nothing confident enough to keep")
	}

	if len(processed) > 0 {
		if err := s.store.MarkProductsSeen(processed); err != nil {
			log.Error().Err(err).Msg("failed to mark products seen")
		}
	}
}

// recordRun persists one watch cycle's worthwhile suggestions.
func (s *Service) recordRun(total int, results, kept []autocateg.MatchResult, cancelled bool) error {
	run, err := s.store.CreateRun(storage.RunSourceWatch, total)
	if err != nil {
		return err
	}

	if err := s.store.SaveResults(run.ID, kept); err != nil {
		return err
	}

	status := storage.RunStatusDone
	if cancelled {
		status = storage.RunStatusCancelled
	}
	if err := s.store.FinishRun(run.ID, status, autocateg.Summarize(results)); err != nil {
		return err
	}

	summary := autocateg.Summarize(kept)
	log.Info().
		Str("runID", run.ID).
		Int("scored", len(results)).
		Int("kept", len(kept)).
		Int("highConfidence", summary.HighConfidence).
		Msg("watch run recorded")

	return nil
}

// pruneSeenProducts removes old ledger entries to prevent database bloat.
func (s *Service) pruneSeenProducts() {
	count, err := s.store.PruneSeenProducts(SeenProductsMaxAge)
	if err != nil {
		log.Error().Err(err).Msg("failed to prune seen products")
		return
	}
	if count > 0 {
		log.Info().Int64("pruned", count).Msg("pruned old seen products")
	}
}
