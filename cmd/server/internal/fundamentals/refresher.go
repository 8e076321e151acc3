package fundamentals

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/EuroPitch/Trading-Software/pkg/config"
	"github.com/EuroPitch/Trading-Software/pkg/models"
)

// Refresher owns the fundamentals layer: it periodically pulls history and
// metrics for every universe symbol, merges them with stale-retention
// semantics, and persists the result. It is the only writer of the map;
// readers get immutable snapshots swapped in at the end of each cycle.
type Refresher struct {
	fetcher Fetcher
	store   Store
	logger  *zap.Logger
	symbols []string

	interval    time.Duration
	emptyRetry  time.Duration
	symbolDelay time.Duration

	mu    sync.RWMutex
	cache models.FundamentalsMap
}

// NewRefresher builds a Refresher warm-started from the durable store. A
// load failure degrades to a cold (empty) cache and is never fatal.
func NewRefresher(fetcher Fetcher, store Store, symbols []string, cfg config.RefreshConfig, logger *zap.Logger) *Refresher {
	cache, err := store.Load()
	if err != nil {
		logger.Warn("Cache load failed, starting cold", zap.Error(err))
	} else if len(cache) > 0 {
		logger.Info("Loaded cached fundamentals from disk", zap.Int("symbols", len(cache)))
	}

	return &Refresher{
		fetcher:     fetcher,
		store:       store,
		logger:      logger,
		symbols:     symbols,
		interval:    cfg.Interval,
		emptyRetry:  cfg.EmptyRetry,
		symbolDelay: cfg.SymbolDelay,
		cache:       cache,
	}
}

// Snapshot returns the current fundamentals map. The map is never mutated
// after publication, so callers may read it without further locking.
func (r *Refresher) Snapshot() models.FundamentalsMap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cache
}

// Get returns the cached record for one symbol.
func (r *Refresher) Get(symbol string) (models.Fundamentals, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.cache[symbol]
	return rec, ok
}

// Run executes refresh cycles until the context is cancelled. The first
// cycle starts immediately.
func (r *Refresher) Run(ctx context.Context) {
	for ctx.Err() == nil {
		if len(r.symbols) == 0 {
			r.logger.Warn("Universe is empty, nothing to refresh")
			if !wait(ctx, r.emptyRetry) {
				return
			}
			continue
		}

		r.RefreshOnce(ctx)

		if !wait(ctx, r.interval) {
			return
		}
	}
}

// RefreshOnce runs a single full cycle: batch history fetch with per-symbol
// fallback, per-symbol metric fetches with stale-retention merge, then a
// wholesale persist. Errors are isolated at symbol granularity; one bad
// symbol never aborts the cycle for the rest.
func (r *Refresher) RefreshOnce(ctx context.Context) {
	r.logger.Info("Refreshing fundamentals", zap.String("source", r.fetcher.Name()), zap.Int("symbols", len(r.symbols)))

	prev := r.Snapshot()
	next := make(models.FundamentalsMap, len(r.symbols))

	histories, err := r.fetcher.FetchHistory(ctx, r.symbols)
	batchOK := err == nil
	if !batchOK {
		r.logger.Warn("Batch history fetch failed, falling back to per-symbol", zap.Error(err))
	}

	for i, sym := range r.symbols {
		if ctx.Err() != nil {
			return
		}

		rec := prev[sym]

		var bars []models.Bar
		if batchOK {
			bars = histories[sym]
		} else if perSym, herr := r.fetcher.FetchSymbolHistory(ctx, sym); herr != nil {
			r.logger.Warn("History fetch failed, keeping cached bars", zap.String("symbol", sym), zap.Error(herr))
		} else {
			bars = perSym
		}
		if len(bars) > 0 {
			rec.History = bars
		}

		metrics, merr := r.fetcher.FetchMetrics(ctx, sym)
		if merr != nil {
			r.logger.Warn("Metrics fetch failed, keeping cached constants", zap.String("symbol", sym), zap.Error(merr))
		} else {
			rec.Constants = mergeMetrics(rec.Constants, metrics)
		}

		if merr == nil || len(bars) > 0 {
			rec.FetchedAt = time.Now()
		}
		next[sym] = rec

		// Courtesy delay between per-symbol requests inside a cycle.
		if r.symbolDelay > 0 && i < len(r.symbols)-1 {
			if !wait(ctx, r.symbolDelay) {
				return
			}
		}
	}

	r.mu.Lock()
	r.cache = next
	r.mu.Unlock()

	if err := r.store.Save(next); err != nil {
		r.logger.Error("Cache persist failed", zap.Error(err))
	}
	r.logger.Info("Fundamentals updated", zap.Int("symbols", len(next)))
}

// wait sleeps for d or until the context is cancelled, reporting whether
// the full duration elapsed.
func wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
