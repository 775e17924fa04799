package tracker

import (
	"context"
	"sync"

	"github.com/tgibson/stock-tracker/internal/models"
)

// PriceLookup is the price feed capability the enricher depends on
type PriceLookup interface {
	Snapshot(ctx context.Context, symbol string) (*models.PriceSnapshot, error)
}

// Update is a single resolved price fetch
type Update struct {
	Symbol   string
	Snapshot *models.PriceSnapshot
	Err      error
}

// Enricher joins watchlist entries with per-symbol price snapshots.
// Each symbol's lookup is issued independently; one symbol's failure or
// latency never blocks or invalidates another's result.
type Enricher struct {
	feed    PriceLookup
	workers int
}

// NewEnricher creates an enricher with a bounded fetch pool
func NewEnricher(feed PriceLookup, workers int) *Enricher {
	if workers <= 0 {
		workers = 8
	}
	return &Enricher{feed: feed, workers: workers}
}

// Enrich fetches a snapshot for every entry concurrently and returns the
// joined list. The output has the same length, symbol set and order as
// the input; a failed fetch marks only that entry's PriceError flag.
func (e *Enricher) Enrich(ctx context.Context, entries []*models.WatchlistEntry) []models.EnrichedEntry {
	enriched := make([]models.EnrichedEntry, len(entries))
	for i, w := range entries {
		enriched[i] = models.EnrichedEntry{WatchlistEntry: *w, PriceLoading: true}
	}

	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i := range enriched {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			snapshot, err := e.feed.Snapshot(ctx, enriched[i].Symbol)

			mu.Lock()
			defer mu.Unlock()
			enriched[i].PriceLoading = false
			if err != nil {
				enriched[i].PriceError = true
				return
			}
			enriched[i].Price = snapshot
		}(i)
	}

	wg.Wait()
	return enriched
}

// Stream begins an enrichment pass and returns the initial list (every
// entry loading) plus a channel of updates emitted as fetches resolve.
// There is no fan-in barrier: callers merge updates incrementally with
// ApplyUpdate. The channel closes once every fetch has resolved or the
// context is cancelled.
func (e *Enricher) Stream(ctx context.Context, entries []*models.WatchlistEntry) ([]models.EnrichedEntry, <-chan Update) {
	enriched := make([]models.EnrichedEntry, len(entries))
	for i, w := range entries {
		enriched[i] = models.EnrichedEntry{WatchlistEntry: *w, PriceLoading: true}
	}

	updates := make(chan Update)
	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup

	for _, w := range entries {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			snapshot, err := e.feed.Snapshot(ctx, symbol)
			select {
			case updates <- Update{Symbol: symbol, Snapshot: snapshot, Err: err}:
			case <-ctx.Done():
			}
		}(w.Symbol)
	}

	go func() {
		wg.Wait()
		close(updates)
	}()

	return enriched, updates
}

// ApplyUpdate merges one resolved fetch into an enriched list, returning
// a rebuilt list. An update for a symbol no longer present is discarded:
// the symbol set of the result always equals the symbol set of the input.
func ApplyUpdate(list []models.EnrichedEntry, u Update) []models.EnrichedEntry {
	merged := make([]models.EnrichedEntry, len(list))
	copy(merged, list)

	for i := range merged {
		if merged[i].Symbol != u.Symbol {
			continue
		}
		merged[i].PriceLoading = false
		if u.Err != nil {
			merged[i].PriceError = true
			merged[i].Price = nil
		} else {
			merged[i].PriceError = false
			merged[i].Price = u.Snapshot
		}
	}
	return merged
}
