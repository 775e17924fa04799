package refresh

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// WatchlistSource lists the symbols that need fresh prices
type WatchlistSource interface {
	WatchlistSymbols() ([]string, error)
}

// PriceRefresher keeps cached snapshots warm: every tick it re-fetches
// any watchlist symbol whose snapshot is older than the staleness
// threshold. Refreshes happen in the background and never block reads;
// stale cached values keep being served while a refresh is in flight.
type PriceRefresher struct {
	source     WatchlistSource
	refresh    func(ctx context.Context, symbol string) error
	lastUpdate func(ctx context.Context, symbol string) time.Time
	interval   time.Duration
	staleAfter time.Duration
	logger     *zap.Logger
}

// New creates a price refresher. interval is how often the watchlist is
// scanned; staleAfter is the snapshot age that triggers a re-fetch.
func New(
	source WatchlistSource,
	refresh func(ctx context.Context, symbol string) error,
	lastUpdate func(ctx context.Context, symbol string) time.Time,
	interval, staleAfter time.Duration,
	logger *zap.Logger,
) *PriceRefresher {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 2 * time.Minute
	}
	return &PriceRefresher{
		source:     source,
		refresh:    refresh,
		lastUpdate: lastUpdate,
		interval:   interval,
		staleAfter: staleAfter,
		logger:     logger,
	}
}

// Start runs the refresh loop until the context is cancelled
func (r *PriceRefresher) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("price refresher started",
		zap.Duration("interval", r.interval),
		zap.Duration("stale_after", r.staleAfter))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("price refresher shutting down")
			return nil
		case <-ticker.C:
			r.RefreshStale(ctx)
		}
	}
}

// RefreshStale re-fetches every watchlist symbol whose cached snapshot
// is older than the staleness threshold
func (r *PriceRefresher) RefreshStale(ctx context.Context) {
	symbols, err := r.source.WatchlistSymbols()
	if err != nil {
		r.logger.Error("failed to list watchlist symbols", zap.Error(err))
		return
	}

	now := time.Now()
	for _, symbol := range symbols {
		updated := r.lastUpdate(ctx, symbol)
		if !updated.IsZero() && now.Sub(updated) < r.staleAfter {
			continue
		}

		if err := r.refresh(ctx, symbol); err != nil {
			// Per-symbol failure; the rest of the watchlist still refreshes.
			r.logger.Warn("refresh failed", zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		r.logger.Debug("refreshed snapshot", zap.String("symbol", symbol))
	}
}
