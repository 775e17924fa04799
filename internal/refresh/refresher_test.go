package refresh

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubSource struct {
	symbols []string
	err     error
}

func (s *stubSource) WatchlistSymbols() ([]string, error) {
	return s.symbols, s.err
}

type recorder struct {
	mu        sync.Mutex
	refreshed []string
	failFor   map[string]bool
	updated   map[string]time.Time
}

func (r *recorder) refresh(ctx context.Context, symbol string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFor[symbol] {
		return errors.New("upstream error")
	}
	r.refreshed = append(r.refreshed, symbol)
	return nil
}

func (r *recorder) lastUpdate(ctx context.Context, symbol string) time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updated[symbol]
}

func TestRefreshStale(t *testing.T) {
	t.Run("refreshes symbols with no cached snapshot", func(t *testing.T) {
		rec := &recorder{updated: map[string]time.Time{}}
		r := New(&stubSource{symbols: []string{"AAPL", "MSFT"}}, rec.refresh, rec.lastUpdate, time.Minute, time.Minute, zap.NewNop())

		r.RefreshStale(context.Background())
		assert.Equal(t, []string{"AAPL", "MSFT"}, rec.refreshed)
	})

	t.Run("skips fresh snapshots", func(t *testing.T) {
		rec := &recorder{updated: map[string]time.Time{
			"FRESH": time.Now(),
			"STALE": time.Now().Add(-10 * time.Minute),
		}}
		r := New(&stubSource{symbols: []string{"FRESH", "STALE"}}, rec.refresh, rec.lastUpdate, time.Minute, 2*time.Minute, zap.NewNop())

		r.RefreshStale(context.Background())
		assert.Equal(t, []string{"STALE"}, rec.refreshed)
	})

	t.Run("one failed refresh does not stop the rest", func(t *testing.T) {
		rec := &recorder{
			updated: map[string]time.Time{},
			failFor: map[string]bool{"BAD": true},
		}
		r := New(&stubSource{symbols: []string{"BAD", "GOOD"}}, rec.refresh, rec.lastUpdate, time.Minute, time.Minute, zap.NewNop())

		r.RefreshStale(context.Background())
		assert.Equal(t, []string{"GOOD"}, rec.refreshed)
	})

	t.Run("source failure refreshes nothing", func(t *testing.T) {
		rec := &recorder{updated: map[string]time.Time{}}
		r := New(&stubSource{err: errors.New("db down")}, rec.refresh, rec.lastUpdate, time.Minute, time.Minute, zap.NewNop())

		r.RefreshStale(context.Background())
		assert.Empty(t, rec.refreshed)
	})
}
