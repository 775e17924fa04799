package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgibson/stock-tracker/internal/models"
)

// mockFeed serves canned snapshots, failing the symbols listed in fail
type mockFeed struct {
	mu        sync.Mutex
	fail      map[string]bool
	delay     map[string]time.Duration
	requested []string
}

func (m *mockFeed) Snapshot(ctx context.Context, symbol string) (*models.PriceSnapshot, error) {
	m.mu.Lock()
	m.requested = append(m.requested, symbol)
	fail := m.fail[symbol]
	delay := m.delay[symbol]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail {
		return nil, errors.New("upstream error")
	}
	pct := 1.0
	return &models.PriceSnapshot{
		Symbol:       symbol,
		CurrentPrice: 100,
		Change24hPct: &pct,
		LastUpdated:  time.Now(),
	}, nil
}

func watchlist(symbols ...string) []*models.WatchlistEntry {
	entries := make([]*models.WatchlistEntry, len(symbols))
	for i, s := range symbols {
		entries[i] = &models.WatchlistEntry{Symbol: s, Name: s, AssetType: models.AssetTypeStock}
	}
	return entries
}

func TestEnrich(t *testing.T) {
	t.Run("output preserves length order and symbol set", func(t *testing.T) {
		feed := &mockFeed{}
		e := NewEnricher(feed, 4)

		entries := watchlist("AAPL", "MSFT", "XOM")
		enriched := e.Enrich(context.Background(), entries)

		require.Len(t, enriched, 3)
		for i, w := range entries {
			assert.Equal(t, w.Symbol, enriched[i].Symbol)
		}
	})

	t.Run("one failure does not affect siblings", func(t *testing.T) {
		feed := &mockFeed{fail: map[string]bool{"XOM": true}}
		e := NewEnricher(feed, 4)

		tech := "Tech"
		crypto := "Cryptocurrency"
		entries := []*models.WatchlistEntry{
			{Symbol: "AAPL", Sector: &tech},
			{Symbol: "BTC-USD", Sector: &crypto},
			{Symbol: "XOM"},
		}
		enriched := e.Enrich(context.Background(), entries)

		require.Len(t, enriched, 3)
		bySymbol := map[string]models.EnrichedEntry{}
		for _, en := range enriched {
			bySymbol[en.Symbol] = en
		}

		assert.True(t, bySymbol["XOM"].PriceError)
		assert.Nil(t, bySymbol["XOM"].Price)
		assert.False(t, bySymbol["AAPL"].PriceError)
		assert.NotNil(t, bySymbol["AAPL"].Price)
		assert.False(t, bySymbol["BTC-USD"].PriceError)
	})

	t.Run("loading and error flags never both set", func(t *testing.T) {
		feed := &mockFeed{fail: map[string]bool{"BAD": true}}
		e := NewEnricher(feed, 2)

		enriched := e.Enrich(context.Background(), watchlist("GOOD", "BAD"))
		for _, en := range enriched {
			assert.False(t, en.PriceLoading && en.PriceError)
			assert.False(t, en.PriceLoading)
		}
	})

	t.Run("empty watchlist yields empty enrichment", func(t *testing.T) {
		e := NewEnricher(&mockFeed{}, 2)
		assert.Empty(t, e.Enrich(context.Background(), nil))
	})
}

func TestStream(t *testing.T) {
	t.Run("initial list is all loading, updates arrive independently", func(t *testing.T) {
		feed := &mockFeed{delay: map[string]time.Duration{"SLOW": 50 * time.Millisecond}}
		e := NewEnricher(feed, 4)

		list, updates := e.Stream(context.Background(), watchlist("FAST", "SLOW"))
		require.Len(t, list, 2)
		for _, en := range list {
			assert.True(t, en.PriceLoading)
			assert.Nil(t, en.Price)
		}

		for u := range updates {
			list = ApplyUpdate(list, u)
		}

		for _, en := range list {
			assert.False(t, en.PriceLoading)
			assert.NotNil(t, en.Price, en.Symbol)
		}
	})

	t.Run("update for removed symbol is discarded", func(t *testing.T) {
		feed := &mockFeed{}
		e := NewEnricher(feed, 2)

		list, updates := e.Stream(context.Background(), watchlist("AAPL", "DOOMED"))

		// The watchlist shrinks while fetches are in flight.
		shrunk := []models.EnrichedEntry{list[0]}

		for u := range updates {
			shrunk = ApplyUpdate(shrunk, u)
		}

		require.Len(t, shrunk, 1)
		assert.Equal(t, "AAPL", shrunk[0].Symbol)
		assert.False(t, shrunk[0].PriceLoading)
		assert.NotNil(t, shrunk[0].Price)
	})
}

func TestApplyUpdate(t *testing.T) {
	t.Run("rebuilds rather than mutating", func(t *testing.T) {
		list := []models.EnrichedEntry{
			{WatchlistEntry: models.WatchlistEntry{Symbol: "AAPL"}, PriceLoading: true},
		}
		merged := ApplyUpdate(list, Update{Symbol: "AAPL", Snapshot: &models.PriceSnapshot{Symbol: "AAPL"}})

		assert.True(t, list[0].PriceLoading)
		assert.False(t, merged[0].PriceLoading)
		assert.NotNil(t, merged[0].Price)
	})

	t.Run("error update sets only the error flag", func(t *testing.T) {
		list := []models.EnrichedEntry{
			{WatchlistEntry: models.WatchlistEntry{Symbol: "XOM"}, PriceLoading: true},
		}
		merged := ApplyUpdate(list, Update{Symbol: "XOM", Err: errors.New("timeout")})

		assert.True(t, merged[0].PriceError)
		assert.False(t, merged[0].PriceLoading)
		assert.Nil(t, merged[0].Price)
	})
}
