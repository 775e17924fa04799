package pricefeed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tgibson/stock-tracker/internal/cache"
	"github.com/tgibson/stock-tracker/internal/models"
	"go.uber.org/zap"
)

// Quote is a current-price reading from an upstream feed
type Quote struct {
	Symbol       string
	Name         string
	CurrentPrice float64
	Change24h    *float64
	Change24hPct *float64
}

// Service composes the stock and crypto feed clients into a single price
// lookup, layering the snapshot cache in front of the upstream calls.
type Service struct {
	stocks *AlphaVantageClient
	crypto *CoinGeckoClient
	cache  *cache.SnapshotCache
	logger *zap.Logger
}

// NewService creates the price feed service. The cache may be nil, in
// which case every lookup goes upstream.
func NewService(stocks *AlphaVantageClient, crypto *CoinGeckoClient, snapshots *cache.SnapshotCache, logger *zap.Logger) *Service {
	return &Service{
		stocks: stocks,
		crypto: crypto,
		cache:  snapshots,
		logger: logger,
	}
}

// Snapshot returns the full price view for a symbol: current price, 24h
// change, moving averages and 52-week range. Served from cache when a
// fresh entry exists.
func (s *Service) Snapshot(ctx context.Context, symbol string) (*models.PriceSnapshot, error) {
	symbol = strings.ToUpper(symbol)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, symbol)
		if err != nil {
			s.logger.Warn("snapshot cache read failed", zap.String("symbol", symbol), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	quote, closes, err := s.fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}

	snapshot := &models.PriceSnapshot{
		Symbol:         symbol,
		Name:           quote.Name,
		CurrentPrice:   quote.CurrentPrice,
		Change24h:      quote.Change24h,
		Change24hPct:   quote.Change24hPct,
		MovingAverages: CalculateMovingAverages(closes),
		HighLowRange:   Calculate52WeekRange(closes, quote.CurrentPrice),
		LastUpdated:    time.Now(),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, snapshot); err != nil {
			s.logger.Warn("snapshot cache write failed", zap.String("symbol", symbol), zap.Error(err))
		}
	}

	return snapshot, nil
}

// History returns daily closing prices for the past `days` days
func (s *Service) History(ctx context.Context, symbol string, days int) ([]models.PricePoint, error) {
	symbol = strings.ToUpper(symbol)

	if IsCryptoSymbol(symbol) {
		return s.crypto.DailyCloses(ctx, symbol, days)
	}

	points, err := s.stocks.DailyCloses(ctx, symbol)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	trimmed := points[:0:0]
	for _, p := range points {
		if !p.Date.Before(cutoff) {
			trimmed = append(trimmed, p)
		}
	}
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("no history for %s in the last %d days", symbol, days)
	}
	return trimmed, nil
}

// LastUpdated returns the timestamp of the cached snapshot for a symbol,
// or the zero time when nothing is cached. Used by the refresher to find
// stale symbols.
func (s *Service) LastUpdated(ctx context.Context, symbol string) time.Time {
	if s.cache == nil {
		return time.Time{}
	}
	cached, err := s.cache.Get(ctx, strings.ToUpper(symbol))
	if err != nil || cached == nil {
		return time.Time{}
	}
	return cached.LastUpdated
}

// Refresh drops the cached snapshot for a symbol and fetches a new one
func (s *Service) Refresh(ctx context.Context, symbol string) (*models.PriceSnapshot, error) {
	symbol = strings.ToUpper(symbol)
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, symbol); err != nil {
			s.logger.Warn("snapshot invalidation failed", zap.String("symbol", symbol), zap.Error(err))
		}
	}
	return s.Snapshot(ctx, symbol)
}

func (s *Service) fetch(ctx context.Context, symbol string) (*Quote, []float64, error) {
	var quote *Quote
	var points []models.PricePoint
	var err error

	if IsCryptoSymbol(symbol) {
		quote, err = s.crypto.Quote(ctx, symbol)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fetch crypto quote for %s: %w", symbol, err)
		}
		// 365 days is enough for every daily horizon except the 200-week MA,
		// which CoinGecko's free tier cannot serve anyway.
		points, err = s.crypto.DailyCloses(ctx, symbol, 365)
	} else {
		quote, err = s.stocks.Quote(ctx, symbol)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fetch stock quote for %s: %w", symbol, err)
		}
		points, err = s.stocks.DailyCloses(ctx, symbol)
	}

	if err != nil {
		// A quote without history is still a valid snapshot; the analysis
		// groups just come back nil.
		s.logger.Warn("history fetch failed", zap.String("symbol", symbol), zap.Error(err))
		return quote, nil, nil
	}

	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Price
	}
	return quote, closes, nil
}
