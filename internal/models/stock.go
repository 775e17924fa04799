package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovingAverages holds the computed moving averages for a symbol.
// Each horizon is nil when there is not enough history to compute it.
type MovingAverages struct {
	MA50      *float64 `json:"ma_50"`
	MA100     *float64 `json:"ma_100"`
	MA150     *float64 `json:"ma_150"`
	MA200Day  *float64 `json:"ma_200_day"`
	MA200Week *float64 `json:"ma_200_week"`
}

// HighLowRange holds the 52-week range for a symbol. The group is
// all-or-nothing: a snapshot either carries a complete range or none
// at all (the pointer on PriceSnapshot is nil).
type HighLowRange struct {
	Week52High      float64  `json:"week_52_high"`
	Week52Low       float64  `json:"week_52_low"`
	CurrentPrice    float64  `json:"current_price"`
	PositionPercent *float64 `json:"position_percent"`
}

// PriceSnapshot represents the live market view of a single symbol
type PriceSnapshot struct {
	Symbol          string          `json:"symbol"`
	Name            string          `json:"name"`
	CurrentPrice    float64         `json:"current_price"`
	Change24h       *float64        `json:"change_24h"`
	Change24hPct    *float64        `json:"change_24h_percent"`
	MovingAverages  *MovingAverages `json:"moving_averages"`
	HighLowRange    *HighLowRange   `json:"high_low_range"`
	LastUpdated     time.Time       `json:"last_updated"`
}

// EnrichedEntry joins a watchlist entry with its independently fetched
// price snapshot. PriceLoading and PriceError are mutually exclusive at
// any instant; both are false once data has arrived.
type EnrichedEntry struct {
	WatchlistEntry
	Price        *PriceSnapshot `json:"price,omitempty"`
	PriceLoading bool           `json:"price_loading"`
	PriceError   bool           `json:"price_error"`
}

// PricePoint is a single close for charting
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// ChartData is the response shape for GET /api/stocks/{symbol}/chart
type ChartData struct {
	Symbol string       `json:"symbol"`
	Prices []PricePoint `json:"prices"`
}

// DailyClose represents a stored daily closing price for a symbol
type DailyClose struct {
	ID        int             `json:"id"`
	Symbol    string          `json:"symbol"`
	Date      time.Time       `json:"date"`
	Close     decimal.Decimal `json:"close"`
	CreatedAt time.Time       `json:"created_at"`
}
