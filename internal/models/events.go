package models

import "time"

// Watchlist event type constants
const (
	EventWatchlistAdded   = "WATCHLIST_ADDED"
	EventWatchlistUpdated = "WATCHLIST_UPDATED"
	EventWatchlistRemoved = "WATCHLIST_REMOVED"
)

// WatchlistEvent represents a Kafka event for watchlist changes
type WatchlistEvent struct {
	EventType string          `json:"event_type"`
	Entry     *WatchlistEntry `json:"entry,omitempty"`
	Symbol    string          `json:"symbol"`
	Timestamp time.Time       `json:"timestamp"`
}

// PriceTickEvent is published by external feed collectors and consumed
// into the daily price history store
type PriceTickEvent struct {
	EventType string `json:"event_type"`
	Source    string `json:"source"`
	TickID    string `json:"tick_id"`
	Data      struct {
		Symbol string `json:"symbol"`
		Date   string `json:"date"`
		Close  string `json:"close"`
	} `json:"data"`
}
