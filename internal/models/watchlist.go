package models

import "time"

// Asset type constants
const (
	AssetTypeStock  = "STOCK"
	AssetTypeCrypto = "CRYPTO"
)

// Sector labels with special meaning in grouping
const (
	SectorUnknown        = "Unknown"
	SectorCryptocurrency = "Cryptocurrency"
)

// WatchlistEntry represents a user-curated symbol to monitor
type WatchlistEntry struct {
	ID        int       `json:"id"`
	Symbol    string    `json:"symbol"`
	AssetType string    `json:"asset_type"`
	Name      string    `json:"name"`
	Sector    *string   `json:"sector"`
	AddedAt   time.Time `json:"added_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveSector returns the entry's sector, or "Unknown" when absent.
func (w *WatchlistEntry) EffectiveSector() string {
	if w.Sector == nil || *w.Sector == "" {
		return SectorUnknown
	}
	return *w.Sector
}

// WatchlistCreate is the request payload for adding an entry
type WatchlistCreate struct {
	Symbol    string `json:"symbol"`
	AssetType string `json:"asset_type"`
	Name      string `json:"name,omitempty"`
}

// WatchlistUpdate is the request payload for editing an entry
type WatchlistUpdate struct {
	Name   *string `json:"name,omitempty"`
	Sector *string `json:"sector,omitempty"`
}
