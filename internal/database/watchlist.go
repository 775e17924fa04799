package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tgibson/stock-tracker/internal/models"
)

// CreateWatchlistEntry adds a symbol to the watchlist
func (db *DB) CreateWatchlistEntry(w *models.WatchlistEntry) error {
	query := `
		INSERT INTO watchlist (symbol, asset_type, name, sector, added_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	now := time.Now()
	w.Symbol = strings.ToUpper(w.Symbol)

	err := db.conn.QueryRow(query,
		w.Symbol, w.AssetType, w.Name, w.Sector, now, now,
	).Scan(&w.ID)

	if err != nil {
		return fmt.Errorf("failed to create watchlist entry: %w", err)
	}
	w.AddedAt = now
	w.UpdatedAt = now
	return nil
}

// GetWatchlistEntry retrieves a watchlist entry by symbol
func (db *DB) GetWatchlistEntry(symbol string) (*models.WatchlistEntry, error) {
	query := `
		SELECT id, symbol, asset_type, name, sector, added_at, updated_at
		FROM watchlist
		WHERE symbol = $1
	`
	var w models.WatchlistEntry
	var sector sql.NullString

	err := db.conn.QueryRow(query, strings.ToUpper(symbol)).Scan(
		&w.ID, &w.Symbol, &w.AssetType, &w.Name, &sector, &w.AddedAt, &w.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("watchlist entry %s: %w", symbol, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist entry: %w", err)
	}

	if sector.Valid {
		w.Sector = &sector.String
	}
	return &w, nil
}

// ListWatchlist retrieves all watchlist entries ordered by symbol
func (db *DB) ListWatchlist() ([]*models.WatchlistEntry, error) {
	query := `
		SELECT id, symbol, asset_type, name, sector, added_at, updated_at
		FROM watchlist
		ORDER BY symbol ASC
	`
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}
	defer rows.Close()

	var entries []*models.WatchlistEntry
	for rows.Next() {
		var w models.WatchlistEntry
		var sector sql.NullString

		if err := rows.Scan(&w.ID, &w.Symbol, &w.AssetType, &w.Name, &sector, &w.AddedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist entry: %w", err)
		}
		if sector.Valid {
			w.Sector = &sector.String
		}
		entries = append(entries, &w)
	}

	return entries, nil
}

// WatchlistSymbols returns just the symbols in the watchlist
func (db *DB) WatchlistSymbols() ([]string, error) {
	query := `SELECT symbol FROM watchlist ORDER BY symbol ASC`
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}

	return symbols, nil
}

// WatchlistEntryExists checks whether a symbol is already on the watchlist
func (db *DB) WatchlistEntryExists(symbol string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM watchlist WHERE symbol = $1)`
	var exists bool
	err := db.conn.QueryRow(query, strings.ToUpper(symbol)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check watchlist entry existence: %w", err)
	}
	return exists, nil
}

// UpdateWatchlistEntry updates the name and/or sector of an entry.
// Fields left nil in the update are not touched.
func (db *DB) UpdateWatchlistEntry(symbol string, update models.WatchlistUpdate) (*models.WatchlistEntry, error) {
	query := `
		UPDATE watchlist SET
			name = COALESCE($2, name),
			sector = COALESCE($3, sector),
			updated_at = $4
		WHERE symbol = $1
	`
	result, err := db.conn.Exec(query, strings.ToUpper(symbol), update.Name, update.Sector, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to update watchlist entry: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return nil, fmt.Errorf("watchlist entry %s: %w", symbol, ErrNotFound)
	}

	return db.GetWatchlistEntry(symbol)
}

// DeleteWatchlistEntry removes a symbol from the watchlist
func (db *DB) DeleteWatchlistEntry(symbol string) error {
	query := `DELETE FROM watchlist WHERE symbol = $1`
	result, err := db.conn.Exec(query, strings.ToUpper(symbol))
	if err != nil {
		return fmt.Errorf("failed to delete watchlist entry: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("watchlist entry %s: %w", symbol, ErrNotFound)
	}
	return nil
}
