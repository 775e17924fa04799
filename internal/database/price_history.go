package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tgibson/stock-tracker/internal/models"
)

// CreateDailyClose inserts or updates a daily closing price
func (db *DB) CreateDailyClose(p *models.DailyClose) error {
	query := `
		INSERT INTO price_history (symbol, date, close, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol, date) DO UPDATE SET
			close = EXCLUDED.close
		RETURNING id
	`
	err := db.conn.QueryRow(query, p.Symbol, p.Date, p.Close, time.Now()).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to create daily close: %w", err)
	}
	return nil
}

// CreateDailyCloseBatch inserts multiple daily closes in one transaction
func (db *DB) CreateDailyCloseBatch(prices []*models.DailyClose) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO price_history (symbol, date, close, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol, date) DO UPDATE SET
			close = EXCLUDED.close
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, p := range prices {
		if _, err := stmt.Exec(p.Symbol, p.Date, p.Close, now); err != nil {
			return fmt.Errorf("failed to insert daily close for %s: %w", p.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DailyCloseExists checks whether a close for (symbol, date) is already stored
func (db *DB) DailyCloseExists(symbol string, date time.Time) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM price_history WHERE symbol = $1 AND date = $2)`
	var exists bool
	err := db.conn.QueryRow(query, symbol, date).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check daily close existence: %w", err)
	}
	return exists, nil
}

// GetDailyCloses retrieves the most recent daily closes for a symbol,
// ordered by date descending
func (db *DB) GetDailyCloses(symbol string, limit int) ([]*models.DailyClose, error) {
	query := `
		SELECT id, symbol, date, close, created_at
		FROM price_history
		WHERE symbol = $1
		ORDER BY date DESC
		LIMIT $2
	`
	rows, err := db.conn.Query(query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily closes: %w", err)
	}
	defer rows.Close()

	var prices []*models.DailyClose
	for rows.Next() {
		var p models.DailyClose
		if err := rows.Scan(&p.ID, &p.Symbol, &p.Date, &p.Close, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan daily close: %w", err)
		}
		prices = append(prices, &p)
	}

	return prices, nil
}

// GetDailyCloseRange retrieves daily closes within a date range, oldest first
func (db *DB) GetDailyCloseRange(symbol string, startDate, endDate time.Time) ([]*models.DailyClose, error) {
	query := `
		SELECT id, symbol, date, close, created_at
		FROM price_history
		WHERE symbol = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`
	rows, err := db.conn.Query(query, symbol, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily close range: %w", err)
	}
	defer rows.Close()

	var prices []*models.DailyClose
	for rows.Next() {
		var p models.DailyClose
		if err := rows.Scan(&p.ID, &p.Symbol, &p.Date, &p.Close, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan daily close: %w", err)
		}
		prices = append(prices, &p)
	}

	return prices, nil
}

// GetLatestDailyClose retrieves the most recent stored close for a symbol
func (db *DB) GetLatestDailyClose(symbol string) (*models.DailyClose, error) {
	query := `
		SELECT id, symbol, date, close, created_at
		FROM price_history
		WHERE symbol = $1
		ORDER BY date DESC
		LIMIT 1
	`
	var p models.DailyClose
	err := db.conn.QueryRow(query, symbol).Scan(&p.ID, &p.Symbol, &p.Date, &p.Close, &p.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("daily close for %s: %w", symbol, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest daily close: %w", err)
	}
	return &p, nil
}

// DeleteDailyClosesBySymbol removes all stored closes for a symbol
func (db *DB) DeleteDailyClosesBySymbol(symbol string) error {
	query := `DELETE FROM price_history WHERE symbol = $1`
	if _, err := db.conn.Exec(query, symbol); err != nil {
		return fmt.Errorf("failed to delete daily closes for %s: %w", symbol, err)
	}
	return nil
}

// DeleteDailyClosesOlderThan removes closes older than a given date
func (db *DB) DeleteDailyClosesOlderThan(date time.Time) (int64, error) {
	query := `DELETE FROM price_history WHERE date < $1`
	result, err := db.conn.Exec(query, date)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old daily closes: %w", err)
	}
	return result.RowsAffected()
}
