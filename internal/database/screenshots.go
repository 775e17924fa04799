package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/tgibson/stock-tracker/internal/models"
)

// CreateScreenshot stores a newly uploaded screenshot with its OCR results
func (db *DB) CreateScreenshot(s *models.Screenshot) error {
	query := `
		INSERT INTO screenshots (
			image_path, upload_timestamp, extracted_text, tickers_mentioned, investment_thesis
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	now := time.Now()
	err := db.conn.QueryRow(query,
		s.ImagePath, now, s.ExtractedText, pq.Array(s.TickersMentioned), s.InvestmentThesis,
	).Scan(&s.ID)

	if err != nil {
		return fmt.Errorf("failed to create screenshot: %w", err)
	}
	s.UploadTimestamp = now
	return nil
}

// GetScreenshot retrieves a screenshot by ID
func (db *DB) GetScreenshot(id int) (*models.Screenshot, error) {
	query := `
		SELECT id, image_path, upload_timestamp, extracted_text, tickers_mentioned,
		       investment_thesis, ai_analyzed, ai_analysis, recommendation, risk_rating,
		       analysis_cost, analyzed_at
		FROM screenshots
		WHERE id = $1
	`
	return db.scanScreenshot(db.conn.QueryRow(query, id))
}

// ListScreenshots retrieves all screenshots, newest first
func (db *DB) ListScreenshots() ([]*models.Screenshot, error) {
	query := `
		SELECT id, image_path, upload_timestamp, extracted_text, tickers_mentioned,
		       investment_thesis, ai_analyzed, ai_analysis, recommendation, risk_rating,
		       analysis_cost, analyzed_at
		FROM screenshots
		ORDER BY upload_timestamp DESC
	`
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list screenshots: %w", err)
	}
	defer rows.Close()

	var screenshots []*models.Screenshot
	for rows.Next() {
		s, err := db.scanScreenshotRow(rows)
		if err != nil {
			return nil, err
		}
		screenshots = append(screenshots, s)
	}

	return screenshots, nil
}

// SaveAnalysis records the result of a completed AI analysis
func (db *DB) SaveAnalysis(id int, analysis, recommendation, riskRating string, cost decimal.Decimal, analyzedAt time.Time) error {
	query := `
		UPDATE screenshots SET
			ai_analyzed = true, ai_analysis = $2, recommendation = $3,
			risk_rating = $4, analysis_cost = $5, analyzed_at = $6
		WHERE id = $1
	`
	result, err := db.conn.Exec(query, id, analysis, recommendation, riskRating, cost, analyzedAt)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("screenshot %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteScreenshot removes a screenshot record
func (db *DB) DeleteScreenshot(id int) error {
	query := `DELETE FROM screenshots WHERE id = $1`
	result, err := db.conn.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete screenshot: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("screenshot %d: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (db *DB) scanScreenshot(row rowScanner) (*models.Screenshot, error) {
	s, err := db.scanScreenshotRow(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("screenshot: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (db *DB) scanScreenshotRow(row rowScanner) (*models.Screenshot, error) {
	var s models.Screenshot
	var extractedText, aiAnalysis, recommendation, riskRating, investmentThesis sql.NullString
	var analysisCost sql.NullString
	var analyzedAt sql.NullTime
	var tickers pq.StringArray

	err := row.Scan(
		&s.ID, &s.ImagePath, &s.UploadTimestamp, &extractedText, &tickers,
		&investmentThesis, &s.AIAnalyzed, &aiAnalysis, &recommendation, &riskRating,
		&analysisCost, &analyzedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan screenshot: %w", err)
	}

	s.TickersMentioned = []string(tickers)
	if s.TickersMentioned == nil {
		s.TickersMentioned = []string{}
	}
	if extractedText.Valid {
		s.ExtractedText = extractedText.String
	}
	if investmentThesis.Valid {
		s.InvestmentThesis = investmentThesis.String
	}
	if aiAnalysis.Valid {
		s.AIAnalysis = aiAnalysis.String
	}
	if recommendation.Valid {
		s.Recommendation = recommendation.String
	}
	if riskRating.Valid {
		s.RiskRating = riskRating.String
	}
	if analysisCost.Valid {
		cost, err := decimal.NewFromString(analysisCost.String)
		if err == nil {
			s.AnalysisCost = &cost
		}
	}
	if analyzedAt.Valid {
		s.AnalyzedAt = &analyzedAt.Time
	}

	return &s, nil
}
