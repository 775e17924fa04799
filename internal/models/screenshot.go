package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recommendation constants
const (
	RecommendationBuy   = "BUY"
	RecommendationHold  = "HOLD"
	RecommendationAvoid = "AVOID"
)

// Risk rating constants
const (
	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)

// Screenshot represents an uploaded social-media screenshot with its OCR
// extraction and optional paid AI analysis
type Screenshot struct {
	ID               int              `json:"id"`
	ImagePath        string           `json:"image_path"`
	UploadTimestamp  time.Time        `json:"upload_timestamp"`
	ExtractedText    string           `json:"extracted_text,omitempty"`
	TickersMentioned []string         `json:"tickers_mentioned"`
	InvestmentThesis string           `json:"investment_thesis,omitempty"`
	AIAnalyzed       bool             `json:"ai_analyzed"`
	AIAnalysis       string           `json:"ai_analysis,omitempty"`
	Recommendation   string           `json:"recommendation,omitempty"`
	RiskRating       string           `json:"risk_rating,omitempty"`
	AnalysisCost     *decimal.Decimal `json:"analysis_cost,omitempty"`
	AnalyzedAt       *time.Time       `json:"analyzed_at,omitempty"`
}

// UploadResponse is returned by POST /api/screenshots/upload
type UploadResponse struct {
	ID               int       `json:"id"`
	ExtractedText    string    `json:"extracted_text"`
	TickersMentioned []string  `json:"tickers_mentioned"`
	InvestmentThesis string    `json:"investment_thesis"`
	UploadTimestamp  time.Time `json:"upload_timestamp"`
}

// AnalysisResponse is returned by POST /api/screenshots/{id}/analyze
type AnalysisResponse struct {
	ID             int             `json:"id"`
	AIAnalysis     string          `json:"ai_analysis"`
	Recommendation string          `json:"recommendation"`
	RiskRating     string          `json:"risk_rating"`
	AnalysisCost   decimal.Decimal `json:"analysis_cost"`
	AnalyzedAt     time.Time       `json:"analyzed_at"`
}
