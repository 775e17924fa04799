package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/tgibson/stock-tracker/internal/cache"
	"github.com/tgibson/stock-tracker/internal/database"
	"github.com/tgibson/stock-tracker/internal/kafka"
	"github.com/tgibson/stock-tracker/internal/models"
	"github.com/tgibson/stock-tracker/internal/pricefeed"
	"github.com/tgibson/stock-tracker/internal/screenshots"
	"github.com/tgibson/stock-tracker/internal/tracker"
	"go.uber.org/zap"
)

const maxUploadBytes = 10 << 20 // 10MB

// Handler holds dependencies for HTTP handlers
type Handler struct {
	db        *database.DB
	feed      *pricefeed.Service
	enricher  *tracker.Enricher
	snapshots *cache.SnapshotCache
	producer  *kafka.Producer
	extractor screenshots.TextExtractor
	analyzer  *screenshots.Analyzer
	uploadDir string
	logger    *zap.Logger
}

// NewHandler creates a new Handler
func NewHandler(
	db *database.DB,
	feed *pricefeed.Service,
	enricher *tracker.Enricher,
	snapshots *cache.SnapshotCache,
	producer *kafka.Producer,
	extractor screenshots.TextExtractor,
	analyzer *screenshots.Analyzer,
	uploadDir string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		db:        db,
		feed:      feed,
		enricher:  enricher,
		snapshots: snapshots,
		producer:  producer,
		extractor: extractor,
		analyzer:  analyzer,
		uploadDir: uploadDir,
		logger:    logger,
	}
}

// GetWatchlist handles GET /api/watchlist
func (h *Handler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	entries, err := h.db.ListWatchlist()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []*models.WatchlistEntry{}
	}

	respondJSON(w, http.StatusOK, entries)
}

// GetEnrichedWatchlist handles GET /api/watchlist/enriched. Query
// parameters drive the filter pipeline: search, sectors (comma
// separated), performance, sort. With grouped=true the response is the
// sector-grouped view.
func (h *Handler) GetEnrichedWatchlist(w http.ResponseWriter, r *http.Request) {
	entries, err := h.db.ListWatchlist()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	enriched := h.enricher.Enrich(r.Context(), entries)

	q := tracker.Query{
		Search:      r.URL.Query().Get("search"),
		Performance: tracker.PerformanceFilter(r.URL.Query().Get("performance")),
		Sort:        tracker.SortOrder(r.URL.Query().Get("sort")),
	}
	if sectors := r.URL.Query().Get("sectors"); sectors != "" {
		q.Sectors = strings.Split(sectors, ",")
	}

	filtered := tracker.Apply(enriched, q)

	if r.URL.Query().Get("grouped") == "true" {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"total":  len(enriched),
			"groups": tracker.GroupBySector(filtered),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"total":   len(enriched),
		"entries": filtered,
	})
}

// AddWatchlistEntry handles POST /api/watchlist
func (h *Handler) AddWatchlistEntry(w http.ResponseWriter, r *http.Request) {
	var req models.WatchlistCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	req.AssetType = strings.ToUpper(strings.TrimSpace(req.AssetType))

	if req.Symbol == "" {
		respondError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	if req.AssetType != models.AssetTypeStock && req.AssetType != models.AssetTypeCrypto {
		respondError(w, http.StatusBadRequest, "asset_type must be STOCK or CRYPTO")
		return
	}

	exists, err := h.db.WatchlistEntryExists(req.Symbol)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if exists {
		respondError(w, http.StatusBadRequest, req.Symbol+" is already in watchlist")
		return
	}

	entry := &models.WatchlistEntry{
		Symbol:    req.Symbol,
		AssetType: req.AssetType,
		Name:      req.Name,
	}
	if entry.Name == "" {
		entry.Name = req.Symbol
	}
	if req.AssetType == models.AssetTypeCrypto || pricefeed.IsCryptoSymbol(req.Symbol) {
		sector := models.SectorCryptocurrency
		entry.Sector = &sector
	}

	// The snapshot fetch doubles as symbol validation and fills in the
	// display name when the caller did not provide one.
	if snapshot, err := h.feed.Snapshot(r.Context(), req.Symbol); err == nil {
		if req.Name == "" && snapshot.Name != "" {
			entry.Name = snapshot.Name
		}
	} else {
		h.logger.Warn("snapshot fetch on add failed", zap.String("symbol", req.Symbol), zap.Error(err))
	}

	if err := h.db.CreateWatchlistEntry(entry); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if h.producer != nil {
		if err := h.producer.PublishEntryAdded(r.Context(), entry); err != nil {
			h.logger.Warn("failed to publish watchlist event", zap.Error(err))
		}
	}

	respondJSON(w, http.StatusCreated, entry)
}

// UpdateWatchlistEntry handles PATCH /api/watchlist/{symbol}
func (h *Handler) UpdateWatchlistEntry(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	var req models.WatchlistUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name cannot be empty")
		return
	}

	entry, err := h.db.UpdateWatchlistEntry(symbol, req)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	if h.producer != nil {
		if err := h.producer.PublishEntryUpdated(r.Context(), entry); err != nil {
			h.logger.Warn("failed to publish watchlist event", zap.Error(err))
		}
	}

	respondJSON(w, http.StatusOK, entry)
}

// RemoveWatchlistEntry handles DELETE /api/watchlist/{symbol}
func (h *Handler) RemoveWatchlistEntry(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])

	if err := h.db.DeleteWatchlistEntry(symbol); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	// Drop the cached snapshot so an in-flight or future fetch for the
	// removed symbol cannot serve it back.
	if h.snapshots != nil {
		if err := h.snapshots.Invalidate(r.Context(), symbol); err != nil {
			h.logger.Warn("failed to invalidate snapshot", zap.String("symbol", symbol), zap.Error(err))
		}
	}

	if h.producer != nil {
		if err := h.producer.PublishEntryRemoved(r.Context(), symbol); err != nil {
			h.logger.Warn("failed to publish watchlist event", zap.Error(err))
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetStock handles GET /api/stocks/{symbol}
func (h *Handler) GetStock(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	snapshot, err := h.feed.Snapshot(r.Context(), symbol)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// GetStockChart handles GET /api/stocks/{symbol}/chart
func (h *Handler) GetStockChart(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])

	days := 30
	if d := r.URL.Query().Get("days"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = parsed
	}

	prices, err := h.feed.History(r.Context(), symbol, days)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, models.ChartData{Symbol: symbol, Prices: prices})
}

// UploadScreenshot handles POST /api/screenshots/upload
func (h *Handler) UploadScreenshot(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondError(w, http.StatusBadRequest, "file must be an image")
		return
	}

	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = ".png"
	}
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to prepare upload directory")
		return
	}
	imagePath := filepath.Join(h.uploadDir, uuid.NewString()+ext)

	dst, err := os.Create(imagePath)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save file")
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(imagePath)
		respondError(w, http.StatusInternalServerError, "failed to save file")
		return
	}
	dst.Close()

	extractedText, err := h.extractor.ExtractText(r.Context(), imagePath)
	if err != nil {
		h.logger.Warn("ocr extraction failed", zap.String("path", imagePath), zap.Error(err))
		extractedText = ""
	}

	screenshot := &models.Screenshot{
		ImagePath:        imagePath,
		ExtractedText:    extractedText,
		TickersMentioned: screenshots.ExtractTickers(extractedText),
		InvestmentThesis: screenshots.ExtractThesis(extractedText),
	}

	if err := h.db.CreateScreenshot(screenshot); err != nil {
		os.Remove(imagePath)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, models.UploadResponse{
		ID:               screenshot.ID,
		ExtractedText:    screenshot.ExtractedText,
		TickersMentioned: screenshot.TickersMentioned,
		InvestmentThesis: screenshot.InvestmentThesis,
		UploadTimestamp:  screenshot.UploadTimestamp,
	})
}

// AnalyzeScreenshot handles POST /api/screenshots/{id}/analyze
func (h *Handler) AnalyzeScreenshot(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid screenshot id")
		return
	}

	screenshot, err := h.db.GetScreenshot(id)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	// Analysis is paid; a second request returns the stored result.
	if screenshot.AIAnalyzed {
		respondJSON(w, http.StatusOK, models.AnalysisResponse{
			ID:             screenshot.ID,
			AIAnalysis:     screenshot.AIAnalysis,
			Recommendation: screenshot.Recommendation,
			RiskRating:     screenshot.RiskRating,
			AnalysisCost:   *screenshot.AnalysisCost,
			AnalyzedAt:     *screenshot.AnalyzedAt,
		})
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), screenshot.ExtractedText, screenshot.TickersMentioned)
	if err != nil {
		if errors.Is(err, screenshots.ErrAnalysisDisabled) {
			respondError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	analyzedAt := time.Now()
	if err := h.db.SaveAnalysis(id, result.Analysis, result.Recommendation, result.RiskRating, result.Cost, analyzedAt); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, models.AnalysisResponse{
		ID:             id,
		AIAnalysis:     result.Analysis,
		Recommendation: result.Recommendation,
		RiskRating:     result.RiskRating,
		AnalysisCost:   result.Cost,
		AnalyzedAt:     analyzedAt,
	})
}

// GetScreenshots handles GET /api/screenshots
func (h *Handler) GetScreenshots(w http.ResponseWriter, r *http.Request) {
	list, err := h.db.ListScreenshots()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []*models.Screenshot{}
	}

	respondJSON(w, http.StatusOK, list)
}

// GetScreenshot handles GET /api/screenshots/{id}
func (h *Handler) GetScreenshot(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid screenshot id")
		return
	}

	screenshot, err := h.db.GetScreenshot(id)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, screenshot)
}

// DeleteScreenshot handles DELETE /api/screenshots/{id}
func (h *Handler) DeleteScreenshot(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid screenshot id")
		return
	}

	screenshot, err := h.db.GetScreenshot(id)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	if err := h.db.DeleteScreenshot(id); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	if err := os.Remove(screenshot.ImagePath); err != nil && !os.IsNotExist(err) {
		h.logger.Warn("failed to delete image file", zap.String("path", screenshot.ImagePath), zap.Error(err))
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func statusFor(err error) int {
	if errors.Is(err, database.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}
