package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Watchlist routes
	api.HandleFunc("/watchlist", handler.GetWatchlist).Methods("GET")
	api.HandleFunc("/watchlist", handler.AddWatchlistEntry).Methods("POST")
	api.HandleFunc("/watchlist/enriched", handler.GetEnrichedWatchlist).Methods("GET")
	api.HandleFunc("/watchlist/{symbol}", handler.UpdateWatchlistEntry).Methods("PATCH")
	api.HandleFunc("/watchlist/{symbol}", handler.RemoveWatchlistEntry).Methods("DELETE")

	// Stock data routes
	api.HandleFunc("/stocks/{symbol}", handler.GetStock).Methods("GET")
	api.HandleFunc("/stocks/{symbol}/chart", handler.GetStockChart).Methods("GET")

	// Screenshot routes
	api.HandleFunc("/screenshots/upload", handler.UploadScreenshot).Methods("POST")
	api.HandleFunc("/screenshots", handler.GetScreenshots).Methods("GET")
	api.HandleFunc("/screenshots/{id}", handler.GetScreenshot).Methods("GET")
	api.HandleFunc("/screenshots/{id}", handler.DeleteScreenshot).Methods("DELETE")
	api.HandleFunc("/screenshots/{id}/analyze", handler.AnalyzeScreenshot).Methods("POST")

	return r
}
