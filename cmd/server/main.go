package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/tgibson/stock-tracker/internal/api"
	"github.com/tgibson/stock-tracker/internal/cache"
	"github.com/tgibson/stock-tracker/internal/config"
	"github.com/tgibson/stock-tracker/internal/database"
	"github.com/tgibson/stock-tracker/internal/kafka"
	"github.com/tgibson/stock-tracker/internal/pricefeed"
	"github.com/tgibson/stock-tracker/internal/refresh"
	"github.com/tgibson/stock-tracker/internal/screenshots"
	"github.com/tgibson/stock-tracker/internal/tracker"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg := config.Load()

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := runMigrations(cfg.Database.ConnectionString()); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	snapshots, err := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer snapshots.Close()

	stocks := pricefeed.NewAlphaVantageClient(cfg.PriceFeed.AlphaVantageURL, cfg.PriceFeed.AlphaVantageKey, cfg.PriceFeed.Timeout)
	crypto := pricefeed.NewCoinGeckoClient(cfg.PriceFeed.CoinGeckoURL, cfg.PriceFeed.Timeout)
	feed := pricefeed.NewService(stocks, crypto, snapshots, logger)

	enricher := tracker.NewEnricher(feed, 8)

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.WatchlistTopic)
	defer producer.Close()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.PriceTicksTopic, cfg.Kafka.GroupID, db, logger)
	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Error("price tick consumer stopped", zap.Error(err))
		}
	}()

	refresher := refresh.New(
		db,
		func(ctx context.Context, symbol string) error {
			_, err := feed.Refresh(ctx, symbol)
			return err
		},
		feed.LastUpdated,
		cfg.Refresh.Interval,
		cfg.Refresh.StaleAfter,
		logger,
	)
	go refresher.Start(ctx)

	analyzer := screenshots.NewAnalyzer(cfg.Screenshot.AIAPIKey, cfg.Screenshot.AIBaseURL, cfg.Screenshot.AIModel)
	extractor := screenshots.NewTesseractCLI()

	handler := api.NewHandler(db, feed, enricher, snapshots, producer, extractor, analyzer, cfg.Screenshot.UploadDir, logger)
	router := api.SetupRoutes(handler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func runMigrations(connStr string) error {
	m, err := migrate.New("file://db/migrations", connStr)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
