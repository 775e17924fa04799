package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/tgibson/stock-tracker/internal/models"
	"go.uber.org/zap"
)

// PriceHistoryRepository defines the storage operations the consumer needs
type PriceHistoryRepository interface {
	CreateDailyClose(p *models.DailyClose) error
	DailyCloseExists(symbol string, date time.Time) (bool, error)
}

// Consumer ingests daily price ticks published by external feed
// collectors into the price history store
type Consumer struct {
	reader *kafka.Reader
	repo   PriceHistoryRepository
	logger *zap.Logger
}

// NewConsumer creates a new Kafka consumer for price tick events
func NewConsumer(brokers []string, topic, groupID string, repo PriceHistoryRepository, logger *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader: reader,
		repo:   repo,
		logger: logger,
	}
}

// Start begins consuming messages from Kafka
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("starting price tick consumer", zap.String("topic", c.reader.Config().Topic))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("price tick consumer shutting down")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				c.logger.Error("failed to read message", zap.Error(err))
				continue
			}

			if err := c.processMessage(msg); err != nil {
				c.logger.Error("failed to process message", zap.Error(err))
			}
		}
	}
}

func (c *Consumer) processMessage(msg kafka.Message) error {
	var event models.PriceTickEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal price tick event: %w", err)
	}

	if event.EventType != "PRICE_TICK" {
		c.logger.Debug("ignoring event type", zap.String("event_type", event.EventType))
		return nil
	}

	dailyClose, err := c.convertEvent(event)
	if err != nil {
		return fmt.Errorf("failed to convert price tick: %w", err)
	}

	// Idempotency: a tick for an already stored (symbol, date) is a
	// replay and gets skipped.
	exists, err := c.repo.DailyCloseExists(dailyClose.Symbol, dailyClose.Date)
	if err != nil {
		return fmt.Errorf("failed to check for duplicate tick: %w", err)
	}
	if exists {
		c.logger.Debug("duplicate tick, skipping",
			zap.String("symbol", dailyClose.Symbol),
			zap.Time("date", dailyClose.Date))
		return nil
	}

	if err := c.repo.CreateDailyClose(dailyClose); err != nil {
		return fmt.Errorf("failed to save daily close: %w", err)
	}

	c.logger.Info("stored daily close",
		zap.String("symbol", dailyClose.Symbol),
		zap.Time("date", dailyClose.Date),
		zap.String("close", dailyClose.Close.String()))

	return nil
}

func (c *Consumer) convertEvent(event models.PriceTickEvent) (*models.DailyClose, error) {
	if event.Data.Symbol == "" {
		return nil, fmt.Errorf("price tick missing symbol")
	}

	closePrice, err := decimal.NewFromString(event.Data.Close)
	if err != nil {
		return nil, fmt.Errorf("invalid close %q: %w", event.Data.Close, err)
	}

	date, err := time.Parse("2006-01-02", event.Data.Date)
	if err != nil {
		date, err = time.Parse(time.RFC3339, event.Data.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", event.Data.Date, err)
		}
		date = date.Truncate(24 * time.Hour)
	}

	return &models.DailyClose{
		Symbol: event.Data.Symbol,
		Date:   date,
		Close:  closePrice,
	}, nil
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}
