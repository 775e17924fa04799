package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/tgibson/stock-tracker/internal/models"
)

// Producer publishes watchlist change events to Kafka
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishEntryAdded publishes a watchlist added event
func (p *Producer) PublishEntryAdded(ctx context.Context, entry *models.WatchlistEntry) error {
	event := models.WatchlistEvent{
		EventType: models.EventWatchlistAdded,
		Entry:     entry,
		Symbol:    entry.Symbol,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, entry.Symbol, event)
}

// PublishEntryUpdated publishes a watchlist updated event
func (p *Producer) PublishEntryUpdated(ctx context.Context, entry *models.WatchlistEntry) error {
	event := models.WatchlistEvent{
		EventType: models.EventWatchlistUpdated,
		Entry:     entry,
		Symbol:    entry.Symbol,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, entry.Symbol, event)
}

// PublishEntryRemoved publishes a watchlist removed event
func (p *Producer) PublishEntryRemoved(ctx context.Context, symbol string) error {
	event := models.WatchlistEvent{
		EventType: models.EventWatchlistRemoved,
		Symbol:    symbol,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, symbol, event)
}

func (p *Producer) publish(ctx context.Context, key string, event models.WatchlistEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
