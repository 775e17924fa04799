package kafka

import (
	"encoding/json"
	"testing"
	"time"

	segkafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgibson/stock-tracker/internal/models"
	"go.uber.org/zap"
)

// MockPriceHistoryRepository implements PriceHistoryRepository for testing
type MockPriceHistoryRepository struct {
	closes map[string]*models.DailyClose // key: symbol+date
	nextID int

	CreateCalls int
}

func NewMockPriceHistoryRepository() *MockPriceHistoryRepository {
	return &MockPriceHistoryRepository{
		closes: make(map[string]*models.DailyClose),
		nextID: 1,
	}
}

func closeKey(symbol string, date time.Time) string {
	return symbol + ":" + date.Format("2006-01-02")
}

func (m *MockPriceHistoryRepository) CreateDailyClose(p *models.DailyClose) error {
	m.CreateCalls++
	p.ID = m.nextID
	m.nextID++
	m.closes[closeKey(p.Symbol, p.Date)] = p
	return nil
}

func (m *MockPriceHistoryRepository) DailyCloseExists(symbol string, date time.Time) (bool, error) {
	_, exists := m.closes[closeKey(symbol, date)]
	return exists, nil
}

func tickMessage(t *testing.T, eventType, symbol, date, closePrice string) segkafka.Message {
	t.Helper()

	event := models.PriceTickEvent{
		EventType: eventType,
		Source:    "test-collector",
		TickID:    "tick-1",
	}
	event.Data.Symbol = symbol
	event.Data.Date = date
	event.Data.Close = closePrice

	value, err := json.Marshal(event)
	require.NoError(t, err)
	return segkafka.Message{Key: []byte(symbol), Value: value}
}

func TestConsumerProcessMessage(t *testing.T) {
	newConsumer := func(repo PriceHistoryRepository) *Consumer {
		return &Consumer{repo: repo, logger: zap.NewNop()}
	}

	t.Run("stores a valid price tick", func(t *testing.T) {
		repo := NewMockPriceHistoryRepository()
		c := newConsumer(repo)

		err := c.processMessage(tickMessage(t, "PRICE_TICK", "AAPL", "2024-06-14", "214.29"))
		require.NoError(t, err)

		assert.Equal(t, 1, repo.CreateCalls)
		stored := repo.closes["AAPL:2024-06-14"]
		require.NotNil(t, stored)
		assert.Equal(t, "214.29", stored.Close.String())
	})

	t.Run("skips duplicate ticks", func(t *testing.T) {
		repo := NewMockPriceHistoryRepository()
		c := newConsumer(repo)

		msg := tickMessage(t, "PRICE_TICK", "AAPL", "2024-06-14", "214.29")
		require.NoError(t, c.processMessage(msg))
		require.NoError(t, c.processMessage(msg))

		assert.Equal(t, 1, repo.CreateCalls)
	})

	t.Run("ignores other event types", func(t *testing.T) {
		repo := NewMockPriceHistoryRepository()
		c := newConsumer(repo)

		err := c.processMessage(tickMessage(t, "HEARTBEAT", "AAPL", "2024-06-14", "214.29"))
		require.NoError(t, err)
		assert.Equal(t, 0, repo.CreateCalls)
	})

	t.Run("rejects invalid close price", func(t *testing.T) {
		repo := NewMockPriceHistoryRepository()
		c := newConsumer(repo)

		err := c.processMessage(tickMessage(t, "PRICE_TICK", "AAPL", "2024-06-14", "not-a-number"))
		require.Error(t, err)
		assert.Equal(t, 0, repo.CreateCalls)
	})

	t.Run("rejects missing symbol", func(t *testing.T) {
		repo := NewMockPriceHistoryRepository()
		c := newConsumer(repo)

		err := c.processMessage(tickMessage(t, "PRICE_TICK", "", "2024-06-14", "214.29"))
		require.Error(t, err)
	})

	t.Run("rejects malformed payload", func(t *testing.T) {
		repo := NewMockPriceHistoryRepository()
		c := newConsumer(repo)

		err := c.processMessage(segkafka.Message{Value: []byte("not json")})
		require.Error(t, err)
	})
}
