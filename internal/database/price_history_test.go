package database

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgibson/stock-tracker/internal/models"
)

func TestPriceHistoryRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	day := func(offset int) time.Time {
		return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
	}

	createClose := func(t *testing.T, symbol string, date time.Time, close string) *models.DailyClose {
		t.Helper()
		price, err := decimal.NewFromString(close)
		require.NoError(t, err)

		p := &models.DailyClose{Symbol: symbol, Date: date, Close: price}
		require.NoError(t, testDB.CreateDailyClose(p))
		return p
	}

	t.Run("CreateDailyClose stores close and sets ID", func(t *testing.T) {
		testDB.TruncateAll(t)

		p := createClose(t, "AAPL", day(0), "214.29")
		assert.NotZero(t, p.ID)

		latest, err := testDB.GetLatestDailyClose("AAPL")
		require.NoError(t, err)
		assert.Equal(t, "214.29", latest.Close.String())
	})

	t.Run("CreateDailyClose upserts on (symbol, date) conflict", func(t *testing.T) {
		testDB.TruncateAll(t)

		createClose(t, "AAPL", day(0), "214.29")
		createClose(t, "AAPL", day(0), "215.00")

		closes, err := testDB.GetDailyCloses("AAPL", 10)
		require.NoError(t, err)
		require.Len(t, closes, 1)
		assert.Equal(t, "215", closes[0].Close.String())
	})

	t.Run("CreateDailyCloseBatch stores all closes", func(t *testing.T) {
		testDB.TruncateAll(t)

		batch := []*models.DailyClose{
			{Symbol: "MSFT", Date: day(0), Close: decimal.NewFromFloat(420.50)},
			{Symbol: "MSFT", Date: day(1), Close: decimal.NewFromFloat(422.10)},
			{Symbol: "MSFT", Date: day(2), Close: decimal.NewFromFloat(419.80)},
		}
		require.NoError(t, testDB.CreateDailyCloseBatch(batch))

		closes, err := testDB.GetDailyCloses("MSFT", 10)
		require.NoError(t, err)
		assert.Len(t, closes, 3)
	})

	t.Run("DailyCloseExists detects stored closes", func(t *testing.T) {
		testDB.TruncateAll(t)
		createClose(t, "AAPL", day(0), "214.29")

		exists, err := testDB.DailyCloseExists("AAPL", day(0))
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = testDB.DailyCloseExists("AAPL", day(1))
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("GetDailyCloses orders newest first and respects limit", func(t *testing.T) {
		testDB.TruncateAll(t)
		for i := 0; i < 5; i++ {
			createClose(t, "AAPL", day(i), "100")
		}

		closes, err := testDB.GetDailyCloses("AAPL", 3)
		require.NoError(t, err)
		require.Len(t, closes, 3)
		assert.True(t, closes[0].Date.After(closes[1].Date))
		assert.True(t, closes[1].Date.After(closes[2].Date))
	})

	t.Run("GetDailyCloseRange returns oldest first within bounds", func(t *testing.T) {
		testDB.TruncateAll(t)
		for i := 0; i < 5; i++ {
			createClose(t, "AAPL", day(i), "100")
		}

		closes, err := testDB.GetDailyCloseRange("AAPL", day(1), day(3))
		require.NoError(t, err)
		require.Len(t, closes, 3)
		assert.True(t, closes[0].Date.Before(closes[1].Date))
		assert.True(t, closes[1].Date.Before(closes[2].Date))
	})

	t.Run("GetLatestDailyClose returns ErrNotFound for unknown symbol", func(t *testing.T) {
		testDB.TruncateAll(t)

		_, err := testDB.GetLatestDailyClose("UNKNOWN")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("DeleteDailyClosesBySymbol removes only that symbol", func(t *testing.T) {
		testDB.TruncateAll(t)
		createClose(t, "AAPL", day(0), "214.29")
		createClose(t, "MSFT", day(0), "420.50")

		require.NoError(t, testDB.DeleteDailyClosesBySymbol("AAPL"))

		exists, err := testDB.DailyCloseExists("AAPL", day(0))
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = testDB.DailyCloseExists("MSFT", day(0))
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("DeleteDailyClosesOlderThan reports deleted rows", func(t *testing.T) {
		testDB.TruncateAll(t)
		for i := 0; i < 5; i++ {
			createClose(t, "AAPL", day(i), "100")
		}

		deleted, err := testDB.DeleteDailyClosesOlderThan(day(3))
		require.NoError(t, err)
		assert.Equal(t, int64(3), deleted)

		remaining, err := testDB.GetDailyCloses("AAPL", 10)
		require.NoError(t, err)
		assert.Len(t, remaining, 2)
	})
}
