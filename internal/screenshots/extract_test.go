package screenshots

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTickers(t *testing.T) {
	t.Run("finds dollar-prefixed tickers", func(t *testing.T) {
		tickers := ExtractTickers("I'm loading up on $AAPL and $TSLA before earnings")
		assert.Contains(t, tickers, "AAPL")
		assert.Contains(t, tickers, "TSLA")
	})

	t.Run("finds bare uppercase tickers", func(t *testing.T) {
		tickers := ExtractTickers("NVDA is going to the moon")
		assert.Contains(t, tickers, "NVDA")
	})

	t.Run("excludes common words and acronyms", func(t *testing.T) {
		tickers := ExtractTickers("THE CEO said the IPO was priced in USD")
		assert.NotContains(t, tickers, "THE")
		assert.NotContains(t, tickers, "CEO")
		assert.NotContains(t, tickers, "IPO")
		assert.NotContains(t, tickers, "USD")
	})

	t.Run("result is deduplicated and sorted", func(t *testing.T) {
		tickers := ExtractTickers("$TSLA TSLA $AAPL")
		assert.Equal(t, []string{"AAPL", "TSLA"}, tickers)
	})

	t.Run("empty text yields no tickers", func(t *testing.T) {
		assert.Empty(t, ExtractTickers(""))
	})
}

func TestExtractThesis(t *testing.T) {
	t.Run("keeps lines with investment keywords", func(t *testing.T) {
		text := "Good morning everyone\nThis stock is undervalued at current price\nHave a nice day"
		thesis := ExtractThesis(text)
		assert.Equal(t, "This stock is undervalued at current price", thesis)
	})

	t.Run("caps at five relevant lines", func(t *testing.T) {
		text := "buy one\nbuy two\nbuy three\nbuy four\nbuy five\nbuy six"
		thesis := ExtractThesis(text)
		assert.NotContains(t, thesis, "buy six")
	})

	t.Run("falls back to raw text when nothing matches", func(t *testing.T) {
		assert.Equal(t, "hello world", ExtractThesis("hello world"))
	})
}

func TestParseVerdict(t *testing.T) {
	t.Run("explicit labels", func(t *testing.T) {
		rec, risk := parseVerdict("Recommendation: BUY\nRisk Rating: LOW")
		assert.Equal(t, "BUY", rec)
		assert.Equal(t, "LOW", risk)
	})

	t.Run("avoid wins over buy in fallback", func(t *testing.T) {
		rec, _ := parseVerdict("some would buy this but I would avoid it entirely")
		assert.Equal(t, "AVOID", rec)
	})

	t.Run("defaults to hold and medium", func(t *testing.T) {
		rec, risk := parseVerdict("nothing conclusive here")
		assert.Equal(t, "HOLD", rec)
		assert.Equal(t, "MEDIUM", risk)
	})

	t.Run("high risk fallback phrasing", func(t *testing.T) {
		_, risk := parseVerdict("this is a high risk speculative play")
		assert.Equal(t, "HIGH", risk)
	})
}
