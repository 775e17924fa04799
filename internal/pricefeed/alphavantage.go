package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/tgibson/stock-tracker/internal/models"
)

// AlphaVantageClient fetches stock quotes and daily series from the
// Alpha Vantage REST API
type AlphaVantageClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewAlphaVantageClient creates a client for the Alpha Vantage API
func NewAlphaVantageClient(baseURL, apiKey string, timeout time.Duration) *AlphaVantageClient {
	return &AlphaVantageClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type globalQuoteResponse struct {
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Price         string `json:"05. price"`
		PreviousClose string `json:"08. previous close"`
		Change        string `json:"09. change"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
	Note string `json:"Note"`
}

type dailySeriesResponse struct {
	TimeSeries map[string]struct {
		Close string `json:"4. close"`
	} `json:"Time Series (Daily)"`
	Note string `json:"Note"`
}

// Quote returns the current price and 24h change for a stock symbol
func (c *AlphaVantageClient) Quote(ctx context.Context, symbol string) (*Quote, error) {
	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", symbol)
	params.Set("apikey", c.apiKey)

	var resp globalQuoteResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}
	if resp.Note != "" {
		return nil, fmt.Errorf("alphavantage rate limited: %s", resp.Note)
	}
	if resp.GlobalQuote.Price == "" {
		return nil, fmt.Errorf("no quote data for %s", symbol)
	}

	price, err := strconv.ParseFloat(resp.GlobalQuote.Price, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", resp.GlobalQuote.Price, err)
	}

	q := &Quote{Symbol: symbol, Name: symbol, CurrentPrice: price}
	if change, err := strconv.ParseFloat(resp.GlobalQuote.Change, 64); err == nil {
		q.Change24h = &change
	}
	if prev, err := strconv.ParseFloat(resp.GlobalQuote.PreviousClose, 64); err == nil && prev != 0 {
		pct := (price - prev) / prev * 100
		q.Change24hPct = &pct
	}
	return q, nil
}

// DailyCloses returns daily closing prices ordered oldest first
func (c *AlphaVantageClient) DailyCloses(ctx context.Context, symbol string) ([]models.PricePoint, error) {
	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", symbol)
	params.Set("outputsize", "full")
	params.Set("apikey", c.apiKey)

	var resp dailySeriesResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}
	if resp.Note != "" {
		return nil, fmt.Errorf("alphavantage rate limited: %s", resp.Note)
	}
	if len(resp.TimeSeries) == 0 {
		return nil, fmt.Errorf("no daily series for %s", symbol)
	}

	points := make([]models.PricePoint, 0, len(resp.TimeSeries))
	for dateStr, bar := range resp.TimeSeries {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}
		closePrice, err := strconv.ParseFloat(bar.Close, 64)
		if err != nil {
			continue
		}
		points = append(points, models.PricePoint{Date: date, Price: closePrice})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

func (c *AlphaVantageClient) get(ctx context.Context, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/query?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call alphavantage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("alphavantage returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode alphavantage response: %w", err)
	}
	return nil
}
