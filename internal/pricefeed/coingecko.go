package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tgibson/stock-tracker/internal/models"
)

// coinGeckoIDs maps crypto pair symbols (BTC-USD) to CoinGecko coin IDs
var coinGeckoIDs = map[string]string{
	"BTC-USD":   "bitcoin",
	"ETH-USD":   "ethereum",
	"SOL-USD":   "solana",
	"DOGE-USD":  "dogecoin",
	"ADA-USD":   "cardano",
	"XRP-USD":   "ripple",
	"DOT-USD":   "polkadot",
	"MATIC-USD": "matic-network",
	"AVAX-USD":  "avalanche-2",
	"LINK-USD":  "chainlink",
}

// IsCryptoSymbol reports whether a symbol is a supported crypto pair
func IsCryptoSymbol(symbol string) bool {
	_, ok := coinGeckoIDs[strings.ToUpper(symbol)]
	return ok
}

// CoinGeckoClient fetches cryptocurrency data from the CoinGecko REST API
type CoinGeckoClient struct {
	baseURL string
	client  *http.Client
}

// NewCoinGeckoClient creates a client for the CoinGecko API
func NewCoinGeckoClient(baseURL string, timeout time.Duration) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type coinResponse struct {
	Name       string `json:"name"`
	MarketData struct {
		CurrentPrice struct {
			USD *float64 `json:"usd"`
		} `json:"current_price"`
		PriceChange24h    *float64 `json:"price_change_24h"`
		PriceChangePct24h *float64 `json:"price_change_percentage_24h"`
	} `json:"market_data"`
}

type marketChartResponse struct {
	Prices [][2]float64 `json:"prices"`
}

// Quote returns the current price and 24h change for a crypto pair
func (c *CoinGeckoClient) Quote(ctx context.Context, symbol string) (*Quote, error) {
	coinID, ok := coinGeckoIDs[strings.ToUpper(symbol)]
	if !ok {
		return nil, fmt.Errorf("unknown crypto symbol: %s", symbol)
	}

	params := url.Values{}
	params.Set("localization", "false")
	params.Set("tickers", "false")
	params.Set("market_data", "true")
	params.Set("community_data", "false")
	params.Set("developer_data", "false")
	params.Set("sparkline", "false")

	var resp coinResponse
	if err := c.get(ctx, "/coins/"+coinID+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.MarketData.CurrentPrice.USD == nil {
		return nil, fmt.Errorf("no price data for %s", symbol)
	}

	return &Quote{
		Symbol:       strings.ToUpper(symbol),
		Name:         resp.Name,
		CurrentPrice: *resp.MarketData.CurrentPrice.USD,
		Change24h:    resp.MarketData.PriceChange24h,
		Change24hPct: resp.MarketData.PriceChangePct24h,
	}, nil
}

// DailyCloses returns daily closing prices for the past `days` days,
// ordered oldest first
func (c *CoinGeckoClient) DailyCloses(ctx context.Context, symbol string, days int) ([]models.PricePoint, error) {
	coinID, ok := coinGeckoIDs[strings.ToUpper(symbol)]
	if !ok {
		return nil, fmt.Errorf("unknown crypto symbol: %s", symbol)
	}

	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("days", strconv.Itoa(days))
	params.Set("interval", "daily")

	var resp marketChartResponse
	if err := c.get(ctx, "/coins/"+coinID+"/market_chart?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	points := make([]models.PricePoint, 0, len(resp.Prices))
	for _, p := range resp.Prices {
		points = append(points, models.PricePoint{
			Date:  time.UnixMilli(int64(p[0])).UTC(),
			Price: p[1],
		})
	}
	return points, nil
}

func (c *CoinGeckoClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call coingecko: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("coingecko returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode coingecko response: %w", err)
	}
	return nil
}
