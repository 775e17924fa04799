package screenshots

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tgibson/stock-tracker/internal/models"
)

// ErrAnalysisDisabled is returned when no AI API key is configured
var ErrAnalysisDisabled = errors.New("ai analysis is disabled: no api key configured")

// Pricing per million tokens for the analysis model, used for cost
// accounting on each request
var (
	inputTokenPrice  = decimal.NewFromFloat(0.80)
	outputTokenPrice = decimal.NewFromFloat(4.00)
	tokensPerMillion = decimal.NewFromInt(1_000_000)
)

// AnalysisResult is a completed AI analysis of screenshot text
type AnalysisResult struct {
	Analysis       string
	Recommendation string
	RiskRating     string
	Cost           decimal.Decimal
}

// Analyzer requests paid AI analysis of extracted screenshot text from a
// messages-style completion API
type Analyzer struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewAnalyzer creates an analyzer. An empty apiKey disables analysis.
func NewAnalyzer(apiKey, baseURL, model string) *Analyzer {
	return &Analyzer{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Enabled reports whether an API key is configured
func (a *Analyzer) Enabled() bool {
	return strings.TrimSpace(a.apiKey) != ""
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int64 `json:"input_tokens"`
		OutputTokens int64 `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Analyze submits the extracted text and mentioned tickers for analysis
// and returns the structured result with its cost.
func (a *Analyzer) Analyze(ctx context.Context, extractedText string, tickers []string) (*AnalysisResult, error) {
	if !a.Enabled() {
		return nil, ErrAnalysisDisabled
	}

	tickerList := "None"
	if len(tickers) > 0 {
		tickerList = strings.Join(tickers, ", ")
	}

	prompt := fmt.Sprintf(`Analyze this investment advice from social media:

Tickers mentioned: %s
Content: %s

Provide a structured analysis with:
1. Investment thesis summary (2-3 sentences)
2. Key claims and their validity
3. Risk factors to consider
4. Recommendation (BUY/HOLD/AVOID) based on value investing principles
5. Risk rating (LOW/MEDIUM/HIGH)

Be concise (max 300 words). Focus on fundamentals, not hype.`, tickerList, extractedText)

	reqBody, err := json.Marshal(messagesRequest{
		Model:     a.model,
		MaxTokens: 500,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/messages", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call analysis api: %w", err)
	}
	defer resp.Body.Close()

	var parsed messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode analysis response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("analysis api error: %s", parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analysis api returned status %d", resp.StatusCode)
	}
	if len(parsed.Content) == 0 {
		return nil, fmt.Errorf("analysis api returned empty content")
	}

	text := parsed.Content[0].Text
	recommendation, risk := parseVerdict(text)

	return &AnalysisResult{
		Analysis:       text,
		Recommendation: recommendation,
		RiskRating:     risk,
		Cost:           tokenCost(parsed.Usage.InputTokens, parsed.Usage.OutputTokens),
	}, nil
}

func tokenCost(inputTokens, outputTokens int64) decimal.Decimal {
	in := decimal.NewFromInt(inputTokens).Mul(inputTokenPrice).Div(tokensPerMillion)
	out := decimal.NewFromInt(outputTokens).Mul(outputTokenPrice).Div(tokensPerMillion)
	return in.Add(out).Round(4)
}

// parseVerdict extracts the recommendation and risk rating from the
// analysis text, defaulting to HOLD/MEDIUM when not clearly stated.
func parseVerdict(text string) (recommendation, risk string) {
	recommendation = models.RecommendationHold
	risk = models.RiskMedium

	upper := strings.ToUpper(text)
	normalized := strings.ReplaceAll(upper, ": ", ":")

	switch {
	case strings.Contains(normalized, "RECOMMENDATION:BUY"):
		recommendation = models.RecommendationBuy
	case strings.Contains(normalized, "RECOMMENDATION:AVOID"):
		recommendation = models.RecommendationAvoid
	case strings.Contains(normalized, "RECOMMENDATION:HOLD"):
		recommendation = models.RecommendationHold
	case strings.Contains(upper, "AVOID") || strings.Contains(upper, "SELL"):
		recommendation = models.RecommendationAvoid
	case strings.Contains(upper, "BUY"):
		recommendation = models.RecommendationBuy
	}

	switch {
	case strings.Contains(normalized, "RISK RATING:HIGH"):
		risk = models.RiskHigh
	case strings.Contains(normalized, "RISK RATING:LOW"):
		risk = models.RiskLow
	case strings.Contains(normalized, "RISK RATING:MEDIUM"):
		risk = models.RiskMedium
	case strings.Contains(upper, "HIGH RISK"):
		risk = models.RiskHigh
	case strings.Contains(upper, "LOW RISK"):
		risk = models.RiskLow
	}

	return recommendation, risk
}
