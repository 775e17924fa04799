package screenshots

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"sort"
	"strings"
)

// TextExtractor extracts raw text from an image file. OCR inference
// itself is an external concern; this package only consumes its output.
type TextExtractor interface {
	ExtractText(ctx context.Context, imagePath string) (string, error)
}

// TesseractCLI runs the tesseract binary for text extraction
type TesseractCLI struct {
	Binary string
}

// NewTesseractCLI creates an extractor using the tesseract executable
func NewTesseractCLI() *TesseractCLI {
	return &TesseractCLI{Binary: "tesseract"}
}

// ExtractText runs OCR over an image and returns the recognized text
func (t *TesseractCLI) ExtractText(ctx context.Context, imagePath string) (string, error) {
	cmd := exec.CommandContext(ctx, t.Binary, imagePath, "stdout")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to run tesseract: %w", err)
	}
	return string(out), nil
}

var (
	dollarTickerPattern = regexp.MustCompile(`\$([A-Z]{1,5})\b`)
	bareTickerPattern   = regexp.MustCompile(`\b([A-Z]{2,5})\b`)
)

// excludedWords are uppercase words that look like tickers but are not
var excludedWords = map[string]bool{
	"THE": true, "AND": true, "FOR": true, "ARE": true, "BUT": true,
	"NOT": true, "YOU": true, "ALL": true, "CAN": true, "HER": true,
	"WAS": true, "ONE": true, "OUR": true, "OUT": true, "DAY": true,
	"GET": true, "HAS": true, "HIM": true, "HIS": true, "HOW": true,
	"ITS": true, "MAY": true, "NEW": true, "NOW": true, "OLD": true,
	"SEE": true, "TWO": true, "WAY": true, "WHO": true, "BOY": true,
	"DID": true, "LET": true, "PUT": true, "SAY": true, "SHE": true,
	"TOO": true, "USE": true, "USA": true, "USD": true, "EUR": true,
	"GBP": true, "JPY": true, "CEO": true, "CFO": true, "IPO": true,
	"ETF": true, "ESG": true, "GDP": true, "CPI": true, "API": true,
	"FAQ": true, "PDF": true, "URL": true, "HTTP": true, "WWW": true,
	"COM": true, "ORG": true, "NET": true, "GOV": true, "EDU": true,
	"BTC": true, "ETH": true,
}

// thesisKeywords flag lines that carry investment commentary
var thesisKeywords = []string{
	"buy", "sell", "target", "price", "growth", "revenue",
	"earnings", "profit", "bullish", "bearish", "catalyst",
	"valuation", "undervalued", "overvalued", "market cap",
	"dividend", "stock", "shares", "long", "short", "position",
	"invest", "trading", "gains", "loss", "upside", "downside",
	"rally", "dip", "breakout", "support", "resistance",
}

// ExtractTickers finds stock tickers in OCR text: $TICKER mentions and
// standalone uppercase words, minus common false positives. The result
// is deduplicated and sorted.
func ExtractTickers(text string) []string {
	seen := make(map[string]bool)

	for _, m := range dollarTickerPattern.FindAllStringSubmatch(text, -1) {
		seen[m[1]] = true
	}
	for _, m := range bareTickerPattern.FindAllStringSubmatch(text, -1) {
		seen[m[1]] = true
	}

	tickers := make([]string, 0, len(seen))
	for t := range seen {
		if !excludedWords[t] {
			tickers = append(tickers, t)
		}
	}
	sort.Strings(tickers)
	return tickers
}

// ExtractThesis pulls up to five lines of investment commentary out of
// OCR text, falling back to a prefix of the raw text when no line
// matches a keyword.
func ExtractThesis(text string) string {
	var relevant []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		for _, kw := range thesisKeywords {
			if strings.Contains(lower, kw) {
				relevant = append(relevant, line)
				break
			}
		}
		if len(relevant) >= 5 {
			break
		}
	}

	if len(relevant) > 0 {
		return strings.Join(relevant, "\n")
	}
	if len(text) > 500 {
		return text[:500]
	}
	return text
}
