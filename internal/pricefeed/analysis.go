package pricefeed

import "github.com/tgibson/stock-tracker/internal/models"

// Trading-day windows for the computed horizons
const (
	window50      = 50
	window100     = 100
	window150     = 150
	window200Day  = 200
	window200Week = 1000 // ~200 weeks of trading days
	window52Week  = 252  // ~52 weeks of trading days
)

// CalculateMovingAverages computes the 50/100/150/200-day and 200-week
// simple moving averages from daily closes ordered oldest first. Horizons
// without enough history are left nil. Returns nil when not even the
// shortest horizon can be computed.
func CalculateMovingAverages(closes []float64) *models.MovingAverages {
	if len(closes) < window50 {
		return nil
	}

	ma := &models.MovingAverages{
		MA50:      trailingMean(closes, window50),
		MA100:     trailingMean(closes, window100),
		MA150:     trailingMean(closes, window150),
		MA200Day:  trailingMean(closes, window200Day),
		MA200Week: trailingMean(closes, window200Week),
	}
	return ma
}

func trailingMean(closes []float64, window int) *float64 {
	if len(closes) < window {
		return nil
	}
	sum := 0.0
	for _, c := range closes[len(closes)-window:] {
		sum += c
	}
	mean := sum / float64(window)
	return &mean
}

// Calculate52WeekRange computes the 52-week high/low from daily closes
// ordered oldest first, and the current price's position within that
// range (0-100%). Returns nil when there is no history at all.
func Calculate52WeekRange(closes []float64, currentPrice float64) *models.HighLowRange {
	if len(closes) == 0 {
		return nil
	}

	recent := closes
	if len(recent) > window52Week {
		recent = recent[len(recent)-window52Week:]
	}

	high, low := recent[0], recent[0]
	for _, c := range recent[1:] {
		if c > high {
			high = c
		}
		if c < low {
			low = c
		}
	}

	r := &models.HighLowRange{
		Week52High:   high,
		Week52Low:    low,
		CurrentPrice: currentPrice,
	}
	if high != low {
		pos := (currentPrice - low) / (high - low) * 100
		r.PositionPercent = &pos
	}
	return r
}
