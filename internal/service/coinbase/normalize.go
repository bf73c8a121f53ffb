package coinbase

import (
	"sort"
	"time"

	"CoinScope/internal/domain/models"
)

// FromCandles collapses raw candles into an ascending daily close series.
// Candles landing in the same UTC day bucket are collapsed, last write wins.
func FromCandles(candles []models.Candle) models.PriceSeries {
	if len(candles) == 0 {
		return models.PriceSeries{}
	}

	byDay := make(map[time.Time]float64, len(candles))
	for _, c := range candles {
		day := c.Bucket.UTC().Truncate(24 * time.Hour)
		byDay[day] = c.Close
	}

	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	series := models.PriceSeries{
		Dates:  days,
		Closes: make([]float64, len(days)),
	}
	for i, d := range days {
		series.Closes[i] = byDay[d]
	}
	return series
}
