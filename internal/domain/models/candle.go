package models

import "time"

// Candle is one daily OHLCV bucket from the market data source.
type Candle struct {
	Bucket time.Time `json:"bucket"`
	Low    float64   `json:"low"`
	High   float64   `json:"high"`
	Open   float64   `json:"open"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PricePoint is one (date, close) observation used for charting and scoring.
type PricePoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// PriceSeries is a daily close-price series, strictly ascending by date with
// no duplicate buckets. Build one through coinbase.FromCandles so the ordering
// invariant holds.
type PriceSeries struct {
	Dates  []time.Time
	Closes []float64
}

// Len returns the number of observations.
func (s PriceSeries) Len() int { return len(s.Closes) }

// Last returns the most recent close. Panics on an empty series; callers must
// check Len first.
func (s PriceSeries) Last() float64 { return s.Closes[len(s.Closes)-1] }

// LastDate returns the most recent observation date.
func (s PriceSeries) LastDate() time.Time { return s.Dates[len(s.Dates)-1] }

// Points converts the series into chartable (date, price) pairs.
func (s PriceSeries) Points() []PricePoint {
	out := make([]PricePoint, 0, len(s.Closes))
	for i, d := range s.Dates {
		out = append(out, PricePoint{Date: d.UTC().Format("2006-01-02"), Price: s.Closes[i]})
	}
	return out
}
