// Package usecase implements the valuation pipeline: per-symbol composite
// scoring, bounded-concurrency batch orchestration, and reconciliation with
// the persistent score store.
package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"CoinScope/internal/analytics"
	"CoinScope/internal/domain/models"
	"CoinScope/internal/domain/repository"
)

// Stablecoins scored against their peg instead of the statistical blend.
var stablecoins = map[string]bool{
	"USDC-USD":  true,
	"USDT-USD":  true,
	"DAI-USD":   true,
	"PYUSD-USD": true,
	"FDUSD-USD": true,
	"TUSD-USD":  true,
	"USDD-USD":  true,
}

const (
	pegTarget    = 1.00
	pegTolerance = 0.02

	// dampening is applied after the sentiment clamp, so the effective
	// ceiling of a non-stablecoin score is 76, not 100. STRONG BUY is only
	// reachable when blended*multiplier is nearly pinned at 100. This
	// ordering is preserved deliberately for numeric compatibility with the
	// historical scores in the store.
	dampening = 0.76
)

// Weights is the caller-supplied blend between the decay score and the
// technical score. The pair is not required to sum to 1.
type Weights struct {
	Decay float64
	Tech  float64
}

// Valuator computes a composite AssetScore for one symbol.
type Valuator struct {
	candles     repository.CandleSource
	historyDays int
	minHistory  int
	weights     Weights
	quote       string
}

// NewValuator builds the per-symbol scorer.
func NewValuator(candles repository.CandleSource, historyDays, minHistory int, weights Weights, quote string) *Valuator {
	return &Valuator{
		candles:     candles,
		historyDays: historyDays,
		minHistory:  minHistory,
		weights:     weights,
		quote:       quote,
	}
}

// NormalizeSymbol uppercases a ticker and appends the default quote currency
// when the pair separator is missing.
func (v *Valuator) NormalizeSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if !strings.Contains(symbol, "-") {
		symbol = symbol + "-" + v.quote
	}
	return symbol
}

// Score runs the full pipeline for one symbol using the shared sentiment
// mapping. All failures come back as typed errors; none of them should abort
// sibling computations.
func (v *Valuator) Score(ctx context.Context, symbol string, sentiment models.SentimentMap) (*models.AssetScore, error) {
	symbol = v.NormalizeSymbol(symbol)

	series, err := v.candles.DailySeries(ctx, symbol, v.historyDays)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrUpstreamUnavailable, symbol, err)
	}
	if series.Len() < v.minHistory {
		return nil, fmt.Errorf("%w: %s has %d of %d required observations",
			models.ErrInsufficientHistory, symbol, series.Len(), v.minHistory)
	}

	currentPrice := series.Last()

	vol := analytics.LogReturnVolatility(series.Closes)
	weightedAvg := analytics.TimeDecayAverage(series)
	decayScore, z := analytics.DeviationScore(currentPrice, weightedAvg, series.Closes)
	techScore, rsi, ok := analytics.MomentumScore(series.Closes)
	if !ok {
		// Unreachable while minHistory exceeds the RSI window, kept as a
		// guard against config lowering it.
		return nil, fmt.Errorf("%w: %s series too short for momentum window",
			models.ErrInsufficientHistory, symbol)
	}

	entry := sentiment.Lookup(symbol)
	multiplier := entry.Multiplier()

	blended := decayScore*v.weights.Decay + techScore*v.weights.Tech
	finalScore := analytics.Clamp(blended*multiplier, 0, 100) * dampening

	var signal string
	if stablecoins[symbol] {
		signal, finalScore = pegSignal(currentPrice)
	} else {
		signal = blendSignal(finalScore)
	}

	ticker, _, _ := strings.Cut(symbol, "-")
	components := models.ScoreComponents{
		FundamentalValue: fmt.Sprintf("$%.3f", weightedAvg),
		FundamentalScore: round(decayScore, 1),
		TechnicalRSI:     round(rsi, 1),
		TechnicalScore:   round(techScore, 1),
		VolatilityPct:    round(vol.Pct, 2),
		StabilityScore:   round(vol.Stability, 1),
		Sentiment:        entry.Sentiment,
		Multiplier:       multiplier,
		Analysis:         entry.Analysis,
		Links: []string{
			fmt.Sprintf("https://finance.yahoo.com/quote/%s/news/", symbol),
			fmt.Sprintf("https://news.google.com/search?q=%s+crypto+news", ticker),
		},
	}

	return &models.AssetScore{
		Symbol:       symbol,
		CurrentPrice: round(currentPrice, 3),
		FinalScore:   round(finalScore, 1),
		Signal:       signal,
		WeightedAvg:  round(weightedAvg, 3),
		ZScore:       round(z, 3),
		Margin:       round(finalScore-50, 1),
		Components:   components,
		ComputedAt:   time.Now().UTC(),
	}, nil
}

// pegSignal overrides the statistical blend for stablecoins entirely.
func pegSignal(price float64) (string, float64) {
	switch {
	case price < pegTarget-pegTolerance:
		return "SELL (DE-PEG)", 0
	case price > pegTarget+pegTolerance:
		return "BUY (PREMIUM)", 100
	default:
		return "HOLD (PEG INTACT)", 50
	}
}

// blendSignal maps a damped final score onto the discrete signal. Threshold
// order matters: the SELL band covers (25, 50] only because STRONG SELL is
// checked first.
func blendSignal(finalScore float64) string {
	switch {
	case finalScore >= 75:
		return "STRONG BUY"
	case finalScore >= 60:
		return "BUY"
	case finalScore <= 25:
		return "STRONG SELL"
	case finalScore <= 50:
		return "SELL"
	default:
		return "HOLD"
	}
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
