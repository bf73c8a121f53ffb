package repository

import (
	"context"
	"time"

	"CoinScope/internal/domain/models"
)

// CandleSource provides daily close-price history for one symbol covering up
// to `days` back from now. Implementations return an empty series (not an
// error) when the source has no data; short series are the caller's problem.
type CandleSource interface {
	DailySeries(ctx context.Context, symbol string, days int) (models.PriceSeries, error)
}

// SentimentProvider performs exactly one upstream call per invocation for the
// whole batch of symbols. A failed or disabled provider returns an empty map;
// scoring must never fail because sentiment is missing.
type SentimentProvider interface {
	BulkSentiment(ctx context.Context, symbols []string) models.SentimentMap
}

// ScoreStore persists the latest AssetScore per symbol (upsert, never append)
// and reads the whole cached universe back.
type ScoreStore interface {
	Upsert(ctx context.Context, score *models.AssetScore) error
	ReadAll(ctx context.Context) ([]models.AssetScore, error)
	Enabled() bool
}

// Metrics records operational counters for the scoring pipeline.
type Metrics interface {
	RecordScore(symbol string, score float64)
	RecordBatch(source string, duration time.Duration, ok, failed int)
	RecordError(kind string)
}
