package usecase

import (
	"context"
	"errors"
	"sync"

	"CoinScope/internal/domain/models"
	"CoinScope/internal/domain/repository"
	xlogger "CoinScope/pkg/logger"
)

// Outcome is the tagged per-symbol result of a batch run: exactly one of
// Score or Err is set.
type Outcome struct {
	Symbol string
	Score  *models.AssetScore
	Err    error
}

// BatchRunner fans the Valuator out across the universe with bounded
// parallelism. The sentiment map is fetched once by the caller and shared
// read-only between workers.
type BatchRunner struct {
	valuator *Valuator
	metrics  repository.Metrics
	logger   *xlogger.Logger
}

// NewBatchRunner creates the orchestrator.
func NewBatchRunner(valuator *Valuator, metrics repository.Metrics, logger *xlogger.Logger) *BatchRunner {
	return &BatchRunner{valuator: valuator, metrics: metrics, logger: logger}
}

// Run scores every symbol with at most `workers` concurrent computations and
// collects all outcomes regardless of individual failures. Output order is
// not defined; callers sort.
func (r *BatchRunner) Run(ctx context.Context, symbols []string, sentiment models.SentimentMap, workers int) []Outcome {
	if workers < 1 {
		workers = 1
	}

	outcomes := make([]Outcome, len(symbols))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			score, err := r.valuator.Score(ctx, symbol, sentiment)
			if err != nil {
				kind := errorKind(err)
				r.metrics.RecordError(kind)
				r.logger.Warn("symbol scoring failed",
					xlogger.String("symbol", symbol),
					xlogger.String("kind", kind),
					xlogger.Error(err))
				outcomes[i] = Outcome{Symbol: symbol, Err: err}
				return
			}
			r.metrics.RecordScore(score.Symbol, score.FinalScore)
			outcomes[i] = Outcome{Symbol: score.Symbol, Score: score}
		}(i, symbol)
	}
	wg.Wait()

	return outcomes
}

// Partition splits outcomes into successful scores and failures.
func Partition(outcomes []Outcome) (scores []models.AssetScore, failures []Outcome) {
	for _, o := range outcomes {
		if o.Err != nil {
			failures = append(failures, o)
			continue
		}
		scores = append(scores, *o.Score)
	}
	return scores, failures
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, models.ErrInsufficientHistory):
		return "insufficient_history"
	case errors.Is(err, models.ErrUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, models.ErrMalformedSentiment):
		return "malformed_sentiment"
	default:
		return "computation"
	}
}
