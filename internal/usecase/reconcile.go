package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"CoinScope/internal/domain/models"
	"CoinScope/internal/domain/repository"
	"CoinScope/pkg/cache"
	xlogger "CoinScope/pkg/logger"
)

const (
	refreshLockKey   = "refresh:universe"
	sentimentKey     = "sentiment:bulk"
	sentimentCacheTT = time.Hour
)

// Reconciler decides whether a read is served from the score store or from a
// fresh batch computation, and owns writing fresh scores back. Store writes
// are strictly best-effort: a persistence failure never fails a response.
type Reconciler struct {
	runner    *BatchRunner
	valuator  *Valuator
	store     repository.ScoreStore
	sentiment repository.SentimentProvider
	cache     cache.Service
	metrics   repository.Metrics
	logger    *xlogger.Logger

	symbols      []string
	queryWorkers int
	cronWorkers  int
	lockTTL      time.Duration
}

// NewReconciler wires the read/refresh paths together.
func NewReconciler(
	runner *BatchRunner,
	valuator *Valuator,
	store repository.ScoreStore,
	sentiment repository.SentimentProvider,
	cacheSvc cache.Service,
	metrics repository.Metrics,
	logger *xlogger.Logger,
	symbols []string,
	queryWorkers, cronWorkers int,
	lockTTL time.Duration,
) *Reconciler {
	return &Reconciler{
		runner:       runner,
		valuator:     valuator,
		store:        store,
		sentiment:    sentiment,
		cache:        cacheSvc,
		metrics:      metrics,
		logger:       logger,
		symbols:      symbols,
		queryWorkers: queryWorkers,
		cronWorkers:  cronWorkers,
		lockTTL:      lockTTL,
	}
}

// Cryptos serves the tracked universe. Cached rows win whenever the store is
// reachable and non-empty; staleness is bounded by the daily refresh, not
// checked here. force skips the cache read entirely.
func (r *Reconciler) Cryptos(ctx context.Context, force bool) *models.BatchResult {
	if !force {
		if rows, err := r.store.ReadAll(ctx); err == nil && len(rows) > 0 {
			return &models.BatchResult{
				Cryptos: rows,
				Total:   len(rows),
				Source:  models.SourceCache,
			}
		}
	}

	// Coalesce with a concurrent scheduled refresh: whoever holds the lock
	// persists; a losing reader still computes its own response but skips
	// the duplicate upserts.
	persist := r.tryLock(ctx)
	if persist {
		defer r.unlock(ctx)
	}

	scores, failures := r.freshBatch(ctx, r.symbols, r.queryWorkers, persist)
	sortByScore(scores)
	return &models.BatchResult{
		Cryptos: scores,
		Total:   len(scores),
		Source:  models.SourceFresh,
		Errors:  len(failures),
	}
}

// RefreshAll is the daily scheduled trigger: an unconditional fresh batch for
// the whole universe. Overlapping refreshes are skipped, not queued.
func (r *Reconciler) RefreshAll(ctx context.Context) {
	if !r.tryLock(ctx) {
		r.logger.Info("universe refresh already in flight, skipping")
		return
	}
	defer r.unlock(ctx)

	r.logger.Info("starting scheduled universe refresh", xlogger.Int("symbols", len(r.symbols)))
	scores, failures := r.freshBatch(ctx, r.symbols, r.cronWorkers, true)
	r.logger.Info("scheduled universe refresh complete",
		xlogger.Int("analyzed", len(scores)),
		xlogger.Int("errors", len(failures)))
}

// Analyze computes a fresh score for one symbol, reusing a recently cached
// bulk sentiment mapping when available so ad-hoc requests do not burn an
// extra provider call.
func (r *Reconciler) Analyze(ctx context.Context, rawSymbol string) (*models.AssetScore, error) {
	symbol := r.valuator.NormalizeSymbol(rawSymbol)

	sentiment := r.cachedSentiment(ctx, symbol)
	if sentiment == nil {
		sentiment = r.sentiment.BulkSentiment(ctx, []string{symbol})
	}

	score, err := r.valuator.Score(ctx, symbol, sentiment)
	if err != nil {
		r.metrics.RecordError(errorKind(err))
		return nil, err
	}
	r.metrics.RecordScore(score.Symbol, score.FinalScore)
	r.persist(ctx, score)
	return score, nil
}

// Normalize exposes ticker normalization for presentation layers.
func (r *Reconciler) Normalize(rawSymbol string) string {
	return r.valuator.NormalizeSymbol(rawSymbol)
}

// History returns a daily close series for charting.
func (r *Reconciler) History(ctx context.Context, rawSymbol string, days int) ([]models.PricePoint, error) {
	symbol := r.valuator.NormalizeSymbol(rawSymbol)
	series, err := r.valuator.candles.DailySeries(ctx, symbol, days)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrUpstreamUnavailable, symbol, err)
	}
	if series.Len() == 0 {
		return nil, fmt.Errorf("%w: no data found for %s", models.ErrInsufficientHistory, symbol)
	}
	return series.Points(), nil
}

// freshBatch fetches the bulk sentiment once, fans out the scoring, and
// optionally persists the successes.
func (r *Reconciler) freshBatch(ctx context.Context, symbols []string, workers int, persist bool) ([]models.AssetScore, []Outcome) {
	start := time.Now()

	sentiment := r.sentiment.BulkSentiment(ctx, symbols)
	if len(sentiment) > 0 {
		if err := r.cache.Set(ctx, sentimentKey, sentiment, sentimentCacheTT); err != nil {
			r.logger.Warn("sentiment cache write failed", xlogger.Error(err))
		}
	}

	outcomes := r.runner.Run(ctx, symbols, sentiment, workers)
	scores, failures := Partition(outcomes)

	if persist {
		for i := range scores {
			r.persist(ctx, &scores[i])
		}
	}

	r.metrics.RecordBatch(models.SourceFresh, time.Since(start), len(scores), len(failures))
	return scores, failures
}

func (r *Reconciler) persist(ctx context.Context, score *models.AssetScore) {
	if !r.store.Enabled() {
		return
	}
	if err := r.store.Upsert(ctx, score); err != nil {
		r.logger.Warn("score persist failed",
			xlogger.String("symbol", score.Symbol), xlogger.Error(err))
	}
}

func (r *Reconciler) cachedSentiment(ctx context.Context, symbol string) models.SentimentMap {
	var m models.SentimentMap
	if err := r.cache.Get(ctx, sentimentKey, &m); err != nil {
		return nil
	}
	if _, ok := m[symbol]; !ok {
		return nil
	}
	return m
}

func (r *Reconciler) tryLock(ctx context.Context) bool {
	ok, err := r.cache.TryLock(ctx, refreshLockKey, r.lockTTL)
	if err != nil {
		// A broken locker should not stall scoring; fall back to running
		// unlocked and accept the duplicate-upsert risk.
		r.logger.Warn("refresh lock unavailable", xlogger.Error(err))
		return true
	}
	return ok
}

func (r *Reconciler) unlock(ctx context.Context) {
	if err := r.cache.Unlock(ctx, refreshLockKey); err != nil {
		r.logger.Warn("refresh unlock failed", xlogger.Error(err))
	}
}

func sortByScore(scores []models.AssetScore) {
	sort.Slice(scores, func(i, j int) bool {
		return scores[i].FinalScore > scores[j].FinalScore
	})
}
