package di

import (
	"context"
	"fmt"
	"time"

	"CoinScope/internal/domain/repository"
	"CoinScope/internal/handler/api"
	internalrepo "CoinScope/internal/repository"
	"CoinScope/internal/scheduler"
	"CoinScope/internal/service/coinbase"
	"CoinScope/internal/service/groq"
	"CoinScope/internal/usecase"
	"CoinScope/pkg/cache"
	pkgch "CoinScope/pkg/clickhouse"
	"CoinScope/pkg/config"
	xhttp "CoinScope/pkg/http"
	"CoinScope/pkg/logger"
	"CoinScope/pkg/metrics"
	"CoinScope/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient connects to ClickHouse and initializes the score
// schema. An empty host means the score store is disabled; the client is nil
// and downstream providers fall back to the noop store.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.ClickHouse.Host == "" {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.Schema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideScoreStore creates the ClickHouse score store, or the noop store
// when persistence is not configured.
func ProvideScoreStore(chClient *pkgch.Client, l *logger.Logger) repository.ScoreStore {
	if chClient == nil {
		return internalrepo.NewNoopScoreStore()
	}
	return internalrepo.NewCHScoreStore(chClient, l)
}

// ProvideCache creates a Redis-backed cache service, or the in-process one
// when no Redis address is configured.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if cfg.Redis.Addr == "" {
		return cache.NewMemoryCache(), nil
	}
	return cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisAuth(cfg.Redis.Password, cfg.Redis.DB),
	)
}

// ProvideCandleSource creates the Coinbase candle client.
func ProvideCandleSource(cfg *config.Config, l *logger.Logger) repository.CandleSource {
	return coinbase.New(cfg.Coinbase.BaseURL, l,
		coinbase.WithWindow(cfg.Coinbase.WindowDays),
		coinbase.WithDelays(cfg.Coinbase.RateLimitSleep, cfg.Coinbase.PageDelay),
		coinbase.WithHTTPClient(xhttp.NewClient(xhttp.WithTimeout(cfg.Coinbase.Timeout))),
	)
}

// ProvideSentiment creates the Groq bulk sentiment provider.
func ProvideSentiment(cfg *config.Config, l *logger.Logger) repository.SentimentProvider {
	return groq.New(cfg.Groq.APIKey, cfg.Groq.BaseURL, cfg.Groq.Model, cfg.Groq.Timeout, l)
}

// ProvideValuator creates the per-symbol scorer.
func ProvideValuator(cfg *config.Config, candles repository.CandleSource) *usecase.Valuator {
	return usecase.NewValuator(
		candles,
		cfg.Universe.HistoryDays,
		cfg.Universe.MinHistory,
		usecase.Weights{Decay: cfg.Universe.DecayWeight, Tech: cfg.Universe.TechWeight},
		cfg.Universe.QuoteCcy,
	)
}

// ProvideBatchRunner creates the bounded-concurrency batch orchestrator.
func ProvideBatchRunner(v *usecase.Valuator, m repository.Metrics, l *logger.Logger) *usecase.BatchRunner {
	return usecase.NewBatchRunner(v, m, l)
}

// ProvideReconciler wires the read/refresh paths.
func ProvideReconciler(
	runner *usecase.BatchRunner,
	v *usecase.Valuator,
	store repository.ScoreStore,
	sentiment repository.SentimentProvider,
	cacheSvc cache.Service,
	m repository.Metrics,
	l *logger.Logger,
	cfg *config.Config,
) *usecase.Reconciler {
	return usecase.NewReconciler(
		runner, v, store, sentiment, cacheSvc, m, l,
		cfg.Universe.Symbols,
		cfg.Universe.QueryWorkers,
		cfg.Universe.CronWorkers,
		cfg.Redis.LockTTL,
	)
}

// ProvideHandler creates the HTTP handler for the scoring surface.
func ProvideHandler(rec *usecase.Reconciler, l *logger.Logger) xhttp.Handler {
	return api.NewScoresHandler(rec, l)
}

// ProvideScheduler creates the daily refresh scheduler.
func ProvideScheduler(rec *usecase.Reconciler, l *logger.Logger, cfg *config.Config) *scheduler.Scheduler {
	return scheduler.New(rec, l, cfg.Universe.CronSpec)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	handler xhttp.Handler,
	sched *scheduler.Scheduler,
	cacheSvc cache.Service,
	chClient *pkgch.Client,
	l *logger.Logger,
) *server.App {
	return server.New(cfg, handler, sched, cacheSvc, chClient, l)
}
