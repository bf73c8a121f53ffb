package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"CoinScope/internal/domain/models"
	xlogger "CoinScope/pkg/logger"
)

// fakeCandleSource serves canned series per symbol and tracks call counts.
type fakeCandleSource struct {
	mu       sync.Mutex
	series   map[string]models.PriceSeries
	err      map[string]error
	calls    int
	inflight int
	maxSeen  int
}

func newFakeCandleSource() *fakeCandleSource {
	return &fakeCandleSource{
		series: make(map[string]models.PriceSeries),
		err:    make(map[string]error),
	}
}

func (f *fakeCandleSource) DailySeries(_ context.Context, symbol string, _ int) (models.PriceSeries, error) {
	f.mu.Lock()
	f.calls++
	f.inflight++
	if f.inflight > f.maxSeen {
		f.maxSeen = f.inflight
	}
	f.mu.Unlock()

	// Simulate the network hop so concurrency overlaps are observable.
	time.Sleep(2 * time.Millisecond)

	f.mu.Lock()
	f.inflight--
	s, err := f.series[symbol], f.err[symbol]
	f.mu.Unlock()

	if err != nil {
		return models.PriceSeries{}, err
	}
	return s, nil
}

func (f *fakeCandleSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeSentiment returns a fixed map and counts invocations.
type fakeSentiment struct {
	mu    sync.Mutex
	m     models.SentimentMap
	calls int
}

func (f *fakeSentiment) BulkSentiment(context.Context, []string) models.SentimentMap {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.m == nil {
		return models.SentimentMap{}
	}
	return f.m
}

// memStore is an in-memory ScoreStore with upsert-by-symbol semantics.
type memStore struct {
	mu   sync.Mutex
	rows map[string]models.AssetScore
	fail bool
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]models.AssetScore)}
}

func (s *memStore) Enabled() bool { return true }

func (s *memStore) Upsert(_ context.Context, score *models.AssetScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return models.ErrStoreDisabled
	}
	s.rows[score.Symbol] = *score
	return nil
}

func (s *memStore) ReadAll(context.Context) ([]models.AssetScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AssetScore, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FinalScore > out[j].FinalScore })
	return out, nil
}

// nopMetrics satisfies repository.Metrics for tests.
type nopMetrics struct{}

func (nopMetrics) RecordScore(string, float64)                  {}
func (nopMetrics) RecordBatch(string, time.Duration, int, int)  {}
func (nopMetrics) RecordError(string)                           {}

func flatSeries(n int, price float64) models.PriceSeries {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := models.PriceSeries{
		Dates:  make([]time.Time, n),
		Closes: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		s.Dates[i] = start.AddDate(0, 0, i)
		s.Closes[i] = price
	}
	return s
}

// crashSeries is a long plateau followed by a steep recent decline: deeply
// oversold and far below fair value, which pins both component scores at 100.
func crashSeries() models.PriceSeries {
	s := flatSeries(220, 1000)
	n := s.Len()
	for i := 0; i < 20; i++ {
		s.Closes[n-20+i] = 1000 - float64(i+1)*45
	}
	return s
}

func testValuator(src *fakeCandleSource) *Valuator {
	return NewValuator(src, 200, 200, Weights{Decay: 0.7, Tech: 0.3}, "USD")
}

func testRunner(v *Valuator) *BatchRunner {
	return NewBatchRunner(v, nopMetrics{}, xlogger.Nop())
}
