package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"CoinScope/internal/domain/models"
	"CoinScope/pkg/cache"
	xlogger "CoinScope/pkg/logger"
)

func testReconciler(src *fakeCandleSource, store *memStore, sentiment *fakeSentiment, symbols []string) *Reconciler {
	v := testValuator(src)
	return NewReconciler(
		testRunner(v), v, store, sentiment, cache.NewMemoryCache(),
		nopMetrics{}, xlogger.Nop(), symbols, 8, 5, time.Minute,
	)
}

func TestCryptosServesCacheWithoutRecompute(t *testing.T) {
	src := newFakeCandleSource()
	store := newMemStore()
	store.rows["BTC-USD"] = models.AssetScore{Symbol: "BTC-USD", FinalScore: 38, Signal: "SELL"}

	r := testReconciler(src, store, &fakeSentiment{}, []string{"BTC-USD"})
	res := r.Cryptos(context.Background(), false)

	if res.Source != models.SourceCache {
		t.Fatalf("expected cache source, got %q", res.Source)
	}
	if res.Total != 1 {
		t.Fatalf("expected 1 row, got %d", res.Total)
	}
	if src.callCount() != 0 {
		t.Fatal("cache hit must not trigger candle fetches")
	}
}

func TestCryptosEmptyStoreComputesAndPersists(t *testing.T) {
	src := newFakeCandleSource()
	src.series["BTC-USD"] = flatSeries(220, 100)
	src.series["ETH-USD"] = flatSeries(220, 200)
	store := newMemStore()
	sentiment := &fakeSentiment{}

	r := testReconciler(src, store, sentiment, []string{"BTC-USD", "ETH-USD"})
	res := r.Cryptos(context.Background(), false)

	if res.Source != models.SourceFresh {
		t.Fatalf("expected fresh source, got %q", res.Source)
	}
	if res.Total != 2 {
		t.Fatalf("expected 2 scores, got %d", res.Total)
	}
	if sentiment.calls != 1 {
		t.Fatalf("expected one bulk sentiment call, got %d", sentiment.calls)
	}

	// Round-trip: the fresh run persisted, so the next read is a cache hit
	// with matching rows.
	res2 := r.Cryptos(context.Background(), false)
	if res2.Source != models.SourceCache {
		t.Fatalf("expected cache source on second read, got %q", res2.Source)
	}
	bys := map[string]models.AssetScore{}
	for _, s := range res2.Cryptos {
		bys[s.Symbol] = s
	}
	orig := map[string]models.AssetScore{}
	for _, s := range res.Cryptos {
		orig[s.Symbol] = s
	}
	for sym, want := range orig {
		got, ok := bys[sym]
		if !ok {
			t.Fatalf("persisted score for %s missing on read back", sym)
		}
		if got.FinalScore != want.FinalScore || got.Signal != want.Signal {
			t.Fatalf("round-trip mismatch for %s: %+v vs %+v", sym, got, want)
		}
	}
}

func TestCryptosPartialFailureReportsCounts(t *testing.T) {
	src := newFakeCandleSource()
	src.series["BTC-USD"] = flatSeries(220, 100)
	src.err["ETH-USD"] = errors.New("boom")
	src.series["XRP-USD"] = flatSeries(10, 1)

	r := testReconciler(src, newMemStore(), &fakeSentiment{}, []string{"BTC-USD", "ETH-USD", "XRP-USD"})
	res := r.Cryptos(context.Background(), false)

	if res.Total != 1 {
		t.Fatalf("expected 1 success, got %d", res.Total)
	}
	if res.Errors != 2 {
		t.Fatalf("expected 2 errors, got %d", res.Errors)
	}
}

func TestCryptosSortsByScoreDescending(t *testing.T) {
	src := newFakeCandleSource()
	src.series["AAA-USD"] = flatSeries(220, 100) // final 38
	src.series["BBB-USD"] = crashSeries()        // final 76

	r := testReconciler(src, newMemStore(), &fakeSentiment{}, []string{"AAA-USD", "BBB-USD"})
	res := r.Cryptos(context.Background(), false)

	if res.Total != 2 {
		t.Fatalf("expected 2 scores, got %d", res.Total)
	}
	if res.Cryptos[0].FinalScore < res.Cryptos[1].FinalScore {
		t.Fatalf("scores not sorted descending: %v then %v",
			res.Cryptos[0].FinalScore, res.Cryptos[1].FinalScore)
	}
	if res.Cryptos[0].Symbol != "BBB-USD" {
		t.Fatalf("expected BBB-USD first, got %s", res.Cryptos[0].Symbol)
	}
}

func TestCryptosForceRefreshSkipsCache(t *testing.T) {
	src := newFakeCandleSource()
	src.series["BTC-USD"] = flatSeries(220, 100)
	store := newMemStore()
	store.rows["BTC-USD"] = models.AssetScore{Symbol: "BTC-USD", FinalScore: 99}

	r := testReconciler(src, store, &fakeSentiment{}, []string{"BTC-USD"})
	res := r.Cryptos(context.Background(), true)

	if res.Source != models.SourceFresh {
		t.Fatalf("force refresh must compute fresh, got %q", res.Source)
	}
	if src.callCount() == 0 {
		t.Fatal("force refresh must hit the candle source")
	}
}

func TestStoreFailureDoesNotFailResponse(t *testing.T) {
	src := newFakeCandleSource()
	src.series["BTC-USD"] = flatSeries(220, 100)
	store := newMemStore()
	store.fail = true

	r := testReconciler(src, store, &fakeSentiment{}, []string{"BTC-USD"})
	res := r.Cryptos(context.Background(), false)

	if res.Total != 1 {
		t.Fatalf("persist failures must not drop scores, got %d", res.Total)
	}
}

func TestAnalyzeNormalizesBareTicker(t *testing.T) {
	src := newFakeCandleSource()
	src.series["BTC-USD"] = flatSeries(220, 100)

	r := testReconciler(src, newMemStore(), &fakeSentiment{}, []string{"BTC-USD"})
	score, err := r.Analyze(context.Background(), "btc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score.Symbol != "BTC-USD" {
		t.Fatalf("expected normalized symbol, got %s", score.Symbol)
	}
}

func TestAnalyzeReusesCachedBulkSentiment(t *testing.T) {
	src := newFakeCandleSource()
	src.series["BTC-USD"] = flatSeries(220, 100)
	src.series["ETH-USD"] = flatSeries(220, 200)
	sentiment := &fakeSentiment{m: models.SentimentMap{
		"BTC-USD": {Sentiment: models.SentimentGood, Analysis: "x"},
		"ETH-USD": {Sentiment: models.SentimentOK, Analysis: "y"},
	}}

	r := testReconciler(src, newMemStore(), sentiment, []string{"BTC-USD", "ETH-USD"})
	r.Cryptos(context.Background(), false) // populates the sentiment cache

	score, err := r.Analyze(context.Background(), "BTC-USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sentiment.calls != 1 {
		t.Fatalf("analyze should reuse the cached bulk call, got %d calls", sentiment.calls)
	}
	if score.Components.Sentiment != models.SentimentGood {
		t.Fatalf("expected cached good sentiment, got %q", score.Components.Sentiment)
	}
}

func TestRefreshAllCoalescesOverlappingRuns(t *testing.T) {
	src := newFakeCandleSource()
	src.series["BTC-USD"] = flatSeries(220, 100)
	store := newMemStore()

	v := testValuator(src)
	mem := cache.NewMemoryCache()
	r := NewReconciler(testRunner(v), v, store, &fakeSentiment{}, mem,
		nopMetrics{}, xlogger.Nop(), []string{"BTC-USD"}, 8, 5, time.Minute)

	// Hold the refresh lock as if another run were in flight.
	if ok, _ := mem.TryLock(context.Background(), "refresh:universe", time.Minute); !ok {
		t.Fatal("test setup: could not take lock")
	}
	r.RefreshAll(context.Background())

	if src.callCount() != 0 {
		t.Fatal("overlapping refresh should have been skipped")
	}

	_ = mem.Unlock(context.Background(), "refresh:universe")
	r.RefreshAll(context.Background())
	if src.callCount() == 0 {
		t.Fatal("refresh after unlock should have run")
	}
	if len(store.rows) != 1 {
		t.Fatalf("refresh should persist scores, got %d rows", len(store.rows))
	}
}

func TestHistoryEmptySeriesErrors(t *testing.T) {
	src := newFakeCandleSource()
	r := testReconciler(src, newMemStore(), &fakeSentiment{}, []string{"BTC-USD"})

	_, err := r.History(context.Background(), "BTC", 365)
	if !errors.Is(err, models.ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestHistoryReturnsPoints(t *testing.T) {
	src := newFakeCandleSource()
	src.series["BTC-USD"] = flatSeries(10, 42)
	r := testReconciler(src, newMemStore(), &fakeSentiment{}, []string{"BTC-USD"})

	points, err := r.History(context.Background(), "btc", 365)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 10 {
		t.Fatalf("expected 10 points, got %d", len(points))
	}
	if points[0].Date != "2025-01-01" || points[0].Price != 42 {
		t.Fatalf("unexpected first point: %+v", points[0])
	}
}
