package analytics

import (
	"math"
	"testing"
	"time"

	"CoinScope/internal/domain/models"
)

func seriesOf(closes []float64) models.PriceSeries {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, len(closes))
	for i := range closes {
		dates[i] = start.AddDate(0, 0, i)
	}
	return models.PriceSeries{Dates: dates, Closes: closes}
}

func flat(n int, price float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = price
	}
	return out
}

func TestLogReturnVolatilityFlatSeries(t *testing.T) {
	v := LogReturnVolatility(flat(200, 42.5))
	if v.Annualized != 0 {
		t.Fatalf("flat series should have zero volatility, got %v", v.Annualized)
	}
	if v.Stability != 100 {
		t.Fatalf("flat series stability should be 100, got %v", v.Stability)
	}
}

func TestLogReturnVolatilityBounds(t *testing.T) {
	closes := []float64{100, 110, 95, 120, 90, 130, 85, 140}
	v := LogReturnVolatility(closes)
	if v.Annualized <= 0 {
		t.Fatalf("volatile series should have positive volatility, got %v", v.Annualized)
	}
	if v.Stability <= 0 || v.Stability > 100 {
		t.Fatalf("stability out of (0,100]: %v", v.Stability)
	}
	if math.Abs(v.Pct-v.Annualized*100) > 1e-9 {
		t.Fatalf("pct mismatch: %v vs %v", v.Pct, v.Annualized*100)
	}
}

func TestTimeDecayAverageConstant(t *testing.T) {
	s := seriesOf(flat(250, 7.25))
	got := TimeDecayAverage(s)
	if math.Abs(got-7.25) > 1e-9 {
		t.Fatalf("constant series weighted avg should equal the price, got %v", got)
	}
}

func TestTimeDecayAverageFavorsRecent(t *testing.T) {
	// Old half at 100, recent half at 200: the decayed mean must sit above
	// the plain mean of 150.
	closes := append(flat(100, 100), flat(100, 200)...)
	got := TimeDecayAverage(seriesOf(closes))
	if got <= 150 {
		t.Fatalf("expected weighted avg above 150, got %v", got)
	}
	if got >= 200 {
		t.Fatalf("expected weighted avg below 200, got %v", got)
	}
}

func TestDeviationScoreZeroStdDev(t *testing.T) {
	score, z := DeviationScore(10, 10, flat(200, 10))
	if z != 0 {
		t.Fatalf("zero stddev must pin z to 0, got %v", z)
	}
	if score != 50 {
		t.Fatalf("z=0 must score 50, got %v", score)
	}
}

func TestDeviationScoreClamped(t *testing.T) {
	cases := []struct {
		name        string
		current     float64
		weightedAvg float64
		want        float64
	}{
		{"far above fair value", 1000, 100, 0},
		{"far below fair value", 1, 100, 100},
	}
	closes := []float64{95, 100, 105, 100, 95, 100, 105}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score, _ := DeviationScore(tc.current, tc.weightedAvg, closes)
			if score != tc.want {
				t.Fatalf("want %v, got %v", tc.want, score)
			}
		})
	}
}

func TestMomentumScoreFlatSeries(t *testing.T) {
	score, rsi, ok := MomentumScore(flat(200, 55))
	if !ok {
		t.Fatal("expected a populated window")
	}
	if rsi != 50 {
		t.Fatalf("flat series RSI should resolve to 50, got %v", rsi)
	}
	if score != 50 {
		t.Fatalf("flat series technical score should be 50, got %v", score)
	}
}

func TestMomentumScoreAllGains(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	score, rsi, ok := MomentumScore(closes)
	if !ok {
		t.Fatal("expected a populated window")
	}
	if rsi != 100 {
		t.Fatalf("monotone gains should give RSI 100, got %v", rsi)
	}
	if score != 0 {
		t.Fatalf("overbought technical score should be 0, got %v", score)
	}
}

func TestMomentumScoreAllLosses(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 200 - float64(i)
	}
	score, rsi, ok := MomentumScore(closes)
	if !ok {
		t.Fatal("expected a populated window")
	}
	if rsi != 0 {
		t.Fatalf("monotone losses should give RSI 0, got %v", rsi)
	}
	if score != 100 {
		t.Fatalf("oversold technical score should be 100, got %v", score)
	}
}

func TestMomentumScoreShortWindow(t *testing.T) {
	if _, _, ok := MomentumScore(flat(RSIPeriod, 10)); ok {
		t.Fatal("a window shorter than period+1 must not produce a value")
	}
}

func TestStdDevVariants(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if got := StdDev(xs); math.Abs(got-2) > 1e-9 {
		t.Fatalf("population stddev want 2, got %v", got)
	}
	if got := SampleStdDev(xs); got <= 2 {
		t.Fatalf("sample stddev must exceed population stddev, got %v", got)
	}
}
