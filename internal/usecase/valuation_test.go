package usecase

import (
	"context"
	"errors"
	"testing"

	"CoinScope/internal/domain/models"
)

func TestScoreInsufficientHistory(t *testing.T) {
	src := newFakeCandleSource()
	src.series["BTC-USD"] = flatSeries(150, 100)
	v := testValuator(src)

	_, err := v.Score(context.Background(), "BTC-USD", models.SentimentMap{})
	if !errors.Is(err, models.ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestScoreFlatSeriesMidpoints(t *testing.T) {
	src := newFakeCandleSource()
	src.series["BTC-USD"] = flatSeries(220, 250)
	v := testValuator(src)

	score, err := v.Score(context.Background(), "BTC-USD", models.SentimentMap{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score.WeightedAvg != 250 {
		t.Fatalf("constant series weighted avg should equal price, got %v", score.WeightedAvg)
	}
	if score.ZScore != 0 {
		t.Fatalf("flat series z must be 0, got %v", score.ZScore)
	}
	if score.Components.FundamentalScore != 50 || score.Components.TechnicalScore != 50 {
		t.Fatalf("flat series component scores should be 50/50, got %v/%v",
			score.Components.FundamentalScore, score.Components.TechnicalScore)
	}
	if score.Components.VolatilityPct != 0 || score.Components.StabilityScore != 100 {
		t.Fatalf("flat series volatility wrong: %+v", score.Components)
	}
	// blended 50 * neutral 1.0 * 0.76
	if score.FinalScore != 38 {
		t.Fatalf("expected final score 38, got %v", score.FinalScore)
	}
	if score.Signal != "SELL" {
		t.Fatalf("expected SELL at 38, got %q", score.Signal)
	}
	if score.Margin != -12 {
		t.Fatalf("expected margin -12, got %v", score.Margin)
	}
}

func TestScoreCeilingIs76(t *testing.T) {
	src := newFakeCandleSource()
	src.series["SOL-USD"] = crashSeries()
	v := testValuator(src)

	sentiment := models.SentimentMap{
		"SOL-USD": {Sentiment: models.SentimentGood, Analysis: "capitulation done"},
	}
	score, err := v.Score(context.Background(), "SOL-USD", sentiment)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score.FinalScore != 76 {
		t.Fatalf("maximal inputs should cap at 76, got %v", score.FinalScore)
	}
	if score.Signal != "STRONG BUY" {
		t.Fatalf("expected STRONG BUY at the ceiling, got %q", score.Signal)
	}
}

func TestScoreStablecoinOverride(t *testing.T) {
	cases := []struct {
		name   string
		price  float64
		signal string
		score  float64
	}{
		{"de-peg below tolerance", 0.97, "SELL (DE-PEG)", 0},
		{"premium above tolerance", 1.03, "BUY (PREMIUM)", 100},
		{"peg intact", 1.005, "HOLD (PEG INTACT)", 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := newFakeCandleSource()
			src.series["USDC-USD"] = flatSeries(220, tc.price)
			v := testValuator(src)

			score, err := v.Score(context.Background(), "USDC-USD", models.SentimentMap{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if score.Signal != tc.signal {
				t.Fatalf("want %q, got %q", tc.signal, score.Signal)
			}
			if score.FinalScore != tc.score {
				t.Fatalf("want score %v, got %v", tc.score, score.FinalScore)
			}
		})
	}
}

func TestScoreMissingSentimentIsNeutral(t *testing.T) {
	src := newFakeCandleSource()
	src.series["ADA-USD"] = flatSeries(220, 0.5)
	v := testValuator(src)

	score, err := v.Score(context.Background(), "ADA-USD", models.SentimentMap{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score.Components.Sentiment != models.SentimentOK {
		t.Fatalf("expected ok label, got %q", score.Components.Sentiment)
	}
	if score.Components.Multiplier != 1.0 {
		t.Fatalf("expected multiplier 1.0, got %v", score.Components.Multiplier)
	}
}

func TestScoreReferenceLinksAlwaysPresent(t *testing.T) {
	src := newFakeCandleSource()
	src.series["LINK-USD"] = flatSeries(220, 15)
	v := testValuator(src)

	score, err := v.Score(context.Background(), "link", models.SentimentMap{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(score.Components.Links) != 2 {
		t.Fatalf("expected 2 reference links, got %d", len(score.Components.Links))
	}
	if score.Components.Links[0] != "https://finance.yahoo.com/quote/LINK-USD/news/" {
		t.Fatalf("unexpected finance link: %s", score.Components.Links[0])
	}
	if score.Components.Links[1] != "https://news.google.com/search?q=LINK+crypto+news" {
		t.Fatalf("unexpected news link: %s", score.Components.Links[1])
	}
}

func TestNormalizeSymbol(t *testing.T) {
	v := testValuator(newFakeCandleSource())
	cases := map[string]string{
		"btc":      "BTC-USD",
		" eth ":    "ETH-USD",
		"SOL-USD":  "SOL-USD",
		"doge-usd": "DOGE-USD",
	}
	for in, want := range cases {
		if got := v.NormalizeSymbol(in); got != want {
			t.Fatalf("NormalizeSymbol(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBlendSignalThresholds(t *testing.T) {
	cases := []struct {
		score  float64
		signal string
	}{
		{76, "STRONG BUY"},
		{75, "STRONG BUY"},
		{60, "BUY"},
		{74.9, "BUY"},
		{50.1, "HOLD"},
		{59.9, "HOLD"},
		{50, "SELL"},
		{25.1, "SELL"},
		{25, "STRONG SELL"},
		{0, "STRONG SELL"},
	}
	for _, tc := range cases {
		if got := blendSignal(tc.score); got != tc.signal {
			t.Fatalf("blendSignal(%v) = %q, want %q", tc.score, got, tc.signal)
		}
	}
}
