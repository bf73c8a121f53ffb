package models

import "time"

// Sentiment labels returned by the sentiment provider.
const (
	SentimentGood = "good"
	SentimentOK   = "ok"
	SentimentBad  = "bad"
)

// DefaultJustification is used when the provider returned nothing for a symbol.
const DefaultJustification = "Awaiting live sentiment analysis..."

// SentimentEntry is the per-symbol result of the bulk sentiment call.
type SentimentEntry struct {
	Sentiment string `json:"sentiment"`
	Analysis  string `json:"analysis"`
}

// Multiplier maps the label onto the score adjustment factor.
func (e SentimentEntry) Multiplier() float64 {
	switch e.Sentiment {
	case SentimentGood:
		return 1.1
	case SentimentBad:
		return 0.9
	default:
		return 1.0
	}
}

// SentimentMap holds one entry per symbol. A missing symbol means "no
// sentiment available" and callers fall back to neutral defaults.
type SentimentMap map[string]SentimentEntry

// Lookup returns the entry for symbol, or the neutral default when absent or
// when the label is unknown.
func (m SentimentMap) Lookup(symbol string) SentimentEntry {
	if e, ok := m[symbol]; ok {
		switch e.Sentiment {
		case SentimentGood, SentimentOK, SentimentBad:
			if e.Analysis == "" {
				e.Analysis = DefaultJustification
			}
			return e
		}
	}
	return SentimentEntry{Sentiment: SentimentOK, Analysis: DefaultJustification}
}

// ScoreComponents breaks a final score into its inputs. Immutable once built.
type ScoreComponents struct {
	FundamentalValue string   `json:"fundamental_value"`
	FundamentalScore float64  `json:"fundamental_score"`
	TechnicalRSI     float64  `json:"technical_rsi"`
	TechnicalScore   float64  `json:"technical_score"`
	VolatilityPct    float64  `json:"volatility_pct"`
	StabilityScore   float64  `json:"stability_score"`
	Sentiment        string   `json:"sentiment"`
	Multiplier       float64  `json:"sentiment_multiplier"`
	Analysis         string   `json:"sentiment_analysis"`
	Links            []string `json:"links"`
}

// AssetScore is the latest valuation record for one symbol. The store keeps at
// most one row per symbol, overwritten on each refresh.
type AssetScore struct {
	Symbol       string          `json:"symbol"`
	CurrentPrice float64         `json:"current_price"`
	FinalScore   float64         `json:"final_score"`
	Signal       string          `json:"signal"`
	WeightedAvg  float64         `json:"weighted_avg"`
	ZScore       float64         `json:"value_deviation"`
	Margin       float64         `json:"margin"`
	Components   ScoreComponents `json:"components"`
	ComputedAt   time.Time       `json:"computed_at"`
}

// Batch result sources.
const (
	SourceCache = "database_cache"
	SourceFresh = "real_time_computed"
)

// BatchResult is the outcome of one universe-wide run or cache read. It is
// constructed per request and never persisted as a unit.
type BatchResult struct {
	Cryptos []AssetScore `json:"cryptos"`
	Total   int          `json:"total"`
	Source  string       `json:"source"`
	Errors  int          `json:"errors,omitempty"`
}
