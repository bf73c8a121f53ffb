// Package analytics holds the pure statistical transforms behind the hybrid
// valuation: log-return volatility, a time-decay weighted fair value, a
// z-score mean-reversion score, and an inverted-RSI momentum score.
package analytics

import (
	"math"
	"time"

	"CoinScope/internal/domain/models"
)

// RSIPeriod is the rolling window for the momentum score.
const RSIPeriod = 14

// Volatility is the annualized log-return volatility of a series together
// with the derived display metrics.
type Volatility struct {
	Annualized float64
	Pct        float64
	Stability  float64
}

// LogReturnVolatility computes daily log-return stddev annualized by sqrt(365).
// Stability decays exponentially in annualized volatility, so it stays in
// (0, 100] and a flat series scores exactly 100.
func LogReturnVolatility(closes []float64) Volatility {
	if len(closes) < 2 {
		return Volatility{Stability: 100}
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		returns = append(returns, math.Log(closes[i]/closes[i-1]))
	}
	annualized := SampleStdDev(returns) * math.Sqrt(365)
	return Volatility{
		Annualized: annualized,
		Pct:        annualized * 100,
		Stability:  100 * math.Exp(-annualized),
	}
}

// TimeDecayAverage is an exponentially weighted mean favoring recent prices.
// Each observation is weighted exp(-age/365.25) where age is whole days before
// the newest date, giving roughly a one-year decay scale.
func TimeDecayAverage(series models.PriceSeries) float64 {
	if series.Len() == 0 {
		return 0
	}
	newest := series.LastDate()
	var sum, wsum float64
	for i, d := range series.Dates {
		age := float64(AgeDays(newest, d))
		w := math.Exp(-age / 365.25)
		sum += series.Closes[i] * w
		wsum += w
	}
	return sum / wsum
}

// DeviationScore maps the z-score of the current price against the weighted
// average onto [0, 100], symmetric around 50. Price above fair value lowers
// the score, price below raises it. A zero-stddev series pins z to 0.
func DeviationScore(current, weightedAvg float64, closes []float64) (score, z float64) {
	if sd := StdDev(closes); sd > 0 {
		z = (current - weightedAvg) / sd
	}
	return Clamp(50-z*20, 0, 100), z
}

// MomentumScore computes the 14-period RSI using simple rolling means of gains
// and losses, then inverts it: overbought lowers the score, oversold raises
// it. Only the last fully populated window is read; the caller must supply at
// least RSIPeriod+1 closes. A flat window (no gains, no losses) is treated as
// RS=1, i.e. RSI 50.
func MomentumScore(closes []float64) (score, rsi float64, ok bool) {
	if len(closes) < RSIPeriod+1 {
		return 0, 0, false
	}
	var gain, loss float64
	for i := len(closes) - RSIPeriod; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}
	gain /= RSIPeriod
	loss /= RSIPeriod

	switch {
	case gain == 0 && loss == 0:
		rsi = 50
	case loss == 0:
		rsi = 100
	default:
		rs := gain / loss
		rsi = 100 - 100/(1+rs)
	}
	return 100 - rsi, rsi, true
}

// StdDev is the population standard deviation, used for the z-score.
func StdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return math.Sqrt(sumSquares(xs) / float64(len(xs)))
}

// SampleStdDev uses the n-1 denominator, matching how return volatility is
// conventionally estimated from a sample.
func SampleStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return math.Sqrt(sumSquares(xs) / float64(len(xs)-1))
}

func sumSquares(xs []float64) float64 {
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return ss
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// AgeDays returns whole days between two dates, ignoring time of day.
func AgeDays(newest, d time.Time) int {
	return int(newest.Sub(d).Hours() / 24)
}
