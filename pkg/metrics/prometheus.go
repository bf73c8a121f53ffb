package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	lastScore     *prometheus.GaugeVec
	batchDuration *prometheus.HistogramVec
	batchSymbols  *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
}

// New creates a Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		lastScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coinscope_last_score",
				Help: "Last computed final score for a symbol",
			},
			[]string{"symbol"},
		),
		batchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinscope_batch_duration_seconds",
				Help:    "Duration of a universe scoring batch",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"source"},
		),
		batchSymbols: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinscope_batch_symbols_total",
				Help: "Symbols processed by scoring batches",
			},
			[]string{"source", "outcome"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinscope_errors_total",
				Help: "Errors by kind",
			},
			[]string{"kind"},
		),
	}
}

// RecordScore records the last final score for a symbol.
func (r *Recorder) RecordScore(symbol string, score float64) {
	r.lastScore.WithLabelValues(symbol).Set(score)
}

// RecordBatch records one finished batch run.
func (r *Recorder) RecordBatch(source string, duration time.Duration, ok, failed int) {
	r.batchDuration.WithLabelValues(source).Observe(duration.Seconds())
	r.batchSymbols.WithLabelValues(source, "ok").Add(float64(ok))
	r.batchSymbols.WithLabelValues(source, "error").Add(float64(failed))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
