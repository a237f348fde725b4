package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the backtest engine.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	EvaluationsTotal  *prometheus.CounterVec // labels: strategy
	EvaluationErrors  *prometheus.CounterVec // labels: stage
	SimulationDur     prometheus.Histogram
	FetchDur          *prometheus.HistogramVec // labels: interval
	FetchPagesTotal   prometheus.Counter
	CacheHitsTotal    prometheus.Counter
	LastBatchSymbols  prometheus.Gauge
	LastBatchBestGain prometheus.Gauge
}

// NewMetrics creates all metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EvaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wayne_evaluations_total",
			Help: "Strategy simulations completed (by strategy)",
		}, []string{"strategy"}),
		EvaluationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wayne_evaluation_errors_total",
			Help: "Failed symbol evaluations (by stage)",
		}, []string{"stage"}),
		SimulationDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wayne_simulation_duration_seconds",
			Help:    "Time spent replaying one strategy over one symbol",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		FetchDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wayne_fetch_duration_seconds",
			Help:    "Kline fetch latency (by interval)",
			Buckets: prometheus.DefBuckets,
		}, []string{"interval"}),
		FetchPagesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wayne_fetch_pages_total",
			Help: "Kline pages requested from the data source",
		}),
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wayne_kline_cache_hits_total",
			Help: "Kline requests served from Redis",
		}),
		LastBatchSymbols: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wayne_last_batch_symbols",
			Help: "Symbols evaluated successfully in the last batch",
		}),
		LastBatchBestGain: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wayne_last_batch_best_profit_pct",
			Help: "Profit percentage of the best symbol in the last batch",
		}),
	}

	reg.MustRegister(
		m.EvaluationsTotal,
		m.EvaluationErrors,
		m.SimulationDur,
		m.FetchDur,
		m.FetchPagesTotal,
		m.CacheHitsTotal,
		m.LastBatchSymbols,
		m.LastBatchBestGain,
	)
	return m
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveSimulation(strategy string, d time.Duration) {
	if m == nil {
		return
	}
	m.EvaluationsTotal.WithLabelValues(strategy).Inc()
	m.SimulationDur.Observe(d.Seconds())
}

func (m *Metrics) ObserveFetch(interval string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchPagesTotal.Inc()
	m.FetchDur.WithLabelValues(interval).Observe(d.Seconds())
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) EvaluationFailed(stage string) {
	if m == nil {
		return
	}
	m.EvaluationErrors.WithLabelValues(stage).Inc()
}

func (m *Metrics) BatchDone(symbols int, bestProfitPct float64) {
	if m == nil {
		return
	}
	m.LastBatchSymbols.Set(float64(symbols))
	m.LastBatchBestGain.Set(bestProfitPct)
}
