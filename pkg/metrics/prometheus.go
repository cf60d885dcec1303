package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain/repository.Metrics using Prometheus.
type Recorder struct {
	forecasts   *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	lastPrice   *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
	cache       *prometheus.CounterVec
}

// New registers the collectors on reg (prometheus.DefaultRegisterer in main).
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		forecasts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coincast_forecasts_total",
				Help: "Completed forecasts by crypto, model and horizon",
			},
			[]string{"crypto", "model", "horizon"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coincast_errors_total",
				Help: "Errors encountered, by kind",
			},
			[]string{"type"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coincast_last_predicted_price",
				Help: "Final predicted price of the latest forecast",
			},
			[]string{"crypto", "model"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coincast_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"operation"},
		),
		cache: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coincast_forecast_cache_total",
				Help: "Forecast cache lookups by result",
			},
			[]string{"result"},
		),
	}
}

func (r *Recorder) RecordForecast(crypto, model string, horizon int) {
	r.forecasts.WithLabelValues(crypto, model, strconv.Itoa(horizon)).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordLastPrice(crypto, model string, price float64) {
	r.lastPrice.WithLabelValues(crypto, model).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) RecordCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cache.WithLabelValues(result).Inc()
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordForecast(string, string, int)      {}
func (Nop) RecordError(string)                      {}
func (Nop) RecordLastPrice(string, string, float64) {}
func (Nop) RecordLatency(string, float64)           {}
func (Nop) RecordCache(bool)                        {}
