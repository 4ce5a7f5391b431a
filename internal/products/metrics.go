package products

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	reloadOK     = "ok"
	reloadFailed = "failed"
)

type ReloadMetrics struct {
	Reloads  *prometheus.CounterVec
	Duration prometheus.Histogram
	Products prometheus.Gauge
	Reviews  prometheus.Gauge
}

func NewReloadMetrics(reg prometheus.Registerer) *ReloadMetrics {
	m := &ReloadMetrics{
		Reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "foodreview_reloads_total",
				Help: "Product repository loads by result",
			},
			[]string{"result"},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "foodreview_reload_duration_seconds",
				Help:    "Time spent reading and indexing review rows",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),
		Products: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "foodreview_products_loaded",
				Help: "Products in the current snapshot",
			},
		),
		Reviews: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "foodreview_reviews_loaded",
				Help: "Reviews in the current snapshot",
			},
		),
	}

	reg.MustRegister(m.Reloads, m.Duration, m.Products, m.Reviews)
	return m
}

func (m *ReloadMetrics) observe(took time.Duration, stats Stats, err error) {
	if m == nil {
		return
	}
	m.Duration.Observe(took.Seconds())
	if err != nil {
		m.Reloads.WithLabelValues(reloadFailed).Inc()
		return
	}
	m.Reloads.WithLabelValues(reloadOK).Inc()
	m.Products.Set(float64(stats.Products))
	m.Reviews.Set(float64(stats.Reviews))
}

func (m *ReloadMetrics) cleared() {
	if m == nil {
		return
	}
	m.Products.Set(0)
	m.Reviews.Set(0)
}
