package infra

import (
	"context"

	"scheduler-sim/dispatch/domain"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "scheduler"

var latencyBuckets = []float64{0.005, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 1.5, 2, 3, 4, 5, 7.5, 10, 15, 30, 60}

// Metrics é um RecordSink e um ModeObserver que exporta contadores Prometheus.
type Metrics struct {
	requests    *prometheus.CounterVec
	queueWait   prometheus.Histogram
	processing  *prometheus.HistogramVec
	directives  *prometheus.CounterVec
	currentMode *prometheus.GaugeVec
}

// NewMetrics registra as métricas em reg. As vagas em uso são lidas do pool
// no momento da coleta.
func NewMetrics(reg prometheus.Registerer, pool domain.SlotPool) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Finished requests by scheduling mode and outcome.",
		}, []string{"mode", "outcome"}),
		queueWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "queue_wait_seconds",
			Help:      "Time spent waiting for a worker slot.",
			Buckets:   latencyBuckets,
		}),
		processing: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "processing_seconds",
			Help:      "Simulated work duration of successful requests.",
			Buckets:   latencyBuckets,
		}, []string{"mode"}),
		directives: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "mode_directives_total",
			Help:      "Control directives received, by resulting mode and whether they changed it.",
		}, []string{"mode", "applied"}),
		currentMode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "scheduling_mode",
			Help:      "1 for the scheduling mode currently in effect.",
		}, []string{"mode"}),
	}

	collectors := []prometheus.Collector{m.requests, m.queueWait, m.processing, m.directives, m.currentMode}
	if pool != nil {
		collectors = append(collectors,
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "slots_in_use",
				Help:      "Worker slots currently held.",
			}, func() float64 { return float64(pool.InUse()) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "slots_capacity",
				Help:      "Configured worker slot capacity.",
			}, func() float64 { return float64(pool.Capacity()) }),
		)
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Record(_ context.Context, rec domain.Record) error {
	m.requests.WithLabelValues(rec.Mode.String(), string(rec.Outcome)).Inc()
	m.queueWait.Observe(rec.QueueWait.Seconds())
	if rec.Succeeded() {
		m.processing.WithLabelValues(rec.Mode.String()).Observe(rec.Processing.Seconds())
	}
	return nil
}

func (m *Metrics) ModeDirective(mode domain.Mode, applied bool) {
	a := "false"
	if applied {
		a = "true"
	}
	m.directives.WithLabelValues(mode.String(), a).Inc()
	m.SetMode(mode)
}

// SetMode marca mode como o modo vigente no gauge.
func (m *Metrics) SetMode(mode domain.Mode) {
	for _, other := range domain.Modes {
		v := 0.0
		if other == mode {
			v = 1
		}
		m.currentMode.WithLabelValues(other.String()).Set(v)
	}
}
