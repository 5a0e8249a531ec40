package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (m *MetricFactory) NewMeasurementsPersistedTotal() prometheus.Counter {
	return promauto.With(m.reg).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "measurements_persisted_total",
		Help:      "Measurements committed to storage",
	})
}

// NewPersistFailuresTotal counts failed writes. Label stage: execute or commit.
func (m *MetricFactory) NewPersistFailuresTotal() *prometheus.CounterVec {
	return promauto.With(m.reg).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "persist_failures_total",
		Help:      "Measurements that failed to persist, by stage",
	}, []string{"stage"})
}

func (m *MetricFactory) NewLastPersistTimestamp() prometheus.Gauge {
	return promauto.With(m.reg).NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_persist_timestamp_seconds",
		Help:      "Unix time of the most recently committed measurement",
	})
}

// NewLoopState exposes the sampling loop state machine, one series per state.
func (m *MetricFactory) NewLoopState() *prometheus.GaugeVec {
	return promauto.With(m.reg).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "loop_state",
		Help:      "Current sampling loop state (1 = active)",
	}, []string{"state"})
}
