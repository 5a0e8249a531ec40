package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NewSensorErrorsTotal counts probes that returned the sentinel instead of a value.
// Label sensor: cpu_load, disk_space, uptime.
func (m *MetricFactory) NewSensorErrorsTotal() *prometheus.CounterVec {
	return promauto.With(m.reg).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sensor_errors_total",
		Help:      "Total sensor reads that failed and yielded the sentinel value",
	}, []string{"sensor"})
}

// NewSensorDurationSeconds observes how long each probe takes. Command probes
// fork a process, so buckets reach into seconds.
func (m *MetricFactory) NewSensorDurationSeconds() *prometheus.HistogramVec {
	return promauto.With(m.reg).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sensor_duration_seconds",
		Help:      "Duration of a single sensor read",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	}, []string{"sensor"})
}
