package monitor

import "github.com/prometheus/client_golang/prometheus"

// -------------------------- sensor set --------------------------
type SensorMetrics struct {
	Errors   *prometheus.CounterVec   // probe failures by sensor
	Duration *prometheus.HistogramVec // probe latency by sensor
}

// -------------------------- storage connector --------------------------
type StorageMetrics struct {
	ConnectAttempts *prometheus.CounterVec // by result (success/failure)
}

// -------------------------- sampling loop --------------------------
type LoopMetrics struct {
	Persisted       prometheus.Counter
	PersistFailures *prometheus.CounterVec // by stage (execute/commit)
	LastPersist     prometheus.Gauge       // unix seconds of the last committed sample
	State           *prometheus.GaugeVec   // 1 for the current state, 0 otherwise
}
