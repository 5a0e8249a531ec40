package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nmd-agent/pkg/monitor"
)

const namespace = "nmd"

// MetricFactory creates and registers the daemon's self metrics.
type MetricFactory struct {
	reg Registers
}

// NewMetricFactory creates a factory bound to reg.
func NewMetricFactory(reg Registers) *MetricFactory {
	return &MetricFactory{reg: reg}
}

// NewTestFactory returns a factory on a private registry, plus that registry.
func NewTestFactory() (*MetricFactory, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewMetricFactory(NewPromRegistry(reg)), reg
}

// SensorMetrics groups the sensor set's metrics.
func (m *MetricFactory) SensorMetrics() monitor.SensorMetrics {
	return monitor.SensorMetrics{
		Errors:   m.NewSensorErrorsTotal(),
		Duration: m.NewSensorDurationSeconds(),
	}
}

// StorageMetrics groups the storage connector's metrics.
func (m *MetricFactory) StorageMetrics() monitor.StorageMetrics {
	return monitor.StorageMetrics{
		ConnectAttempts: m.NewStorageConnectAttemptsTotal(),
	}
}

// LoopMetrics groups the sampling loop's metrics.
func (m *MetricFactory) LoopMetrics() monitor.LoopMetrics {
	return monitor.LoopMetrics{
		Persisted:       m.NewMeasurementsPersistedTotal(),
		PersistFailures: m.NewPersistFailuresTotal(),
		LastPersist:     m.NewLastPersistTimestamp(),
		State:           m.NewLoopState(),
	}
}
