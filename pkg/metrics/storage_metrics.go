package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (m *MetricFactory) NewStorageConnectAttemptsTotal() *prometheus.CounterVec {
	return promauto.With(m.reg).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "storage_connect_attempts_total",
		Help:      "Storage connection attempts by result",
	}, []string{"result"})
}
