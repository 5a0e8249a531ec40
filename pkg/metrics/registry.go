package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registers hides the concrete Prometheus registry so tests can swap it.
type Registers interface {
	prometheus.Registerer
	Register(collector prometheus.Collector) error
}

// promRegistry wraps *prometheus.Registry.
type promRegistry struct {
	registry *prometheus.Registry
}

// NewPromRegistry adapts a Prometheus registry to Registers.
func NewPromRegistry(registry *prometheus.Registry) Registers {
	return &promRegistry{registry: registry}
}

// MustRegister panics on the first collector that fails to register.
func (p *promRegistry) MustRegister(collectors ...prometheus.Collector) {
	for _, c := range collectors {
		if err := p.registry.Register(c); err != nil {
			panic(err)
		}
	}
}

func (p *promRegistry) Unregister(collector prometheus.Collector) bool {
	return p.registry.Unregister(collector)
}

func (p *promRegistry) Register(collector prometheus.Collector) error {
	return p.registry.Register(collector)
}

// InitPromRegistry creates the daemon's private registry. Go runtime metrics are
// left out; process metrics are optional.
func InitPromRegistry(enableProcess bool) (*prometheus.Registry, *MetricFactory) {
	registry := prometheus.NewRegistry()
	if enableProcess {
		registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	}
	return registry, NewMetricFactory(NewPromRegistry(registry))
}
