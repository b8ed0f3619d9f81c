// Package metrics provides Prometheus instrumentation for tokenbucket components.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metric instances for tokenbucket components.
type Registry struct {
	// Rate Limiting Metrics
	RateLimitRequests *prometheus.CounterVec
	RateLimitAllowed  *prometheus.CounterVec
	RateLimitDenied   *prometheus.CounterVec
	RateLimitTokens   *prometheus.GaugeVec
	RateLimitCapacity *prometheus.GaugeVec

	// Driver Metrics
	SinkErrors *prometheus.CounterVec
}

// DefaultRegistry is the default metrics registry used by tokenbucket components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer
// and the default namespace. It panics if a collector conflicts with one
// already registered under the same name.
func NewRegistry(reg prometheus.Registerer) *Registry {
	config := DefaultConfig()
	config.Registry = reg
	registry, err := NewRegistryWithConfig(config)
	if err != nil {
		panic(err)
	}
	return registry
}

// NewRegistryWithConfig creates a metrics registry honouring the namespace and
// constant labels of config. A nil config.Registry means prometheus.DefaultRegisterer.
//
// Collectors that are already registered with identical descriptors are
// reused, so building a second Registry on the same registerer shares the
// first one's series. Any other registration failure is returned.
func NewRegistryWithConfig(config Config) (*Registry, error) {
	reg := config.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	namespace := config.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}

	counter := func(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.Labels,
		}, labels)
	}
	gauge := func(subsystem, name, help string, labels ...string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.Labels,
		}, labels)
	}

	r := &Registry{
		RateLimitRequests: counter("ratelimit", "requests_total",
			"Total number of rate limit requests", "limiter_type", "limiter_name"),
		RateLimitAllowed: counter("ratelimit", "allowed_total",
			"Total number of allowed requests", "limiter_type", "limiter_name"),
		RateLimitDenied: counter("ratelimit", "denied_total",
			"Total number of denied requests", "limiter_type", "limiter_name"),
		RateLimitTokens: gauge("ratelimit", "tokens_available",
			"Number of tokens currently available", "limiter_type", "limiter_name"),
		RateLimitCapacity: gauge("ratelimit", "capacity",
			"Maximum number of tokens the limiter can hold", "limiter_type", "limiter_name"),
		SinkErrors: counter("driver", "sink_errors_total",
			"Total number of attempt events a sink failed to record", "sink"),
	}

	var err error
	for _, c := range []**prometheus.CounterVec{&r.RateLimitRequests, &r.RateLimitAllowed, &r.RateLimitDenied, &r.SinkErrors} {
		if *c, err = register(reg, *c); err != nil {
			return nil, err
		}
	}
	for _, g := range []**prometheus.GaugeVec{&r.RateLimitTokens, &r.RateLimitCapacity} {
		if *g, err = register(reg, *g); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// register adds c to reg, or returns the collector reg already holds for the
// same descriptor.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	var zero C
	return zero, err
}
