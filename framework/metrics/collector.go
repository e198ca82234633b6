// Package metrics records container resolutions as Prometheus metrics.
package metrics

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/km-arc/go-container/framework/container"
)

// Result label values.
const (
	ResultBuilt  = "built"
	ResultCached = "cached"
	ResultError  = "error"
)

// Collector implements container.Observer. It owns its registry so several
// containers (and tests) never collide on the global one.
type Collector struct {
	registry *prometheus.Registry

	resolutions   *prometheus.CounterVec
	errors        *prometheus.CounterVec
	buildDuration *prometheus.HistogramVec
	lastBuild     *prometheus.GaugeVec

	mutex sync.RWMutex
	built map[string]int
}

var _ container.Observer = (*Collector)(nil)

// NewCollector creates a collector with every metric registered under
// namespace (e.g. "container").
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resolutions_total",
				Help:      "Total number of service resolutions",
			},
			[]string{"service", "lifetime", "result"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resolution_errors_total",
				Help:      "Total number of failed service resolutions by error kind",
			},
			[]string{"service", "kind"},
		),
		buildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "build_duration_seconds",
				Help:      "Time spent building service instances, dependencies included",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"service"},
		),
		lastBuild: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_build_timestamp_seconds",
				Help:      "Unix time of the last successful build of a service",
			},
			[]string{"service"},
		),
		built: make(map[string]int),
	}

	c.registry.MustRegister(c.resolutions, c.errors, c.buildDuration, c.lastBuild)
	return c
}

// Registry returns the registry holding the container metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveResolution records one resolution.
func (c *Collector) ObserveResolution(id string, lifetime container.Lifetime, cached bool, elapsed time.Duration, err error) {
	switch {
	case err != nil:
		c.resolutions.WithLabelValues(id, lifetime.String(), ResultError).Inc()
		c.errors.WithLabelValues(id, ErrorKind(err)).Inc()
	case cached:
		c.resolutions.WithLabelValues(id, lifetime.String(), ResultCached).Inc()
	default:
		c.resolutions.WithLabelValues(id, lifetime.String(), ResultBuilt).Inc()
		c.buildDuration.WithLabelValues(id).Observe(elapsed.Seconds())
		c.lastBuild.WithLabelValues(id).SetToCurrentTime()

		c.mutex.Lock()
		c.built[id]++
		c.mutex.Unlock()
	}
}

// Builds returns how many times id was built.
func (c *Collector) Builds(id string) int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.built[id]
}

// ErrorKind maps a resolution error to a short label value.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, container.ErrCircularReference):
		return "circular_reference"
	case errors.Is(err, container.ErrServiceNotFound):
		return "service_not_found"
	case errors.Is(err, container.ErrParameterNotFound):
		return "parameter_not_found"
	case errors.Is(err, container.ErrMalformedPlaceholder),
		errors.Is(err, container.ErrCircularParameter),
		errors.Is(err, container.ErrInvalidParameterValue):
		return "parameter"
	case errors.Is(err, container.ErrMethodCallFailed):
		return "method_call"
	case errors.Is(err, container.ErrConstructionFailed):
		return "construction"
	case errors.Is(err, container.ErrInvalidDefinition):
		return "invalid_definition"
	default:
		return "other"
	}
}
