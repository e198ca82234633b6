// Package inspect serves a read-only HTTP view of a container: its service
// definitions, parameters, a YAML dump and the resolution metrics.
package inspect

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/dump"
	"github.com/km-arc/go-container/framework/metrics"
)

// Inspector exposes a container over HTTP.
//
//	GET /health          status and counts
//	GET /services        every definition, sorted by id
//	GET /services/{id}   one definition, aliases followed
//	GET /parameters      raw parameters
//	GET /dump            YAML dump
//	GET /metrics         Prometheus metrics (when a collector is set)
type Inspector struct {
	container *container.Container
	collector *metrics.Collector
	log       *zap.Logger
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithCollector serves collector's registry on /metrics.
func WithCollector(collector *metrics.Collector) Option {
	return func(i *Inspector) { i.collector = collector }
}

// WithLogger sets the request logger.
func WithLogger(log *zap.Logger) Option {
	return func(i *Inspector) {
		if log != nil {
			i.log = log.Named("inspect")
		}
	}
}

// New creates an inspector for c.
func New(c *container.Container, opts ...Option) *Inspector {
	i := &Inspector{container: c, log: zap.NewNop()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Routes builds the router serving every inspector endpoint.
func (i *Inspector) Routes() *Router {
	r := NewRouter(i.log)
	r.Get("/health", i.health)
	r.Prefix("/services", func(r *Router) {
		r.Get("/", i.services)
		r.Get("/{id}", i.service)
	})
	r.Get("/parameters", i.parameters)
	r.Get("/dump", i.dump)
	if i.collector != nil {
		r.Handle("/metrics", promhttp.HandlerFor(i.collector.Registry(), promhttp.HandlerOpts{}))
	}
	return r
}

func (i *Inspector) health(w http.ResponseWriter, _ *http.Request) {
	NewResponse(w).Success(map[string]any{
		"status":     "ok",
		"frozen":     i.container.Frozen(),
		"services":   len(i.container.IDs()),
		"parameters": len(i.container.Parameters().Names()),
	})
}

func (i *Inspector) services(w http.ResponseWriter, _ *http.Request) {
	NewResponse(w).Success(i.container.DescribeAll())
}

func (i *Inspector) service(w http.ResponseWriter, r *http.Request) {
	res := NewResponse(w)
	desc, err := i.container.Describe(Param(r, "id"))
	if err != nil {
		if StatusFor(err) == http.StatusInternalServerError {
			i.log.Error("describing service", zap.Error(err))
		}
		res.Fail(err)
		return
	}
	res.Success(desc)
}

func (i *Inspector) parameters(w http.ResponseWriter, _ *http.Request) {
	NewResponse(w).Success(i.container.Parameters().All())
}

func (i *Inspector) dump(w http.ResponseWriter, _ *http.Request) {
	res := NewResponse(w)
	body, err := dump.YAML(i.container)
	if err != nil {
		i.log.Error("dumping container", zap.Error(err))
		res.Fail(err)
		return
	}
	res.YAML(body)
}
