package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tdex-network/custodyd/internal/core/ports"
)

// Registry groups the collectors exported by the daemon.
type Registry struct {
	*prometheus.Registry
	HTTP *HTTPMetrics
}

// NewRegistry returns a registry with the go runtime and process collectors,
// the storage collector and the http metrics.
func NewRegistry(repoManager ports.RepoManager) (*Registry, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	if err := reg.Register(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	); err != nil {
		return nil, err
	}
	if err := reg.Register(NewStorageCollector(repoManager)); err != nil {
		return nil, err
	}

	httpMetrics, err := NewHTTPMetrics(reg)
	if err != nil {
		return nil, err
	}
	return &Registry{reg, httpMetrics}, nil
}

// Handler returns the http handler exposing the registered metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{})
}
