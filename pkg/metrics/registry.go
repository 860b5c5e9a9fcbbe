// Package metrics provides a centralized Prometheus metrics registry for
// the daemon, organized into three categories:
//
//   - Business: ingest/query/retention counts (what the system is doing)
//   - Technical: HTTP and circuit-breaker behavior (how requests move)
//   - Infra: storage and cache (what's underneath)
//
// All metrics are named <namespace>_<category>_<metric_name>, e.g.
// drtrace_business_logs_ingested_total.
package metrics

import "sync"

// Registry is the central registry for all Prometheus metrics, with each
// category lazily initialized on first access.
type Registry struct {
	namespace string

	business  *BusinessMetrics
	technical *TechnicalMetrics
	infra     *InfraMetrics

	businessOnce  sync.Once
	technicalOnce sync.Once
	infraOnce     sync.Once
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the global singleton Registry.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = New("drtrace")
	})
	return defaultRegistry
}

// New creates a Registry with the given metric namespace. Most callers
// should use Default() instead.
func New(namespace string) *Registry {
	if namespace == "" {
		namespace = "drtrace"
	}
	return &Registry{namespace: namespace}
}

// Business returns the ingest/query/retention metrics manager.
func (r *Registry) Business() *BusinessMetrics {
	r.businessOnce.Do(func() {
		r.business = newBusinessMetrics(r.namespace)
	})
	return r.business
}

// Technical returns the HTTP/circuit-breaker metrics manager.
func (r *Registry) Technical() *TechnicalMetrics {
	r.technicalOnce.Do(func() {
		r.technical = newTechnicalMetrics(r.namespace)
	})
	return r.technical
}

// Infra returns the storage/cache metrics manager.
func (r *Registry) Infra() *InfraMetrics {
	r.infraOnce.Do(func() {
		r.infra = newInfraMetrics(r.namespace)
	})
	return r.infra
}

// Namespace returns the configured Prometheus namespace.
func (r *Registry) Namespace() string {
	return r.namespace
}
