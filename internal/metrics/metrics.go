// Package metrics holds the Prometheus collectors of the storages and the
// handler exposing them.
package metrics

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "apistore"

// Reasons a cookie write is dropped.
const (
	DropResponseStarted = "response_started"
	DropInvalidName     = "invalid_name"
)

// Cookie counts the operations of the cookie storage. A nil *Cookie is
// valid and records nothing.
type Cookie struct {
	operations *prometheus.CounterVec
	dropped    *prometheus.CounterVec
}

// NewCookie creates the cookie storage collectors and registers them with
// reg. Collectors already registered with reg by an earlier call are
// reused, so several stores can share one registry.
func NewCookie(reg prometheus.Registerer) *Cookie {
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cookie",
		Name:      "operations_total",
		Help:      "Cookie storage operations by kind.",
	}, []string{"op"})

	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cookie",
		Name:      "writes_dropped_total",
		Help:      "Set-Cookie writes that could not be emitted.",
	}, []string{"reason"})

	return &Cookie{
		operations: register(reg, operations),
		dropped:    register(reg, dropped),
	}
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// Operation counts one storage operation.
func (c *Cookie) Operation(op string) {
	if c == nil {
		return
	}
	c.operations.WithLabelValues(op).Inc()
}

// Dropped counts one cookie write that was not emitted.
func (c *Cookie) Dropped(reason string) {
	if c == nil {
		return
	}
	c.dropped.WithLabelValues(reason).Inc()
}

// Handler exposes the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
