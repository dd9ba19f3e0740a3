// Package metrics exposes storefront counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cart addition results
const (
	ResultAdded        = "added"
	ResultOutOfStock   = "out_of_stock"
	ResultInsufficient = "insufficient_stock"
	ResultNotFound     = "not_found"
	ResultInvalid      = "invalid"
	ResultError        = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	cartAdditions     *prometheus.CounterVec
	orderTransitions  *prometheus.CounterVec
	recoveries        *prometheus.CounterVec
	cartItems         prometheus.Gauge
	ordersOutstanding prometheus.Gauge
}

// New registers the storefront collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cartAdditions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_cart_additions_total",
				Help: "Add-to-cart attempts by result",
			},
			[]string{"result"},
		),
		orderTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_order_transitions_total",
				Help: "Order status changes by target status",
			},
			[]string{"to"},
		),
		recoveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_persistence_recoveries_total",
				Help: "Stored slices reset to their default after a read or decode failure",
			},
			[]string{"key"},
		),
		cartItems: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "storefront_cart_items",
				Help: "Units currently in the cart",
			},
		),
		ordersOutstanding: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "storefront_orders_outstanding",
				Help: "Orders with a pending status transition",
			},
		),
	}

	m.registry.MustRegister(
		m.cartAdditions,
		m.orderTransitions,
		m.recoveries,
		m.cartItems,
		m.ordersOutstanding,
	)
	return m
}

func (m *Metrics) CartAddition(result string) {
	m.cartAdditions.WithLabelValues(result).Inc()
}

func (m *Metrics) OrderTransition(to string) {
	m.orderTransitions.WithLabelValues(to).Inc()
}

// Recovery matches storage.RecoveryHook.
func (m *Metrics) Recovery(key string, _ error) {
	m.recoveries.WithLabelValues(key).Inc()
}

func (m *Metrics) SetCartItems(n int) {
	m.cartItems.Set(float64(n))
}

func (m *Metrics) SetOrdersOutstanding(n int) {
	m.ordersOutstanding.Set(float64(n))
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
