package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.CartAddition(ResultAdded)
	m.CartAddition(ResultAdded)
	m.CartAddition(ResultOutOfStock)
	m.OrderTransition("Shipped")
	m.Recovery("storefront:cart", errors.New("bad json"))
	m.SetCartItems(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cartAdditions.WithLabelValues(ResultAdded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cartAdditions.WithLabelValues(ResultOutOfStock)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.orderTransitions.WithLabelValues("Shipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recoveries.WithLabelValues("storefront:cart")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.cartItems))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.OrderTransition("Delivered")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `storefront_order_transitions_total{to="Delivered"} 1`))
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.CartAddition(ResultAdded)

	assert.Equal(t, 0.0, testutil.ToFloat64(b.cartAdditions.WithLabelValues(ResultAdded)))
}
