package handlers

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRegisterPaymentRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api/v1/payment")
	RegisterWebhookRoutes(g, nil, nil, nil)
	RegisterOrderRoutes(g, nil)
	RegisterPaymentRoutes(g, nil, nil, nil)

	routes := r.Routes()
	contains := func(target string) bool {
		for _, rt := range routes {
			if rt.Method+" "+rt.Path == target {
				return true
			}
		}
		return false
	}

	require.True(t, contains("POST /api/v1/payment/webhook/:provider"))
	require.True(t, contains("POST /api/v1/payment/orders"))
	require.True(t, contains("GET /api/v1/payment/orders"))
	require.True(t, contains("GET /api/v1/payment/orders/:id"))
	require.True(t, contains("POST /api/v1/payment/orders/:id/cancel"))
	require.True(t, contains("GET /api/v1/payment/subscription"))
	require.True(t, contains("POST /api/v1/payment/subscription/cancel"))
	require.True(t, contains("GET /api/v1/payment/lifetime"))
	require.True(t, contains("GET /api/v1/payment/credits"))
}

func TestRegisterAdminRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api/v1/admin")
	RegisterAdminRoutes(g, nil, nil)

	routes := r.Routes()
	contains := func(target string) bool {
		for _, rt := range routes {
			if rt.Method+" "+rt.Path == target {
				return true
			}
		}
		return false
	}

	require.True(t, contains("POST /api/v1/admin/list_orders"))
	require.True(t, contains("POST /api/v1/admin/get_revenue_statistic"))
}
