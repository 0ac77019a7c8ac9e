package handlers

import (
	"errors"
	"net/http"

	ordersvc "github.com/softmint/billing/internal/app/service/order"
	"github.com/softmint/billing/pkg/response"
	"github.com/softmint/billing/pkg/types"

	"github.com/gin-gonic/gin"
)

// userIDFromHeader reads the authenticated user id injected by the gateway.
func userIDFromHeader(c *gin.Context) string {
	return c.GetHeader("X-User-ID")
}

type CreateOrderRequest struct {
	OrderType   types.OrderType   `json:"order_type" binding:"required"`
	ProductID   string            `json:"product_id" binding:"required"`
	ProductName string            `json:"product_name"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Metadata    map[string]any    `json:"metadata"`
}

// @Summary      Create Order
// @Description  Creates a purchase-intent order, reusing a still-valid pending order for the same product and price.
// @Tags         Order
// @Accept       json
// @Produce      json
// @Param        X-User-ID header string true "User ID"
// @Param        request body CreateOrderRequest true "Create order request"
// @Success      200  {object}  handlers.RespOrder
// @Router       /api/v1/payment/orders [post]
func ApiCreateOrder(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := userIDFromHeader(c)
		if userID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing user id"))
			return
		}
		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		order, err := svc.CreateOrder(c.Request.Context(), &ordersvc.CreateOrderRequest{
			UserID:      userID,
			OrderType:   req.OrderType,
			ProductID:   req.ProductID,
			ProductName: req.ProductName,
			Amount:      req.Amount,
			Currency:    req.Currency,
			Metadata:    req.Metadata,
		})
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(order))
	}
}

// @Summary      Get Order
// @Tags         Order
// @Produce      json
// @Param        X-User-ID header string true "User ID"
// @Param        id path string true "Order ID"
// @Success      200  {object}  handlers.RespOrder
// @Router       /api/v1/payment/orders/{id} [get]
func ApiGetOrder(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := userIDFromHeader(c)
		order, err := svc.GetOrderByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		if order == nil || order.UserID != userID {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeNotFound, "order not found"))
			return
		}
		c.JSON(http.StatusOK, response.OKT(order))
	}
}

// @Summary      List Orders
// @Description  Lists the caller's orders newest first, optionally filtered by status.
// @Tags         Order
// @Produce      json
// @Param        X-User-ID header string true "User ID"
// @Param        status query string false "Order status filter"
// @Success      200  {object}  handlers.RespOrderList
// @Router       /api/v1/payment/orders [get]
func ApiListOrders(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := userIDFromHeader(c)
		if userID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing user id"))
			return
		}
		orders, err := svc.GetUserOrders(c.Request.Context(), userID, types.OrderStatus(c.Query("status")))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(orders))
	}
}

// @Summary      Cancel Order
// @Description  Cancels a pending order owned by the caller.
// @Tags         Order
// @Produce      json
// @Param        X-User-ID header string true "User ID"
// @Param        id path string true "Order ID"
// @Success      200  {object}  handlers.RespOrder
// @Router       /api/v1/payment/orders/{id}/cancel [post]
func ApiCancelOrder(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := userIDFromHeader(c)
		order, err := svc.GetOrderByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		if order == nil || order.UserID != userID {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeNotFound, "order not found"))
			return
		}
		if order.Status != types.OrderStatusPending {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "only pending orders can be canceled"))
			return
		}
		canceled, err := svc.MarkOrderCanceled(c.Request.Context(), order.ID)
		if err != nil {
			if errors.Is(err, ordersvc.ErrOrderNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(canceled))
	}
}

func RegisterOrderRoutes(r gin.IRouter, svc *ordersvc.Service) {
	r.POST("/orders", ApiCreateOrder(svc))
	r.GET("/orders", ApiListOrders(svc))
	r.GET("/orders/:id", ApiGetOrder(svc))
	r.POST("/orders/:id/cancel", ApiCancelOrder(svc))
}
