package handlers

import (
	"net/http"

	ordersvc "github.com/softmint/billing/internal/app/service/order"
	"github.com/softmint/billing/internal/app/service/statistics"
	"github.com/softmint/billing/internal/models"
	"github.com/softmint/billing/pkg/response"
	"github.com/softmint/billing/pkg/types"

	"github.com/gin-gonic/gin"
)

type ListOrdersRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ListOrdersResponse struct {
	Items []*models.Order `json:"items"`
	Total int64           `json:"total"`
}

// @Summary      List Orders (Admin)
// @Description  Retrieves a paginated and filterable list of all orders.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body ListOrdersRequest true "List order request with filters, pagination, and sorting"
// @Success      200  {object}  handlers.RespListOrders
// @Router       /api/v1/admin/list_orders [post]
func ApiListOrdersAdmin(svc *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ListOrdersRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		items, total, err := svc.ScanOrders(c.Request.Context(), req.Filters, req.From, req.Size, req.SortBy, req.SortOrder)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(&ListOrdersResponse{Items: items, Total: total}))
	}
}

// @Summary      Get Revenue Statistics (Admin)
// @Description  Retrieves daily payment count, daily GMV and accumulated GMV series.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body statistics.RevenueStatisticRequest true "Statistic request parameters"
// @Success      200  {object}  handlers.RespRevenueStatistic
// @Router       /api/v1/admin/get_revenue_statistic [post]
func ApiGetRevenueStatistic(svc *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.RevenueStatisticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.GetRevenueStatistic(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminRoutes(r gin.IRouter, orders *ordersvc.Service, stats *statistics.Service) {
	r.POST("/list_orders", ApiListOrdersAdmin(orders))
	r.POST("/get_revenue_statistic", ApiGetRevenueStatistic(stats))
}
