package handlers

import (
	"errors"
	"net/http"

	creditsvc "github.com/softmint/billing/internal/app/service/credit"
	paymentsvc "github.com/softmint/billing/internal/app/service/payment"
	subsvc "github.com/softmint/billing/internal/app/service/subscription"
	"github.com/softmint/billing/pkg/response"

	"github.com/gin-gonic/gin"
)

// @Summary      Get Active Subscription
// @Description  Returns the caller's newest usable subscription, or null data when there is none.
// @Tags         Subscription
// @Produce      json
// @Param        X-User-ID header string true "User ID"
// @Success      200  {object}  handlers.RespSubscription
// @Router       /api/v1/payment/subscription [get]
func ApiGetSubscription(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := userIDFromHeader(c)
		if userID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing user id"))
			return
		}
		sub, err := svc.GetUserActiveSubscription(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

type CancelSubscriptionRequest struct {
	SubscriptionID string `json:"subscription_id" binding:"required"`
	Reason         string `json:"reason"`
}

// @Summary      Cancel Subscription
// @Description  Schedules cancellation at period end. The provider is called first; local state changes only after it succeeds.
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        X-User-ID header string true "User ID"
// @Param        request body CancelSubscriptionRequest true "Cancel subscription request"
// @Success      200  {object}  handlers.RespSubscription
// @Router       /api/v1/payment/subscription/cancel [post]
func ApiCancelSubscription(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := userIDFromHeader(c)
		if userID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing user id"))
			return
		}
		var req CancelSubscriptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		sub, err := svc.Cancel(c.Request.Context(), userID, req.SubscriptionID, req.Reason)
		if err != nil {
			switch {
			case errors.Is(err, subsvc.ErrSubscriptionNotFound), errors.Is(err, subsvc.ErrNotOwner):
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
			case errors.Is(err, subsvc.ErrNotCancelable), errors.Is(err, subsvc.ErrAlreadyScheduled), errors.Is(err, subsvc.ErrMissingProviderID):
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			default:
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

// @Summary      Check Lifetime Purchase
// @Description  Reports whether the caller has a succeeded one-time payment for a lifetime plan.
// @Tags         Payment
// @Produce      json
// @Param        X-User-ID header string true "User ID"
// @Success      200  {object}  handlers.RespLifetimePurchase
// @Router       /api/v1/payment/lifetime [get]
func ApiCheckLifetimePurchase(svc *paymentsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := userIDFromHeader(c)
		if userID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing user id"))
			return
		}
		result, err := svc.CheckUserLifetimePurchase(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(result))
	}
}

// @Summary      Get User Credits
// @Description  Returns the caller's unexpired credit balance plus any daily bonus pool and its next refresh time.
// @Tags         Credit
// @Produce      json
// @Param        X-User-ID header string true "User ID"
// @Success      200  {object}  handlers.RespUserCredits
// @Router       /api/v1/payment/credits [get]
func ApiGetUserCredits(svc *creditsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := userIDFromHeader(c)
		if userID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing user id"))
			return
		}
		credits, err := svc.GetUserCredits(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(credits))
	}
}

func RegisterPaymentRoutes(r gin.IRouter, sub *subsvc.Service, pay *paymentsvc.Service, credit *creditsvc.Service) {
	r.GET("/subscription", ApiGetSubscription(sub))
	r.POST("/subscription/cancel", ApiCancelSubscription(sub))
	r.GET("/lifetime", ApiCheckLifetimePurchase(pay))
	r.GET("/credits", ApiGetUserCredits(credit))
}
