package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/softmint/billing/internal/app/service/webhook"
	"github.com/softmint/billing/internal/app/service/webhooklog"
	"github.com/softmint/billing/internal/models"
	"github.com/softmint/billing/pkg/logctx"
	"github.com/softmint/billing/pkg/response"
	"github.com/softmint/billing/pkg/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// @Summary      Payment Webhook
// @Description  Accepts a canonical webhook event for the named provider. The payload is expected to be verified and normalized upstream.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Param        provider path string true "Payment provider (stripe, creem)"
// @Param        payload body types.WebhookEvent true "Canonical webhook event"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/payment/webhook/{provider} [post]
func ApiPaymentWebhook(svc *webhook.Service, logs *webhooklog.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := types.PaymentProvider(c.Param("provider"))

		var event types.WebhookEvent
		if err := c.ShouldBindJSON(&event); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		event.Provider = provider

		payload, _ := json.Marshal(&event)
		wlog := &models.WebhookLog{
			Provider:  string(provider),
			EventType: string(event.Type),
			TraceID:   c.GetString("traceID"),
			Payload:   payload,
			Status:    models.WebhookLogStatusReceived,
		}

		logctx.FromCtx(c, log).Infow("webhook_received", "provider", provider, "type", event.Type)

		if err := svc.Process(c.Request.Context(), &event); err != nil {
			logctx.FromCtx(c, log).Errorw("webhook_handle_error", "provider", provider, "type", event.Type, "error", err.Error())
			wlog.Status = models.WebhookLogStatusHandleFailed
			result := datatypes.JSON([]byte(`{"error":` + jsonString(err.Error()) + `}`))
			wlog.Result = &result
			logs.Save(c, wlog)
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}

		wlog.Status = models.WebhookLogStatusHandled
		logs.Save(c, wlog)
		logctx.FromCtx(c, log).Infow("webhook_handled", "provider", provider, "type", event.Type)
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func RegisterWebhookRoutes(r gin.IRouter, svc *webhook.Service, logs *webhooklog.Service, log *zap.SugaredLogger) {
	r.POST("/webhook/:provider", ApiPaymentWebhook(svc, logs, log))
}
