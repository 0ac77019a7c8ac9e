package handlers

import (
	"time"

	creditsvc "github.com/softmint/billing/internal/app/service/credit"
	paymentsvc "github.com/softmint/billing/internal/app/service/payment"
	"github.com/softmint/billing/internal/app/service/statistics"
	"github.com/softmint/billing/pkg/response"
	"github.com/softmint/billing/pkg/types"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespOrder wraps a single order in the standard envelope.
type RespOrder struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    SwaggerOrder             `json:"data"`
}

// RespOrderList wraps a list of orders in the standard envelope.
type RespOrderList struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []SwaggerOrder           `json:"data"`
}

// RespListOrders wraps ListOrdersResponse in the standard envelope.
type RespListOrders struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    ListOrdersResponse       `json:"data"`
}

// RespSubscription wraps a subscription in the standard envelope.
type RespSubscription struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    SwaggerSubscription      `json:"data"`
}

// RespLifetimePurchase wraps the lifetime-purchase check result.
type RespLifetimePurchase struct {
	Code    response.APIResponseCode    `json:"code"`
	Message string                      `json:"message"`
	Data    paymentsvc.LifetimePurchase `json:"data"`
}

// RespUserCredits wraps the credit balance result.
type RespUserCredits struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    creditsvc.UserCredits    `json:"data"`
}

// RespRevenueStatistic wraps RevenueStatisticResponse in the standard envelope.
type RespRevenueStatistic struct {
	Code    response.APIResponseCode            `json:"code"`
	Message string                              `json:"message"`
	Data    statistics.RevenueStatisticResponse `json:"data"`
}

// SwaggerOrder is a simplified view of models.Order for documentation purposes.
type SwaggerOrder struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	OrderType   types.OrderType   `json:"order_type"`
	Status      types.OrderStatus `json:"status"`
	ProductID   string            `json:"product_id"`
	ProductName string            `json:"product_name"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	ExpireAt    *time.Time        `json:"expire_at"`
	PaidAt      *time.Time        `json:"paid_at"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// SwaggerSubscription is a simplified view of models.Subscription for documentation purposes.
type SwaggerSubscription struct {
	ID                     string                   `json:"id"`
	Provider               types.PaymentProvider    `json:"provider"`
	ProviderSubscriptionID string                   `json:"provider_subscription_id"`
	UserID                 string                   `json:"user_id"`
	PlanID                 string                   `json:"plan_id"`
	PriceID                string                   `json:"price_id"`
	Status                 types.SubscriptionStatus `json:"status"`
	Interval               types.PlanInterval       `json:"interval"`
	Amount                 int64                    `json:"amount"`
	Currency               string                   `json:"currency"`
	CurrentPeriodStart     *time.Time               `json:"current_period_start"`
	CurrentPeriodEnd       *time.Time               `json:"current_period_end"`
	CancelAtPeriodEnd      bool                     `json:"cancel_at_period_end"`
	CanceledAt             *time.Time               `json:"canceled_at"`
	CreatedAt              time.Time                `json:"created_at"`
}
