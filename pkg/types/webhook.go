package types

import "time"

// WebhookEventType is the canonical event kind after provider payload
// normalization. Unknown values are treated like WebhookEventIgnored.
type WebhookEventType string

const (
	WebhookEventIgnored              WebhookEventType = "ignored"
	WebhookEventCheckoutCompleted    WebhookEventType = "checkout.completed"
	WebhookEventPaymentSucceeded     WebhookEventType = "payment.succeeded"
	WebhookEventPaymentFailed        WebhookEventType = "payment.failed"
	WebhookEventSubscriptionCreated  WebhookEventType = "subscription.created"
	WebhookEventSubscriptionUpdated  WebhookEventType = "subscription.updated"
	WebhookEventSubscriptionCanceled WebhookEventType = "subscription.canceled"
	WebhookEventRefundCreated        WebhookEventType = "refund.created"
)

// CycleType marks where a subscription payment sits in the billing cycle.
type CycleType string

const (
	CycleTypeCreate  CycleType = "create"
	CycleTypeRenewal CycleType = "renewal"
)

// PaymentInfo is the payment portion of a canonical event. ProviderPaymentID
// is the idempotency key for payment ingestion.
type PaymentInfo struct {
	ProviderPaymentID  string            `json:"provider_payment_id"`
	ProviderInvoiceID  string            `json:"provider_invoice_id,omitempty"`
	UserID             string            `json:"user_id,omitempty"`
	ProviderCustomerID string            `json:"provider_customer_id,omitempty"`
	CycleType          CycleType         `json:"cycle_type,omitempty"`
	Amount             int64             `json:"amount"`
	Currency           string            `json:"currency"`
	PlanID             string            `json:"plan_id,omitempty"`
	PriceID            string            `json:"price_id,omitempty"`
	Status             PaymentStatus     `json:"status"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

// SubscriptionInfo is the subscription portion of a canonical event.
// ProviderSubscriptionID is the idempotency key for subscription creation.
type SubscriptionInfo struct {
	ProviderSubscriptionID string             `json:"provider_subscription_id"`
	ProviderCustomerID     string             `json:"provider_customer_id,omitempty"`
	UserID                 string             `json:"user_id,omitempty"`
	PlanID                 string             `json:"plan_id,omitempty"`
	PriceID                string             `json:"price_id,omitempty"`
	Status                 SubscriptionStatus `json:"status"`
	Interval               PlanInterval       `json:"interval,omitempty"`
	Amount                 int64              `json:"amount,omitempty"`
	Currency               string             `json:"currency,omitempty"`
	CurrentPeriodStart     *time.Time         `json:"current_period_start,omitempty"`
	CurrentPeriodEnd       *time.Time         `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd      bool               `json:"cancel_at_period_end,omitempty"`
	CanceledAt             *time.Time         `json:"canceled_at,omitempty"`
	CancelReason           string             `json:"cancel_reason,omitempty"`
	TrialStart             *time.Time         `json:"trial_start,omitempty"`
	TrialEnd               *time.Time         `json:"trial_end,omitempty"`
}

// WebhookEvent is the canonical, provider-agnostic notification consumed by
// the dispatcher. Signature verification and payload translation happen
// upstream; by the time an event reaches this type it is trusted.
type WebhookEvent struct {
	Provider     PaymentProvider   `json:"provider"`
	Type         WebhookEventType  `json:"type"`
	Payment      *PaymentInfo      `json:"payment,omitempty"`
	Subscription *SubscriptionInfo `json:"subscription,omitempty"`
}
