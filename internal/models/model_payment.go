package models

import (
	"time"

	"github.com/softmint/billing/pkg/types"

	"gorm.io/datatypes"
)

// Payment is an immutable record of a provider-reported money movement.
// The unique index on (provider, provider_payment_id) is the idempotency
// backstop: a second insert for the same provider payment fails with a
// duplicated-key error and is treated as already processed.
type Payment struct {
	ID                string                `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Provider          types.PaymentProvider `gorm:"column:provider;type:varchar(32);not null;uniqueIndex:unique_provider_payment_id,priority:1" json:"provider"`
	ProviderPaymentID string                `gorm:"column:provider_payment_id;type:varchar(128);not null;uniqueIndex:unique_provider_payment_id,priority:2" json:"provider_payment_id"`
	ProviderInvoiceID string                `gorm:"column:provider_invoice_id;type:varchar(128)" json:"provider_invoice_id"`
	UserID            string                `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	// SubscriptionID references the internal subscription row for
	// subscription_create/subscription_renewal payments.
	SubscriptionID *string           `gorm:"column:subscription_id;type:uuid;default:null" json:"subscription_id"`
	PaymentType    types.PaymentType `gorm:"column:payment_type;type:varchar(32);not null" json:"payment_type"`

	Amount   int64               `gorm:"column:amount;type:bigint;not null" json:"amount"`
	Currency string              `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	Status   types.PaymentStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`

	PlanID  string `gorm:"column:plan_id;type:varchar(64)" json:"plan_id"`
	PriceID string `gorm:"column:price_id;type:varchar(128)" json:"price_id"`

	RefundedAt   *time.Time `gorm:"column:refunded_at;default:null" json:"refunded_at"`
	RefundAmount int64      `gorm:"column:refund_amount;type:bigint;default:0" json:"refund_amount"`

	Metadata datatypes.JSONMap `gorm:"column:metadata;type:jsonb;default:'{}'" json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
}

func (Payment) TableName() string {
	return "payment"
}
