package models

import (
	"time"

	"github.com/softmint/billing/pkg/types"
)

// Subscription stores recurring billing state, one row per provider
// subscription. Rows are retained after cancellation for audit.
type Subscription struct {
	ID                     string                `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Provider               types.PaymentProvider `gorm:"column:provider;type:varchar(32);not null" json:"provider"`
	ProviderSubscriptionID string                `gorm:"column:provider_subscription_id;type:varchar(128);not null;uniqueIndex" json:"provider_subscription_id"`
	ProviderCustomerID     string                `gorm:"column:provider_customer_id;type:varchar(128)" json:"provider_customer_id"`
	UserID                 string                `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`

	PlanID  string `gorm:"column:plan_id;type:varchar(64);not null" json:"plan_id"`
	PriceID string `gorm:"column:price_id;type:varchar(128);not null" json:"price_id"`

	Status   types.SubscriptionStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	Interval types.PlanInterval       `gorm:"column:interval;type:varchar(16)" json:"interval"`
	Amount   int64                    `gorm:"column:amount;type:bigint" json:"amount"`
	Currency string                   `gorm:"column:currency;type:varchar(8)" json:"currency"`

	// Period boundaries only move forward (renewals advance them).
	CurrentPeriodStart *time.Time `gorm:"column:current_period_start;default:null" json:"current_period_start"`
	CurrentPeriodEnd   *time.Time `gorm:"column:current_period_end;default:null" json:"current_period_end"`

	// CancelAtPeriodEnd=true keeps the subscription usable until
	// CurrentPeriodEnd.
	CancelAtPeriodEnd bool       `gorm:"column:cancel_at_period_end;not null;default:false" json:"cancel_at_period_end"`
	CanceledAt        *time.Time `gorm:"column:canceled_at;default:null" json:"canceled_at"`
	CancelReason      string     `gorm:"column:cancel_reason;type:varchar(256)" json:"cancel_reason"`

	TrialStart *time.Time `gorm:"column:trial_start;default:null" json:"trial_start"`
	TrialEnd   *time.Time `gorm:"column:trial_end;default:null" json:"trial_end"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscription"
}

// Cancelable reports whether a user-initiated cancellation may be scheduled.
func (s *Subscription) Cancelable() bool {
	return s != nil && s.Status.Usable() && !s.CancelAtPeriodEnd
}
