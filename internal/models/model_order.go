package models

import (
	"time"

	"github.com/softmint/billing/pkg/types"

	"gorm.io/datatypes"
)

// Order is a purchase intent. It is created at checkout initiation and only
// mutated by the order service; rows are never physically deleted.
type Order struct {
	ID        string            `gorm:"column:id;type:varchar(64);primary_key" json:"id"`
	UserID    string            `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	OrderType types.OrderType   `gorm:"column:order_type;type:varchar(32);not null" json:"order_type"`
	Status    types.OrderStatus `gorm:"column:status;type:varchar(32);not null;default:'pending';index" json:"status"`

	ProductID   string `gorm:"column:product_id;type:varchar(128)" json:"product_id"`
	ProductName string `gorm:"column:product_name;type:varchar(256)" json:"product_name"`

	// Amount in minor currency units.
	Amount   int64  `gorm:"column:amount;type:bigint;not null" json:"amount"`
	Currency string `gorm:"column:currency;type:varchar(8);not null;default:'USD'" json:"currency"`

	ExpireAt *time.Time `gorm:"column:expire_at;default:null" json:"expire_at"`
	// PaidAt is set if and only if Status is paid.
	PaidAt *time.Time `gorm:"column:paid_at;default:null" json:"paid_at"`

	Metadata datatypes.JSONMap `gorm:"column:metadata;type:jsonb;default:'{}'" json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Order) TableName() string {
	return "order"
}

// Expired reports whether a pending order's reuse window has passed at now.
func (o *Order) Expired(now time.Time) bool {
	if o == nil {
		return true
	}
	if o.Status != types.OrderStatusPending {
		return false
	}
	if o.ExpireAt == nil {
		return false
	}
	return o.ExpireAt.Before(now)
}
