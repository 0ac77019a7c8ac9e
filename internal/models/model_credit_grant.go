package models

import "time"

// CreditGrant is one issued credit grant. The unique index on payment_id
// guarantees at most one grant per payment, including under webhook
// redelivery.
type CreditGrant struct {
	ID        string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID    string `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	PaymentID string `gorm:"column:payment_id;type:uuid;not null;uniqueIndex" json:"payment_id"`
	PlanID    string `gorm:"column:plan_id;type:varchar(64);not null" json:"plan_id"`

	Credits int64 `gorm:"column:credits;type:bigint;not null" json:"credits"`
	// ExpireAt is nil for grants that never expire (lifetime purchases).
	ExpireAt *time.Time `gorm:"column:expire_at;default:null" json:"expire_at"`

	CreatedAt time.Time `json:"created_at"`
}

func (CreditGrant) TableName() string {
	return "credit_grant"
}

// Active reports whether the grant still counts toward the balance at now.
func (g *CreditGrant) Active(now time.Time) bool {
	if g == nil {
		return false
	}
	return g.ExpireAt == nil || g.ExpireAt.After(now)
}
