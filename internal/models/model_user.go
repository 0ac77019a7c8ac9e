package models

import (
	"time"

	"gorm.io/datatypes"
)

// User is the billing-facing slice of the user record: the identity mapping
// from payment provider to provider-side customer id. Account data proper
// lives with the auth system.
type User struct {
	ID string `gorm:"column:id;type:varchar(64);primary_key" json:"id"`
	// ProviderCustomers maps provider name to providerCustomerId, at most
	// one customer id per provider.
	ProviderCustomers datatypes.JSONMap `gorm:"column:provider_customers;type:jsonb;default:'{}'" json:"provider_customers"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "billing_user"
}

// ProviderCustomerID returns the stored customer id for provider, if any.
func (u *User) ProviderCustomerID(provider string) string {
	if u == nil || u.ProviderCustomers == nil {
		return ""
	}
	if v, ok := u.ProviderCustomers[provider].(string); ok {
		return v
	}
	return ""
}
