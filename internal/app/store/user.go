package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/softmint/billing/internal/models"
	"github.com/softmint/billing/pkg/types"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserStore is data access for the billing-facing user record, which holds
// the provider → providerCustomerId identity map.
type UserStore struct{}

func NewUserStore() *UserStore { return &UserStore{} }

// FindByID returns (nil, nil) when no billing user row exists.
func (s *UserStore) FindByID(ctx context.Context, db *gorm.DB, userID string) (*models.User, error) {
	var user models.User
	err := db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// UpsertProviderCustomer stores the provider customer id for a user. The
// write is idempotent: an unchanged mapping is a no-op, a missing billing
// user row is created.
func (s *UserStore) UpsertProviderCustomer(ctx context.Context, db *gorm.DB, userID string, provider types.PaymentProvider, providerCustomerID string) error {
	user, err := s.FindByID(ctx, db, userID)
	if err != nil {
		return err
	}

	if user == nil {
		user = &models.User{
			ID:                userID,
			ProviderCustomers: datatypes.JSONMap{string(provider): providerCustomerID},
		}
		if err := db.WithContext(ctx).Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// concurrent creation, retry as update
				return s.UpsertProviderCustomer(ctx, db, userID, provider, providerCustomerID)
			}
			return fmt.Errorf("failed to create user identity: %w", err)
		}
		return nil
	}

	if user.ProviderCustomerID(string(provider)) == providerCustomerID {
		return nil
	}

	customers := user.ProviderCustomers
	if customers == nil {
		customers = datatypes.JSONMap{}
	}
	customers[string(provider)] = providerCustomerID
	err = db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Update("provider_customers", customers).Error
	if err != nil {
		return fmt.Errorf("failed to update user identity: %w", err)
	}
	return nil
}
