package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/softmint/billing/internal/models"
	"github.com/softmint/billing/pkg/types"

	"gorm.io/gorm"
)

// SubscriptionStore is pure data access for subscription rows.
type SubscriptionStore struct{}

func NewSubscriptionStore() *SubscriptionStore { return &SubscriptionStore{} }

// Insert writes a subscription row. gorm.ErrDuplicatedKey signals a
// concurrent delivery already created the same provider subscription.
func (s *SubscriptionStore) Insert(ctx context.Context, db *gorm.DB, sub *models.Subscription) error {
	return db.WithContext(ctx).Create(sub).Error
}

// FindByID returns (nil, nil) when the subscription does not exist.
func (s *SubscriptionStore) FindByID(ctx context.Context, db *gorm.DB, id string) (*models.Subscription, error) {
	var sub models.Subscription
	err := db.WithContext(ctx).Where("id = ?", id).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return &sub, nil
}

// FindByProviderSubscriptionID returns (nil, nil) when no row matches.
func (s *SubscriptionStore) FindByProviderSubscriptionID(ctx context.Context, db *gorm.DB, providerSubscriptionID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := db.WithContext(ctx).
		Where("provider_subscription_id = ?", providerSubscriptionID).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return &sub, nil
}

// FindActiveByUserID returns the user's newest usable (active or trialing)
// subscription, or (nil, nil).
func (s *SubscriptionStore) FindActiveByUserID(ctx context.Context, db *gorm.DB, userID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID,
			[]types.SubscriptionStatus{types.SubscriptionStatusActive, types.SubscriptionStatusTrialing}).
		Order("created_at desc").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load active subscription: %w", err)
	}
	return &sub, nil
}

// UpdateFields applies targeted column updates to one subscription row.
func (s *SubscriptionStore) UpdateFields(ctx context.Context, db *gorm.DB, id string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()
	err := db.WithContext(ctx).Model(&models.Subscription{}).Where("id = ?", id).Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	return nil
}
