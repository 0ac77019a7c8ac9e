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

// PaymentStore is pure data access for payment rows.
type PaymentStore struct{}

func NewPaymentStore() *PaymentStore { return &PaymentStore{} }

// Insert writes a payment row. A gorm.ErrDuplicatedKey result means another
// delivery of the same provider payment won the race; callers treat it as
// already processed.
func (s *PaymentStore) Insert(ctx context.Context, db *gorm.DB, payment *models.Payment) error {
	return db.WithContext(ctx).Create(payment).Error
}

// FindByProviderPaymentID returns (nil, nil) when no payment is recorded for
// the provider payment id.
func (s *PaymentStore) FindByProviderPaymentID(ctx context.Context, db *gorm.DB, provider types.PaymentProvider, providerPaymentID string) (*models.Payment, error) {
	var payment models.Payment
	err := db.WithContext(ctx).
		Where("provider = ? AND provider_payment_id = ?", provider, providerPaymentID).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return &payment, nil
}

// MarkRefunded stamps refund fields on an existing payment row.
func (s *PaymentStore) MarkRefunded(ctx context.Context, db *gorm.DB, id string, refundedAt time.Time, refundAmount int64) error {
	err := db.WithContext(ctx).Model(&models.Payment{}).Where("id = ?", id).Updates(map[string]any{
		"status":        types.PaymentStatusRefunded,
		"refunded_at":   refundedAt,
		"refund_amount": refundAmount,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to mark payment refunded: %w", err)
	}
	return nil
}

// FindSucceededOneTime lists a user's succeeded one-time payments, newest
// first. Used by the lifetime-purchase check.
func (s *PaymentStore) FindSucceededOneTime(ctx context.Context, db *gorm.DB, userID string) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := db.WithContext(ctx).
		Where("user_id = ? AND payment_type = ? AND status = ?",
			userID, types.PaymentTypeOneTime, types.PaymentStatusSucceeded).
		Order("created_at desc").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list one-time payments: %w", err)
	}
	return payments, nil
}
