package payment

import (
	"context"

	"github.com/softmint/billing/internal/app/store"
	"github.com/softmint/billing/internal/models"
	"github.com/softmint/billing/pkg/config"
	"github.com/softmint/billing/pkg/types"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service serves read paths over recorded payments.
type Service struct {
	cfg      *config.Config
	db       *gorm.DB
	log      *zap.SugaredLogger
	payments *store.PaymentStore
}

func New(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger, payments *store.PaymentStore) *Service {
	return &Service{cfg: cfg, db: db, log: log, payments: payments}
}

type LifetimePurchase struct {
	ExistsLifetimePayment bool   `json:"exists_lifetime_payment"`
	LifetimePriceID       string `json:"lifetime_price_id,omitempty"`
}

// CheckUserLifetimePurchase reports whether the user has a succeeded
// one-time payment for a lifetime plan, and which price it was bought at.
func (s *Service) CheckUserLifetimePurchase(ctx context.Context, userID string) (*LifetimePurchase, error) {
	payments, err := s.payments.FindSucceededOneTime(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	lifetimePlanIDs := s.cfg.LifetimePlanIDs()
	hit, found := lo.Find(payments, func(p *models.Payment) bool {
		return lo.Contains(lifetimePlanIDs, p.PlanID)
	})
	if !found {
		return &LifetimePurchase{}, nil
	}
	return &LifetimePurchase{ExistsLifetimePayment: true, LifetimePriceID: hit.PriceID}, nil
}

// GetByProviderPaymentID is a thin lookup used by support tooling.
func (s *Service) GetByProviderPaymentID(ctx context.Context, provider types.PaymentProvider, providerPaymentID string) (*models.Payment, error) {
	return s.payments.FindByProviderPaymentID(ctx, s.db, provider, providerPaymentID)
}
