package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/softmint/billing/internal/app/store"
	"github.com/softmint/billing/internal/models"
	"github.com/softmint/billing/internal/platform/provider"
	"github.com/softmint/billing/pkg/logctx"
	"github.com/softmint/billing/pkg/types"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service manages recurring billing state. Webhook-driven mutations go
// through ApplyUpdate/ApplyCancel; Cancel is the user-initiated path and is
// the only one that calls back out to the payment provider.
type Service struct {
	db            *gorm.DB
	log           *zap.SugaredLogger
	subscriptions *store.SubscriptionStore
	providers     *provider.Registry
}

func New(db *gorm.DB, log *zap.SugaredLogger, subscriptions *store.SubscriptionStore, providers *provider.Registry) *Service {
	return &Service{db: db, log: log, subscriptions: subscriptions, providers: providers}
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.Subscription, error) {
	return s.subscriptions.FindByID(ctx, s.db, id)
}

func (s *Service) GetByProviderSubscriptionID(ctx context.Context, providerSubscriptionID string) (*models.Subscription, error) {
	return s.subscriptions.FindByProviderSubscriptionID(ctx, s.db, providerSubscriptionID)
}

// GetUserActiveSubscription returns the user's newest usable subscription,
// or nil when the user has none.
func (s *Service) GetUserActiveSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	return s.subscriptions.FindActiveByUserID(ctx, s.db, userID)
}

// ApplyUpdate applies field-level updates from a subscription.updated event
// inside tx. Only fields present in the event payload are written.
func (s *Service) ApplyUpdate(ctx context.Context, tx *gorm.DB, sub *models.Subscription, info *types.SubscriptionInfo) error {
	updates := map[string]any{}
	if info.Status != "" {
		updates["status"] = info.Status
	}
	if info.PlanID != "" {
		updates["plan_id"] = info.PlanID
	}
	if info.PriceID != "" {
		updates["price_id"] = info.PriceID
	}
	if info.Interval != "" {
		updates["interval"] = info.Interval
	}
	if info.Amount > 0 {
		updates["amount"] = info.Amount
	}
	if info.Currency != "" {
		updates["currency"] = info.Currency
	}
	if info.CurrentPeriodStart != nil {
		updates["current_period_start"] = *info.CurrentPeriodStart
	}
	if info.CurrentPeriodEnd != nil {
		updates["current_period_end"] = *info.CurrentPeriodEnd
	}
	updates["cancel_at_period_end"] = info.CancelAtPeriodEnd
	if info.CanceledAt != nil {
		updates["canceled_at"] = *info.CanceledAt
	}
	if info.CancelReason != "" {
		updates["cancel_reason"] = info.CancelReason
	}
	if info.TrialStart != nil {
		updates["trial_start"] = *info.TrialStart
	}
	if info.TrialEnd != nil {
		updates["trial_end"] = *info.TrialEnd
	}
	return s.subscriptions.UpdateFields(ctx, tx, sub.ID, updates)
}

// AdvancePeriod moves the billing period forward on a renewal payment.
// Period boundaries never move backward.
func (s *Service) AdvancePeriod(ctx context.Context, tx *gorm.DB, sub *models.Subscription, info *types.SubscriptionInfo) error {
	updates := map[string]any{"status": types.SubscriptionStatusActive}
	if info.Status != "" {
		updates["status"] = info.Status
	}
	if info.CurrentPeriodStart != nil &&
		(sub.CurrentPeriodStart == nil || info.CurrentPeriodStart.After(*sub.CurrentPeriodStart)) {
		updates["current_period_start"] = *info.CurrentPeriodStart
	}
	if info.CurrentPeriodEnd != nil &&
		(sub.CurrentPeriodEnd == nil || info.CurrentPeriodEnd.After(*sub.CurrentPeriodEnd)) {
		updates["current_period_end"] = *info.CurrentPeriodEnd
	}
	return s.subscriptions.UpdateFields(ctx, tx, sub.ID, updates)
}

// ApplyCancel applies a provider-side cancellation event inside tx.
func (s *Service) ApplyCancel(ctx context.Context, tx *gorm.DB, sub *models.Subscription, info *types.SubscriptionInfo) error {
	canceledAt := time.Now()
	if info.CanceledAt != nil {
		canceledAt = *info.CanceledAt
	}
	updates := map[string]any{
		"status":               types.SubscriptionStatusCanceled,
		"cancel_at_period_end": true,
		"canceled_at":          canceledAt,
	}
	if info.CancelReason != "" {
		updates["cancel_reason"] = info.CancelReason
	}
	return s.subscriptions.UpdateFields(ctx, tx, sub.ID, updates)
}

// Cancel schedules a user-initiated cancellation at period end. The provider
// is told first; local state is stamped only after that call succeeds, so the
// two sides never disagree about a scheduled cancellation.
func (s *Service) Cancel(ctx context.Context, userID, subscriptionID, reason string) (*models.Subscription, error) {
	sub, err := s.subscriptions.FindByID(ctx, s.db, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrSubscriptionNotFound
	}
	if sub.UserID != userID {
		return nil, ErrNotOwner
	}
	if !sub.Status.Usable() {
		return nil, fmt.Errorf("%w: status is %s", ErrNotCancelable, sub.Status)
	}
	if sub.CancelAtPeriodEnd {
		return nil, ErrAlreadyScheduled
	}
	if sub.ProviderSubscriptionID == "" {
		return nil, ErrMissingProviderID
	}

	adapter, err := s.providers.Get(sub.Provider)
	if err != nil {
		return nil, err
	}
	if err := adapter.CancelSubscription(ctx, sub.ProviderSubscriptionID); err != nil {
		return nil, fmt.Errorf("provider cancel failed: %w", err)
	}

	now := time.Now()
	updates := map[string]any{
		"cancel_at_period_end": true,
		"canceled_at":          now,
	}
	if reason != "" {
		updates["cancel_reason"] = reason
	}
	if err := s.subscriptions.UpdateFields(ctx, s.db, sub.ID, updates); err != nil {
		return nil, err
	}

	logctx.FromCtx(ctx, s.log).Infof("scheduled cancellation for subscription %s (user %s) at period end", sub.ID, userID)
	return s.subscriptions.FindByID(ctx, s.db, sub.ID)
}
