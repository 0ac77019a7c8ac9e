package webhook

import (
	"context"
	"errors"
	"fmt"

	"github.com/softmint/billing/internal/models"
	"github.com/softmint/billing/pkg/logctx"
	"github.com/softmint/billing/pkg/tool"
	"github.com/softmint/billing/pkg/types"

	"gorm.io/gorm"
)

// handleSubscriptionCreated inserts the subscription row once per provider
// subscription id. Redeliveries and concurrent deliveries both land on the
// unique index and become no-ops.
func (s *Service) handleSubscriptionCreated(ctx context.Context, event *types.WebhookEvent) error {
	info := event.Subscription
	if info == nil || info.ProviderSubscriptionID == "" {
		return fmt.Errorf("subscription.created event has no provider subscription id")
	}
	log := logctx.FromCtx(ctx, s.log)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.subscriptions.FindByProviderSubscriptionID(ctx, tx, info.ProviderSubscriptionID)
		if err != nil {
			return err
		}
		if existing != nil {
			log.Infof("subscription %s already recorded, skipping", info.ProviderSubscriptionID)
			return errAlreadyProcessed
		}

		if info.UserID != "" && info.ProviderCustomerID != "" {
			if err := s.users.UpsertProviderCustomer(ctx, tx, info.UserID, event.Provider, info.ProviderCustomerID); err != nil {
				return err
			}
		}

		status := info.Status
		if status == "" {
			status = types.SubscriptionStatusActive
		}
		sub := &models.Subscription{
			ID:                     tool.GenerateUUIDV7(),
			Provider:               event.Provider,
			ProviderSubscriptionID: info.ProviderSubscriptionID,
			ProviderCustomerID:     info.ProviderCustomerID,
			UserID:                 info.UserID,
			PlanID:                 info.PlanID,
			PriceID:                info.PriceID,
			Status:                 status,
			Interval:               info.Interval,
			Amount:                 info.Amount,
			Currency:               info.Currency,
			CurrentPeriodStart:     info.CurrentPeriodStart,
			CurrentPeriodEnd:       info.CurrentPeriodEnd,
			CancelAtPeriodEnd:      info.CancelAtPeriodEnd,
			TrialStart:             info.TrialStart,
			TrialEnd:               info.TrialEnd,
		}
		if err := s.subscriptions.Insert(ctx, tx, sub); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				log.Infof("subscription %s inserted concurrently, skipping", info.ProviderSubscriptionID)
				return errAlreadyProcessed
			}
			return fmt.Errorf("failed to insert subscription: %w", err)
		}
		return nil
	})
	if errors.Is(err, errAlreadyProcessed) {
		return nil
	}
	return err
}

// handleSubscriptionUpdated applies field-level updates from the provider.
// A missing subscription is logged, not fatal.
func (s *Service) handleSubscriptionUpdated(ctx context.Context, event *types.WebhookEvent) error {
	info := event.Subscription
	if info == nil || info.ProviderSubscriptionID == "" {
		return fmt.Errorf("subscription.updated event has no provider subscription id")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := s.subscriptions.FindByProviderSubscriptionID(ctx, tx, info.ProviderSubscriptionID)
		if err != nil {
			return err
		}
		if sub == nil {
			logctx.FromCtx(ctx, s.log).Warnf("update for unknown subscription %s, skipping", info.ProviderSubscriptionID)
			return nil
		}
		return s.subService.ApplyUpdate(ctx, tx, sub, info)
	})
}

// handleSubscriptionCanceled forces the canceled state as reported by the
// provider.
func (s *Service) handleSubscriptionCanceled(ctx context.Context, event *types.WebhookEvent) error {
	info := event.Subscription
	if info == nil || info.ProviderSubscriptionID == "" {
		return fmt.Errorf("subscription.canceled event has no provider subscription id")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := s.subscriptions.FindByProviderSubscriptionID(ctx, tx, info.ProviderSubscriptionID)
		if err != nil {
			return err
		}
		if sub == nil {
			logctx.FromCtx(ctx, s.log).Warnf("cancellation for unknown subscription %s, skipping", info.ProviderSubscriptionID)
			return nil
		}
		return s.subService.ApplyCancel(ctx, tx, sub, info)
	})
}
