package webhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/softmint/billing/internal/app/service/credit"
	"github.com/softmint/billing/internal/models"
	"github.com/softmint/billing/pkg/logctx"
	"github.com/softmint/billing/pkg/tool"
	"github.com/softmint/billing/pkg/types"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// handlePaymentSucceeded records a provider payment and its downstream
// effects in one transaction. The ordering inside the transaction matters:
// the idempotency check precedes every write, and credit issuance runs last
// so its failure rolls back the payment row too.
func (s *Service) handlePaymentSucceeded(ctx context.Context, event *types.WebhookEvent) error {
	info := event.Payment
	if info == nil {
		return fmt.Errorf("payment.succeeded event has no payment payload")
	}
	if info.ProviderPaymentID == "" {
		return fmt.Errorf("payment.succeeded event has no provider payment id")
	}
	log := logctx.FromCtx(ctx, s.log)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if info.UserID != "" && info.ProviderCustomerID != "" {
			if err := s.users.UpsertProviderCustomer(ctx, tx, info.UserID, event.Provider, info.ProviderCustomerID); err != nil {
				return err
			}
		}

		existing, err := s.payments.FindByProviderPaymentID(ctx, tx, event.Provider, info.ProviderPaymentID)
		if err != nil {
			return err
		}
		if existing != nil {
			log.Infof("payment %s/%s already recorded, skipping", event.Provider, info.ProviderPaymentID)
			return errAlreadyProcessed
		}

		paymentType := paymentTypeFromCycle(info.CycleType)

		var subscriptionID *string
		var periodEnd *time.Time
		if event.Subscription != nil && event.Subscription.ProviderSubscriptionID != "" {
			sub, err := s.subscriptions.FindByProviderSubscriptionID(ctx, tx, event.Subscription.ProviderSubscriptionID)
			if err != nil {
				return err
			}
			if sub == nil {
				// out-of-order delivery: the creation event has not
				// arrived yet, tolerated rather than fatal
				log.Warnf("payment references unknown subscription %s, skipping subscription update", event.Subscription.ProviderSubscriptionID)
			} else {
				subscriptionID = &sub.ID
				if paymentType == types.PaymentTypeSubscriptionRenewal {
					if err := s.subService.AdvancePeriod(ctx, tx, sub, event.Subscription); err != nil {
						return err
					}
				}
				if event.Subscription.CurrentPeriodEnd != nil {
					periodEnd = event.Subscription.CurrentPeriodEnd
				} else {
					periodEnd = sub.CurrentPeriodEnd
				}
			}
		}

		payment := &models.Payment{
			ID:                tool.GenerateUUIDV7(),
			Provider:          event.Provider,
			ProviderPaymentID: info.ProviderPaymentID,
			ProviderInvoiceID: info.ProviderInvoiceID,
			UserID:            info.UserID,
			SubscriptionID:    subscriptionID,
			PaymentType:       paymentType,
			Amount:            info.Amount,
			Currency:          info.Currency,
			Status:            types.PaymentStatusSucceeded,
			PlanID:            info.PlanID,
			PriceID:           info.PriceID,
			Metadata:          metadataJSON(info.Metadata),
		}
		if err := s.payments.Insert(ctx, tx, payment); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// lost the race to a concurrent delivery of the same event
				log.Infof("payment %s/%s inserted concurrently, skipping", event.Provider, info.ProviderPaymentID)
				return errAlreadyProcessed
			}
			return fmt.Errorf("failed to insert payment: %w", err)
		}

		if info.PlanID != "" && info.UserID != "" {
			err := s.issuer.Issue(ctx, tx, &credit.IssueRequest{
				UserID:      info.UserID,
				PlanID:      info.PlanID,
				PaymentID:   payment.ID,
				PaymentType: paymentType,
				PeriodEnd:   periodEnd,
			})
			if err != nil {
				return fmt.Errorf("failed to issue credits: %w", err)
			}
		}
		return nil
	})
	if errors.Is(err, errAlreadyProcessed) {
		return nil
	}
	return err
}

// handleRefundCreated stamps refund fields on the recorded payment. A
// missing payment is logged, not fatal. Credit clawback on refund is a
// deferred concern.
func (s *Service) handleRefundCreated(ctx context.Context, event *types.WebhookEvent) error {
	info := event.Payment
	if info == nil || info.ProviderPaymentID == "" {
		return fmt.Errorf("refund.created event has no provider payment id")
	}
	log := logctx.FromCtx(ctx, s.log)

	payment, err := s.payments.FindByProviderPaymentID(ctx, s.db, event.Provider, info.ProviderPaymentID)
	if err != nil {
		return err
	}
	if payment == nil {
		log.Warnf("refund for unknown payment %s/%s, skipping", event.Provider, info.ProviderPaymentID)
		return nil
	}

	refundAmount := info.Amount
	if refundAmount <= 0 {
		refundAmount = payment.Amount
	}
	return s.payments.MarkRefunded(ctx, s.db, payment.ID, time.Now(), refundAmount)
}

func metadataJSON(m map[string]string) datatypes.JSONMap {
	out := datatypes.JSONMap{}
	for k, v := range m {
		out[k] = v
	}
	return out
}
