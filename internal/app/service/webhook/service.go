package webhook

import (
	"context"
	"errors"

	"github.com/softmint/billing/internal/app/service/credit"
	"github.com/softmint/billing/internal/app/service/subscription"
	"github.com/softmint/billing/internal/app/store"
	"github.com/softmint/billing/pkg/config"
	"github.com/softmint/billing/pkg/logctx"
	"github.com/softmint/billing/pkg/types"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreditIssuer is the credit engine as seen from the dispatcher. The
// concrete implementation is credit.Service.
type CreditIssuer interface {
	Issue(ctx context.Context, tx *gorm.DB, req *credit.IssueRequest) error
}

// errAlreadyProcessed aborts the surrounding transaction without surfacing
// an error to the caller: the event's effects are already committed.
var errAlreadyProcessed = errors.New("event already processed")

// Service is the webhook event dispatcher. Each canonical event is applied
// as one atomic unit of work: every read and write for the event happens in
// a single transaction, committed only if every step succeeds.
type Service struct {
	cfg           *config.Config
	db            *gorm.DB
	log           *zap.SugaredLogger
	payments      *store.PaymentStore
	subscriptions *store.SubscriptionStore
	users         *store.UserStore
	subService    *subscription.Service
	issuer        CreditIssuer
}

func New(
	cfg *config.Config,
	db *gorm.DB,
	log *zap.SugaredLogger,
	payments *store.PaymentStore,
	subscriptions *store.SubscriptionStore,
	users *store.UserStore,
	subService *subscription.Service,
	issuer CreditIssuer,
) *Service {
	return &Service{
		cfg:           cfg,
		db:            db,
		log:           log,
		payments:      payments,
		subscriptions: subscriptions,
		users:         users,
		subService:    subService,
		issuer:        issuer,
	}
}

// Process applies one canonical event to completion or fails without partial
// effects. A returned error means nothing was committed and the provider
// should redeliver; idempotency makes the retry safe.
func (s *Service) Process(ctx context.Context, event *types.WebhookEvent) error {
	if event == nil {
		return nil
	}
	log := logctx.FromCtx(ctx, s.log)

	switch event.Type {
	case types.WebhookEventPaymentSucceeded:
		return s.handlePaymentSucceeded(ctx, event)
	case types.WebhookEventSubscriptionCreated:
		return s.handleSubscriptionCreated(ctx, event)
	case types.WebhookEventSubscriptionUpdated:
		return s.handleSubscriptionUpdated(ctx, event)
	case types.WebhookEventSubscriptionCanceled:
		return s.handleSubscriptionCanceled(ctx, event)
	case types.WebhookEventRefundCreated:
		return s.handleRefundCreated(ctx, event)
	case types.WebhookEventCheckoutCompleted:
		log.Infof("checkout completed for provider %s, no state change", event.Provider)
		return nil
	case types.WebhookEventPaymentFailed:
		// extension point for failed-payment notification
		log.Warnf("payment failed for provider %s, no state change", event.Provider)
		return nil
	case types.WebhookEventIgnored:
		return nil
	default:
		log.Infof("ignoring unrecognized webhook event type %s from %s", event.Type, event.Provider)
		return nil
	}
}

// paymentTypeFromCycle classifies a payment by the billing cycle the event
// reports.
func paymentTypeFromCycle(cycleType types.CycleType) types.PaymentType {
	switch cycleType {
	case types.CycleTypeCreate:
		return types.PaymentTypeSubscriptionCreate
	case types.CycleTypeRenewal:
		return types.PaymentTypeSubscriptionRenewal
	default:
		return types.PaymentTypeOneTime
	}
}
