package webhook

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/softmint/billing/internal/app/service/credit"
	subsvc "github.com/softmint/billing/internal/app/service/subscription"
	"github.com/softmint/billing/internal/app/store"
	"github.com/softmint/billing/internal/models"
	"github.com/softmint/billing/internal/platform/provider"
	"github.com/softmint/billing/pkg/config"
	"github.com/softmint/billing/pkg/types"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Order{},
		&models.Payment{},
		&models.Subscription{},
		&models.User{},
		&models.CreditGrant{},
		&models.WebhookLog{},
	))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Currency: "USD",
		Order:    config.OrderConfig{ExpireMinutes: 30},
		Plans: []*types.Plan{
			{
				ID:       "pro",
				Name:     "Pro",
				PlanType: types.PlanTypeSubscription,
				Credit:   &types.CreditPolicy{Amount: 1000, ExpireDays: 30},
				Prices:   []*types.PlanPrice{{PriceID: "price_pro_month", Amount: 990, Currency: "USD", Interval: types.PlanIntervalMonth}},
			},
			{
				ID:       "lifetime",
				Name:     "Lifetime",
				PlanType: types.PlanTypeLifetime,
				Credit:   &types.CreditPolicy{Amount: 5000},
				Prices:   []*types.PlanPrice{{PriceID: "price_lifetime", Amount: 9900, Currency: "USD"}},
			},
		},
	}
}

func newTestService(t *testing.T, db *gorm.DB, issuer CreditIssuer) *Service {
	t.Helper()
	cfg := testConfig()
	log := zap.NewNop().Sugar()
	subService := subsvc.New(db, log, store.NewSubscriptionStore(), provider.NewRegistry())
	if issuer == nil {
		issuer = credit.New(cfg, db, log)
	}
	return New(cfg, db, log,
		store.NewPaymentStore(),
		store.NewSubscriptionStore(),
		store.NewUserStore(),
		subService,
		issuer,
	)
}

func paymentSucceededEvent() *types.WebhookEvent {
	return &types.WebhookEvent{
		Provider: types.PaymentProviderStripe,
		Type:     types.WebhookEventPaymentSucceeded,
		Payment: &types.PaymentInfo{
			ProviderPaymentID:  "pi_001",
			UserID:             "user_1",
			ProviderCustomerID: "cus_001",
			Amount:             990,
			Currency:           "USD",
			PlanID:             "pro",
			PriceID:            "price_pro_month",
			Status:             types.PaymentStatusSucceeded,
		},
	}
}

func TestProcessPaymentSucceeded_Idempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, nil)
	ctx := context.Background()

	require.NoError(t, svc.Process(ctx, paymentSucceededEvent()))
	require.NoError(t, svc.Process(ctx, paymentSucceededEvent()))

	var paymentCount int64
	require.NoError(t, db.Model(&models.Payment{}).Count(&paymentCount).Error)
	require.EqualValues(t, 1, paymentCount)

	var grantCount int64
	require.NoError(t, db.Model(&models.CreditGrant{}).Count(&grantCount).Error)
	require.EqualValues(t, 1, grantCount)

	var grant models.CreditGrant
	require.NoError(t, db.First(&grant).Error)
	require.EqualValues(t, 1000, grant.Credits)
	require.Equal(t, "user_1", grant.UserID)
}

func TestProcessPaymentSucceeded_UpsertsProviderCustomer(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, nil)

	require.NoError(t, svc.Process(context.Background(), paymentSucceededEvent()))

	var user models.User
	require.NoError(t, db.Where("id = ?", "user_1").First(&user).Error)
	require.Equal(t, "cus_001", user.ProviderCustomerID("stripe"))
}

type failingIssuer struct{}

func (failingIssuer) Issue(ctx context.Context, tx *gorm.DB, req *credit.IssueRequest) error {
	return errors.New("issuer unavailable")
}

func TestProcessPaymentSucceeded_RollsBackOnCreditFailure(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, failingIssuer{})

	err := svc.Process(context.Background(), paymentSucceededEvent())
	require.Error(t, err)

	payment, err := store.NewPaymentStore().FindByProviderPaymentID(context.Background(), db, types.PaymentProviderStripe, "pi_001")
	require.NoError(t, err)
	require.Nil(t, payment)

	var grantCount int64
	require.NoError(t, db.Model(&models.CreditGrant{}).Count(&grantCount).Error)
	require.EqualValues(t, 0, grantCount)
}

func subscriptionCreatedEvent() *types.WebhookEvent {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return &types.WebhookEvent{
		Provider: types.PaymentProviderStripe,
		Type:     types.WebhookEventSubscriptionCreated,
		Subscription: &types.SubscriptionInfo{
			ProviderSubscriptionID: "sub_001",
			ProviderCustomerID:     "cus_001",
			UserID:                 "user_1",
			PlanID:                 "pro",
			PriceID:                "price_pro_month",
			Status:                 types.SubscriptionStatusActive,
			Interval:               types.PlanIntervalMonth,
			Amount:                 990,
			Currency:               "USD",
			CurrentPeriodStart:     &start,
			CurrentPeriodEnd:       &end,
		},
	}
}

func TestProcessSubscriptionCreated_Idempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, nil)
	ctx := context.Background()

	require.NoError(t, svc.Process(ctx, subscriptionCreatedEvent()))
	require.NoError(t, svc.Process(ctx, subscriptionCreatedEvent()))

	var count int64
	require.NoError(t, db.Model(&models.Subscription{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestProcessRenewal_AdvancesPeriod(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, nil)
	ctx := context.Background()

	require.NoError(t, svc.Process(ctx, subscriptionCreatedEvent()))

	newStart := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	newEnd := newStart.AddDate(0, 1, 0)
	renewal := paymentSucceededEvent()
	renewal.Payment.ProviderPaymentID = "pi_renewal_001"
	renewal.Payment.CycleType = types.CycleTypeRenewal
	renewal.Subscription = &types.SubscriptionInfo{
		ProviderSubscriptionID: "sub_001",
		Status:                 types.SubscriptionStatusActive,
		CurrentPeriodStart:     &newStart,
		CurrentPeriodEnd:       &newEnd,
	}
	require.NoError(t, svc.Process(ctx, renewal))

	var sub models.Subscription
	require.NoError(t, db.Where("provider_subscription_id = ?", "sub_001").First(&sub).Error)
	require.NotNil(t, sub.CurrentPeriodStart)
	require.NotNil(t, sub.CurrentPeriodEnd)
	require.True(t, sub.CurrentPeriodStart.Equal(newStart))
	require.True(t, sub.CurrentPeriodEnd.Equal(newEnd))

	// renewal payment links to the internal subscription and its grant
	// expires at the new period end
	var payment models.Payment
	require.NoError(t, db.Where("provider_payment_id = ?", "pi_renewal_001").First(&payment).Error)
	require.NotNil(t, payment.SubscriptionID)
	require.Equal(t, sub.ID, *payment.SubscriptionID)
	require.Equal(t, types.PaymentTypeSubscriptionRenewal, payment.PaymentType)

	var grant models.CreditGrant
	require.NoError(t, db.Where("payment_id = ?", payment.ID).First(&grant).Error)
	require.NotNil(t, grant.ExpireAt)
	require.True(t, grant.ExpireAt.Equal(newEnd))
}

func TestProcessPayment_UnknownSubscriptionTolerated(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, nil)

	event := paymentSucceededEvent()
	event.Payment.CycleType = types.CycleTypeCreate
	event.Subscription = &types.SubscriptionInfo{ProviderSubscriptionID: "sub_missing"}

	// the creation event has not arrived; the payment still lands
	require.NoError(t, svc.Process(context.Background(), event))

	var payment models.Payment
	require.NoError(t, db.Where("provider_payment_id = ?", "pi_001").First(&payment).Error)
	require.Nil(t, payment.SubscriptionID)
	require.Equal(t, types.PaymentTypeSubscriptionCreate, payment.PaymentType)

	var subCount int64
	require.NoError(t, db.Model(&models.Subscription{}).Count(&subCount).Error)
	require.EqualValues(t, 0, subCount)
}

func TestProcessSubscriptionCanceled(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, nil)
	ctx := context.Background()

	require.NoError(t, svc.Process(ctx, subscriptionCreatedEvent()))

	canceledAt := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	require.NoError(t, svc.Process(ctx, &types.WebhookEvent{
		Provider: types.PaymentProviderStripe,
		Type:     types.WebhookEventSubscriptionCanceled,
		Subscription: &types.SubscriptionInfo{
			ProviderSubscriptionID: "sub_001",
			CanceledAt:             &canceledAt,
			CancelReason:           "user request",
		},
	}))

	var sub models.Subscription
	require.NoError(t, db.Where("provider_subscription_id = ?", "sub_001").First(&sub).Error)
	require.Equal(t, types.SubscriptionStatusCanceled, sub.Status)
	require.True(t, sub.CancelAtPeriodEnd)
	require.NotNil(t, sub.CanceledAt)
	require.Equal(t, "user request", sub.CancelReason)
}

func TestProcessRefundCreated(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, nil)
	ctx := context.Background()

	require.NoError(t, svc.Process(ctx, paymentSucceededEvent()))

	require.NoError(t, svc.Process(ctx, &types.WebhookEvent{
		Provider: types.PaymentProviderStripe,
		Type:     types.WebhookEventRefundCreated,
		Payment:  &types.PaymentInfo{ProviderPaymentID: "pi_001", Amount: 990},
	}))

	var payment models.Payment
	require.NoError(t, db.Where("provider_payment_id = ?", "pi_001").First(&payment).Error)
	require.Equal(t, types.PaymentStatusRefunded, payment.Status)
	require.NotNil(t, payment.RefundedAt)
	require.EqualValues(t, 990, payment.RefundAmount)
}

func TestProcessRefundCreated_UnknownPaymentTolerated(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, nil)

	require.NoError(t, svc.Process(context.Background(), &types.WebhookEvent{
		Provider: types.PaymentProviderStripe,
		Type:     types.WebhookEventRefundCreated,
		Payment:  &types.PaymentInfo{ProviderPaymentID: "pi_missing"},
	}))
}

func TestProcessIgnoredAndUnknownTypes(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, nil)
	ctx := context.Background()

	require.NoError(t, svc.Process(ctx, &types.WebhookEvent{Provider: types.PaymentProviderStripe, Type: types.WebhookEventIgnored}))
	require.NoError(t, svc.Process(ctx, &types.WebhookEvent{Provider: types.PaymentProviderStripe, Type: "something.new"}))
	require.NoError(t, svc.Process(ctx, &types.WebhookEvent{Provider: types.PaymentProviderStripe, Type: types.WebhookEventCheckoutCompleted}))
	require.NoError(t, svc.Process(ctx, &types.WebhookEvent{Provider: types.PaymentProviderStripe, Type: types.WebhookEventPaymentFailed}))
	require.NoError(t, svc.Process(ctx, nil))
}

func TestPaymentTypeFromCycle(t *testing.T) {
	require.Equal(t, types.PaymentTypeSubscriptionCreate, paymentTypeFromCycle(types.CycleTypeCreate))
	require.Equal(t, types.PaymentTypeSubscriptionRenewal, paymentTypeFromCycle(types.CycleTypeRenewal))
	require.Equal(t, types.PaymentTypeOneTime, paymentTypeFromCycle(""))
}
