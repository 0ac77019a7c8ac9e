package subscription

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/softmint/billing/internal/app/store"
	"github.com/softmint/billing/internal/models"
	"github.com/softmint/billing/internal/platform/provider"
	"github.com/softmint/billing/pkg/tool"
	"github.com/softmint/billing/pkg/types"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeAdapter counts cancellation calls and can be told to fail.
type fakeAdapter struct {
	cancelCalls int
	err         error
}

func (a *fakeAdapter) Provider() types.PaymentProvider { return types.PaymentProviderStripe }

func (a *fakeAdapter) CancelSubscription(ctx context.Context, providerSubscriptionID string) error {
	a.cancelCalls++
	return a.err
}

func newTestService(t *testing.T) (*Service, *gorm.DB, *fakeAdapter) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Subscription{}))

	adapter := &fakeAdapter{}
	svc := New(db, zap.NewNop().Sugar(), store.NewSubscriptionStore(), provider.NewRegistry(adapter))
	return svc, db, adapter
}

func insertSubscription(t *testing.T, db *gorm.DB, mutate func(*models.Subscription)) *models.Subscription {
	t.Helper()
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	sub := &models.Subscription{
		ID:                     tool.GenerateUUIDV7(),
		Provider:               types.PaymentProviderStripe,
		ProviderSubscriptionID: "sub_" + tool.GenerateUUIDV7(),
		UserID:                 "user_1",
		PlanID:                 "pro",
		PriceID:                "price_pro_month",
		Status:                 types.SubscriptionStatusActive,
		Interval:               types.PlanIntervalMonth,
		Amount:                 990,
		Currency:               "USD",
		CurrentPeriodStart:     &start,
		CurrentPeriodEnd:       &end,
	}
	if mutate != nil {
		mutate(sub)
	}
	require.NoError(t, db.Create(sub).Error)
	return sub
}

func TestCancel_SchedulesAtPeriodEnd(t *testing.T) {
	svc, db, adapter := newTestService(t)
	sub := insertSubscription(t, db, nil)

	updated, err := svc.Cancel(context.Background(), "user_1", sub.ID, "too expensive")
	require.NoError(t, err)
	require.Equal(t, 1, adapter.cancelCalls)
	require.True(t, updated.CancelAtPeriodEnd)
	require.NotNil(t, updated.CanceledAt)
	require.Equal(t, "too expensive", updated.CancelReason)
	// access is not terminated immediately
	require.Equal(t, types.SubscriptionStatusActive, updated.Status)
}

func TestCancel_RejectsCanceledSubscription(t *testing.T) {
	svc, db, adapter := newTestService(t)
	sub := insertSubscription(t, db, func(s *models.Subscription) {
		s.Status = types.SubscriptionStatusCanceled
	})

	_, err := svc.Cancel(context.Background(), "user_1", sub.ID, "")
	require.True(t, errors.Is(err, ErrNotCancelable))
	require.Equal(t, 0, adapter.cancelCalls)
}

func TestCancel_RejectsAlreadyScheduled(t *testing.T) {
	svc, db, adapter := newTestService(t)
	sub := insertSubscription(t, db, func(s *models.Subscription) {
		s.CancelAtPeriodEnd = true
	})

	_, err := svc.Cancel(context.Background(), "user_1", sub.ID, "")
	require.True(t, errors.Is(err, ErrAlreadyScheduled))
	require.Equal(t, 0, adapter.cancelCalls)
}

func TestCancel_RejectsWrongOwner(t *testing.T) {
	svc, db, adapter := newTestService(t)
	sub := insertSubscription(t, db, nil)

	_, err := svc.Cancel(context.Background(), "user_2", sub.ID, "")
	require.True(t, errors.Is(err, ErrNotOwner))
	require.Equal(t, 0, adapter.cancelCalls)
}

func TestCancel_RejectsMissingSubscription(t *testing.T) {
	svc, _, adapter := newTestService(t)

	_, err := svc.Cancel(context.Background(), "user_1", tool.GenerateUUIDV7(), "")
	require.True(t, errors.Is(err, ErrSubscriptionNotFound))
	require.Equal(t, 0, adapter.cancelCalls)
}

func TestCancel_RejectsMissingProviderSubscriptionID(t *testing.T) {
	svc, db, adapter := newTestService(t)
	sub := insertSubscription(t, db, func(s *models.Subscription) {
		s.ProviderSubscriptionID = ""
	})

	_, err := svc.Cancel(context.Background(), "user_1", sub.ID, "")
	require.True(t, errors.Is(err, ErrMissingProviderID))
	require.Equal(t, 0, adapter.cancelCalls)
}

func TestCancel_AdapterFailureLeavesStateUntouched(t *testing.T) {
	svc, db, adapter := newTestService(t)
	adapter.err = errors.New("provider unavailable")
	sub := insertSubscription(t, db, nil)

	_, err := svc.Cancel(context.Background(), "user_1", sub.ID, "")
	require.Error(t, err)
	require.Equal(t, 1, adapter.cancelCalls)

	current, err := svc.GetByID(context.Background(), sub.ID)
	require.NoError(t, err)
	require.False(t, current.CancelAtPeriodEnd)
	require.Nil(t, current.CanceledAt)
}

func TestGetUserActiveSubscription(t *testing.T) {
	svc, db, _ := newTestService(t)

	none, err := svc.GetUserActiveSubscription(context.Background(), "user_1")
	require.NoError(t, err)
	require.Nil(t, none)

	insertSubscription(t, db, func(s *models.Subscription) {
		s.Status = types.SubscriptionStatusCanceled
	})
	active := insertSubscription(t, db, nil)

	got, err := svc.GetUserActiveSubscription(context.Background(), "user_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, active.ID, got.ID)
}

func TestAdvancePeriod_NeverMovesBackward(t *testing.T) {
	svc, db, _ := newTestService(t)
	sub := insertSubscription(t, db, nil)

	oldStart := sub.CurrentPeriodStart.AddDate(0, -1, 0)
	oldEnd := sub.CurrentPeriodEnd.AddDate(0, -1, 0)
	require.NoError(t, svc.AdvancePeriod(context.Background(), db, sub, &types.SubscriptionInfo{
		CurrentPeriodStart: &oldStart,
		CurrentPeriodEnd:   &oldEnd,
	}))

	current, err := svc.GetByID(context.Background(), sub.ID)
	require.NoError(t, err)
	require.True(t, current.CurrentPeriodStart.Equal(*sub.CurrentPeriodStart))
	require.True(t, current.CurrentPeriodEnd.Equal(*sub.CurrentPeriodEnd))
}
