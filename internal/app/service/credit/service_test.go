package credit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/softmint/billing/internal/models"
	"github.com/softmint/billing/pkg/config"
	"github.com/softmint/billing/pkg/tool"
	"github.com/softmint/billing/pkg/types"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.CreditGrant{}, &models.Subscription{}))

	cfg := &config.Config{
		Currency: "USD",
		Plans: []*types.Plan{
			{
				ID:       "pro",
				PlanType: types.PlanTypeSubscription,
				Credit:   &types.CreditPolicy{Amount: 1000, ExpireDays: 30, DailyBonus: 50},
			},
			{
				ID:       "lifetime",
				PlanType: types.PlanTypeLifetime,
				Credit:   &types.CreditPolicy{Amount: 5000},
			},
			{
				ID:       "free",
				PlanType: types.PlanTypeFree,
			},
		},
	}
	return New(cfg, db, zap.NewNop().Sugar()), db
}

func TestIssue_SubscriptionPaymentUsesPeriodEnd(t *testing.T) {
	svc, db := newTestService(t)
	periodEnd := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	paymentID := tool.GenerateUUIDV7()

	require.NoError(t, svc.Issue(context.Background(), db, &IssueRequest{
		UserID:      "user_1",
		PlanID:      "pro",
		PaymentID:   paymentID,
		PaymentType: types.PaymentTypeSubscriptionCreate,
		PeriodEnd:   &periodEnd,
	}))

	var grant models.CreditGrant
	require.NoError(t, db.Where("payment_id = ?", paymentID).First(&grant).Error)
	require.EqualValues(t, 1000, grant.Credits)
	require.NotNil(t, grant.ExpireAt)
	require.True(t, grant.ExpireAt.Equal(periodEnd))
}

func TestIssue_OneTimePaymentUsesExpireDays(t *testing.T) {
	svc, db := newTestService(t)
	paymentID := tool.GenerateUUIDV7()

	require.NoError(t, svc.Issue(context.Background(), db, &IssueRequest{
		UserID:      "user_1",
		PlanID:      "pro",
		PaymentID:   paymentID,
		PaymentType: types.PaymentTypeOneTime,
	}))

	var grant models.CreditGrant
	require.NoError(t, db.Where("payment_id = ?", paymentID).First(&grant).Error)
	require.NotNil(t, grant.ExpireAt)
	expected := time.Now().AddDate(0, 0, 30)
	require.WithinDuration(t, expected, *grant.ExpireAt, time.Minute)
}

func TestIssue_LifetimePlanNeverExpires(t *testing.T) {
	svc, db := newTestService(t)
	paymentID := tool.GenerateUUIDV7()

	require.NoError(t, svc.Issue(context.Background(), db, &IssueRequest{
		UserID:      "user_1",
		PlanID:      "lifetime",
		PaymentID:   paymentID,
		PaymentType: types.PaymentTypeOneTime,
	}))

	var grant models.CreditGrant
	require.NoError(t, db.Where("payment_id = ?", paymentID).First(&grant).Error)
	require.EqualValues(t, 5000, grant.Credits)
	require.Nil(t, grant.ExpireAt)
}

func TestIssue_DuplicatePaymentIsNoOp(t *testing.T) {
	svc, db := newTestService(t)
	paymentID := tool.GenerateUUIDV7()
	req := &IssueRequest{
		UserID:      "user_1",
		PlanID:      "pro",
		PaymentID:   paymentID,
		PaymentType: types.PaymentTypeOneTime,
	}

	require.NoError(t, svc.Issue(context.Background(), db, req))
	require.NoError(t, svc.Issue(context.Background(), db, req))

	var count int64
	require.NoError(t, db.Model(&models.CreditGrant{}).Where("payment_id = ?", paymentID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestIssue_PlanWithoutCreditPolicyGrantsNothing(t *testing.T) {
	svc, db := newTestService(t)

	require.NoError(t, svc.Issue(context.Background(), db, &IssueRequest{
		UserID:      "user_1",
		PlanID:      "free",
		PaymentID:   tool.GenerateUUIDV7(),
		PaymentType: types.PaymentTypeOneTime,
	}))

	var count int64
	require.NoError(t, db.Model(&models.CreditGrant{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestIssue_UnknownPlanFails(t *testing.T) {
	svc, db := newTestService(t)

	err := svc.Issue(context.Background(), db, &IssueRequest{
		UserID:      "user_1",
		PlanID:      "no_such_plan",
		PaymentID:   tool.GenerateUUIDV7(),
		PaymentType: types.PaymentTypeOneTime,
	})
	require.Error(t, err)
}

func TestGetUserCredits_SumsUnexpiredGrants(t *testing.T) {
	svc, db := newTestService(t)
	now := time.Now()
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	grants := []*models.CreditGrant{
		{ID: tool.GenerateUUIDV7(), UserID: "user_1", PaymentID: tool.GenerateUUIDV7(), PlanID: "pro", Credits: 1000, ExpireAt: &future},
		{ID: tool.GenerateUUIDV7(), UserID: "user_1", PaymentID: tool.GenerateUUIDV7(), PlanID: "pro", Credits: 700, ExpireAt: &past},
		{ID: tool.GenerateUUIDV7(), UserID: "user_1", PaymentID: tool.GenerateUUIDV7(), PlanID: "lifetime", Credits: 5000},
		{ID: tool.GenerateUUIDV7(), UserID: "user_2", PaymentID: tool.GenerateUUIDV7(), PlanID: "pro", Credits: 300, ExpireAt: &future},
	}
	for _, g := range grants {
		require.NoError(t, db.Create(g).Error)
	}

	credits, err := svc.GetUserCredits(context.Background(), "user_1")
	require.NoError(t, err)
	require.EqualValues(t, 6000, credits.UserCredits)
	// no active subscription, no bonus pool
	require.EqualValues(t, 0, credits.DailyBonusCredits)
	require.Nil(t, credits.NextRefreshTime)
}

func TestGetUserCredits_DailyBonusFromActiveSubscription(t *testing.T) {
	svc, db := newTestService(t)

	require.NoError(t, db.Create(&models.Subscription{
		ID:                     tool.GenerateUUIDV7(),
		Provider:               types.PaymentProviderStripe,
		ProviderSubscriptionID: "sub_bonus",
		UserID:                 "user_1",
		PlanID:                 "pro",
		Status:                 types.SubscriptionStatusActive,
	}).Error)

	credits, err := svc.GetUserCredits(context.Background(), "user_1")
	require.NoError(t, err)
	require.EqualValues(t, 50, credits.DailyBonusCredits)
	require.NotNil(t, credits.NextRefreshTime)
	require.True(t, credits.NextRefreshTime.After(time.Now().UTC()))
	require.Equal(t, 0, credits.NextRefreshTime.Hour())
	require.Equal(t, 0, credits.NextRefreshTime.Minute())
}
