package credit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/softmint/billing/internal/models"
	"github.com/softmint/billing/pkg/config"
	"github.com/softmint/billing/pkg/logctx"
	"github.com/softmint/billing/pkg/tool"
	"github.com/softmint/billing/pkg/types"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service turns succeeded payments into credit grants and serves the balance
// read path. A grant is issued at most once per payment: the unique index on
// credit_grant.payment_id turns a redelivered issue into a no-op.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{cfg: cfg, db: db, log: log}
}

// IssueRequest carries everything needed to compute one grant.
type IssueRequest struct {
	UserID      string
	PlanID      string
	PaymentID   string
	PaymentType types.PaymentType
	// PeriodEnd, when set for a subscription payment, is used as the grant
	// expiry instead of the plan's expire_days.
	PeriodEnd *time.Time
}

// Issue computes and writes a credit grant inside tx. Plans without a credit
// policy and zero-amount policies grant nothing. A duplicate payment id is
// treated as already granted, not as an error.
func (s *Service) Issue(ctx context.Context, tx *gorm.DB, req *IssueRequest) error {
	if req.UserID == "" || req.PaymentID == "" {
		return fmt.Errorf("credit issue requires user id and payment id")
	}

	plan := s.cfg.GetPlanByID(req.PlanID)
	if plan == nil {
		return fmt.Errorf("plan not found: %s", req.PlanID)
	}
	if plan.Credit == nil || plan.Credit.Amount <= 0 {
		logctx.FromCtx(ctx, s.log).Infof("plan %s has no credit policy, skipping grant for payment %s", req.PlanID, req.PaymentID)
		return nil
	}

	grant := &models.CreditGrant{
		ID:        tool.GenerateUUIDV7(),
		UserID:    req.UserID,
		PaymentID: req.PaymentID,
		PlanID:    req.PlanID,
		Credits:   plan.Credit.Amount,
		ExpireAt:  s.grantExpiry(plan, req),
	}

	if err := tx.WithContext(ctx).Create(grant).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logctx.FromCtx(ctx, s.log).Infof("credit grant already exists for payment %s, skipping", req.PaymentID)
			return nil
		}
		return fmt.Errorf("failed to create credit grant: %w", err)
	}
	return nil
}

// grantExpiry picks the grant lifetime: billing-period end for subscription
// payments when known, plan expire_days otherwise, never for lifetime plans.
func (s *Service) grantExpiry(plan *types.Plan, req *IssueRequest) *time.Time {
	if plan.IsLifetime() {
		return nil
	}
	if req.PaymentType.IsSubscription() && req.PeriodEnd != nil {
		return req.PeriodEnd
	}
	if plan.Credit.ExpireDays <= 0 {
		return nil
	}
	expireAt := time.Now().AddDate(0, 0, plan.Credit.ExpireDays)
	return &expireAt
}

type UserCredits struct {
	UserCredits       int64      `json:"user_credits"`
	DailyBonusCredits int64      `json:"daily_bonus_credits"`
	NextRefreshTime   *time.Time `json:"next_refresh_time,omitempty"`
}

// GetUserCredits sums the user's unexpired grants and attaches the daily
// bonus pool of the plan backing their active subscription, if any. The
// bonus refreshes at UTC midnight.
func (s *Service) GetUserCredits(ctx context.Context, userID string) (*UserCredits, error) {
	now := time.Now()

	var total int64
	err := s.db.WithContext(ctx).Model(&models.CreditGrant{}).
		Select("COALESCE(SUM(credits), 0)").
		Where("user_id = ? AND (expire_at IS NULL OR expire_at > ?)", userID, now).
		Scan(&total).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum credit grants: %w", err)
	}

	result := &UserCredits{UserCredits: total}

	var sub models.Subscription
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID,
			[]types.SubscriptionStatus{types.SubscriptionStatusActive, types.SubscriptionStatusTrialing}).
		Order("created_at desc").
		First(&sub).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to load subscription: %w", err)
		}
		return result, nil
	}

	plan := s.cfg.GetPlanByID(sub.PlanID)
	if plan != nil && plan.Credit != nil && plan.Credit.DailyBonus > 0 {
		result.DailyBonusCredits = plan.Credit.DailyBonus
		next := now.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
		result.NextRefreshTime = &next
	}
	return result, nil
}
