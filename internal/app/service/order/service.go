package order

import (
	"context"
	"fmt"
	"time"

	"github.com/softmint/billing/internal/app/store"
	"github.com/softmint/billing/internal/models"
	"github.com/softmint/billing/pkg/config"
	"github.com/softmint/billing/pkg/logctx"
	"github.com/softmint/billing/pkg/tool"
	"github.com/softmint/billing/pkg/types"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service owns the order state machine: pending → paid | canceled | expired,
// paid → refunded. Terminal states have no outgoing transitions.
type Service struct {
	cfg    *config.Config
	db     *gorm.DB
	log    *zap.SugaredLogger
	orders *store.OrderStore
}

func New(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger, orders *store.OrderStore) *Service {
	return &Service{cfg: cfg, db: db, log: log, orders: orders}
}

type CreateOrderRequest struct {
	UserID      string            `json:"user_id"`
	OrderType   types.OrderType   `json:"order_type"`
	ProductID   string            `json:"product_id"`
	ProductName string            `json:"product_name"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	// ExpireMinutes overrides the configured pending-order lifetime when > 0.
	ExpireMinutes int            `json:"expire_minutes"`
	Metadata      map[string]any `json:"metadata"`
}

// CreateOrder returns a still-valid pending order for the same purchase
// intent when one exists, otherwise inserts a new one. The reuse key is
// (userId, productId, amount, currency) so two checkouts for the same
// product at different prices never collapse into one order.
func (s *Service) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*models.Order, error) {
	if req.UserID == "" || req.ProductID == "" {
		return nil, fmt.Errorf("user id and product id are required")
	}
	if req.Currency == "" {
		req.Currency = s.cfg.Currency
	}

	now := time.Now()
	existing, err := s.orders.FindPendingByPurchaseKey(ctx, s.db, req.UserID, req.ProductID, req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if !existing.Expired(now) {
			logctx.FromCtx(ctx, s.log).Infof("reusing pending order %s for user %s product %s", existing.ID, req.UserID, req.ProductID)
			return existing, nil
		}
		if _, err := s.orders.UpdateStatus(ctx, s.db, existing.ID, types.OrderStatusExpired, nil); err != nil {
			return nil, err
		}
	}

	expireMinutes := req.ExpireMinutes
	if expireMinutes <= 0 {
		expireMinutes = s.cfg.Order.ExpireMinutes
	}
	expireAt := now.Add(time.Duration(expireMinutes) * time.Minute)

	order := &models.Order{
		ID:          tool.GenerateOrderID(),
		UserID:      req.UserID,
		OrderType:   req.OrderType,
		Status:      types.OrderStatusPending,
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		Amount:      req.Amount,
		Currency:    req.Currency,
		ExpireAt:    &expireAt,
		Metadata:    datatypes.JSONMap(req.Metadata),
	}
	if order.Metadata == nil {
		order.Metadata = datatypes.JSONMap{}
	}
	if err := s.orders.Insert(ctx, s.db, order); err != nil {
		return nil, err
	}
	return order, nil
}

// MarkOrderPaid moves a pending order to paid and stamps paidAt. An order
// already paid is returned unchanged; any other non-pending state returns
// ErrInvalidStatus without mutation.
func (s *Service) MarkOrderPaid(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status == types.OrderStatusPaid {
		return order, nil
	}
	if order.Status != types.OrderStatusPending {
		return nil, fmt.Errorf("%w: cannot pay order in status %s", ErrInvalidStatus, order.Status)
	}
	paidAt := time.Now()
	return s.orders.UpdateStatus(ctx, s.db, orderID, types.OrderStatusPaid, &paidAt)
}

// MarkOrderCanceled is an unconditional write; callers guard the source state.
func (s *Service) MarkOrderCanceled(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.orders.UpdateStatus(ctx, s.db, orderID, types.OrderStatusCanceled, nil)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// MarkOrderRefunded is an unconditional write; callers guard the source state.
func (s *Service) MarkOrderRefunded(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.orders.UpdateStatus(ctx, s.db, orderID, types.OrderStatusRefunded, nil)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// MarkOrderExpired moves a pending order to expired. Non-pending orders are
// left untouched.
func (s *Service) MarkOrderExpired(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != types.OrderStatusPending {
		return order, nil
	}
	return s.orders.UpdateStatus(ctx, s.db, orderID, types.OrderStatusExpired, nil)
}

// IsOrderExpired reports whether the order's reuse window has passed. A
// missing order counts as expired.
func (s *Service) IsOrderExpired(ctx context.Context, orderID string) (bool, error) {
	order, err := s.orders.FindByID(ctx, s.db, orderID)
	if err != nil {
		return false, err
	}
	return order.Expired(time.Now()), nil
}

func (s *Service) GetOrderByID(ctx context.Context, orderID string) (*models.Order, error) {
	return s.orders.FindByID(ctx, s.db, orderID)
}

// GetUserOrders lists a user's orders newest first; empty status means all.
func (s *Service) GetUserOrders(ctx context.Context, userID string, status types.OrderStatus) ([]*models.Order, error) {
	return s.orders.FindByUserID(ctx, s.db, userID, status)
}

// ScanOrders is the admin listing entry point.
func (s *Service) ScanOrders(ctx context.Context, filters []*types.CommonFilter, from, size int, sortBy, sortOrder string) ([]*models.Order, int64, error) {
	return s.orders.Scan(ctx, s.db, filters, from, size, sortBy, sortOrder)
}
