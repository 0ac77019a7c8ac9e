package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/softmint/billing/internal/models"
	"github.com/softmint/billing/pkg/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderStore is pure data access for order rows. Methods take the database
// handle explicitly so callers can pass either the root handle or an open
// transaction.
type OrderStore struct{}

func NewOrderStore() *OrderStore { return &OrderStore{} }

func (s *OrderStore) Insert(ctx context.Context, db *gorm.DB, order *models.Order) error {
	if err := db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

// FindByID returns (nil, nil) when the order does not exist.
func (s *OrderStore) FindByID(ctx context.Context, db *gorm.DB, id string) (*models.Order, error) {
	var order models.Order
	err := db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}

// FindPendingByPurchaseKey returns the latest pending order matching the
// purchase-intent reuse key (user, product, amount, currency), or (nil, nil).
func (s *OrderStore) FindPendingByPurchaseKey(ctx context.Context, db *gorm.DB, userID, productID string, amount int64, currency string) (*models.Order, error) {
	var order models.Order
	err := db.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND amount = ? AND currency = ? AND status = ?",
			userID, productID, amount, currency, types.OrderStatusPending).
		Order("created_at desc").
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load pending order: %w", err)
	}
	return &order, nil
}

// FindByUserID lists a user's orders newest first, optionally filtered by
// status (empty status means all).
func (s *OrderStore) FindByUserID(ctx context.Context, db *gorm.DB, userID string, status types.OrderStatus) ([]*models.Order, error) {
	q := db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var orders []*models.Order
	if err := q.Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus writes the status (and paid_at when provided) and returns the
// updated row, or (nil, nil) when the order does not exist.
func (s *OrderStore) UpdateStatus(ctx context.Context, db *gorm.DB, id string, status types.OrderStatus, paidAt *time.Time) (*models.Order, error) {
	updates := map[string]any{"status": status, "updated_at": time.Now()}
	if paidAt != nil {
		updates["paid_at"] = *paidAt
	}
	res := db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return s.FindByID(ctx, db, id)
}

// Scan implements paginated admin listing with filters.
func (s *OrderStore) Scan(ctx context.Context, db *gorm.DB, filters []*types.CommonFilter, from, size int, sortBy, sortOrder string) ([]*models.Order, int64, error) {
	if size <= 0 {
		size = 10
	}
	if from < 0 {
		from = 0
	}

	q := db.WithContext(ctx).Model(&models.Order{})
	if len(filters) > 0 {
		q = q.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: filters}}})
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	q = q.Limit(size)
	if from > 0 {
		q = q.Offset(from)
	}
	if sortBy == "" {
		sortBy = "created_at"
	}
	q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: sortBy}, Desc: sortOrder != "asc"}}})

	var rows []*models.Order
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return rows, total, nil
}

// filtersAnd combines multiple CommonFilter into a single clause.Expression.
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}
