package order

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/softmint/billing/internal/app/store"
	"github.com/softmint/billing/internal/models"
	"github.com/softmint/billing/pkg/config"
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
	require.NoError(t, db.AutoMigrate(&models.Order{}))

	cfg := &config.Config{Currency: "USD", Order: config.OrderConfig{ExpireMinutes: 30}}
	return New(cfg, db, zap.NewNop().Sugar(), store.NewOrderStore()), db
}

func createReq() *CreateOrderRequest {
	return &CreateOrderRequest{
		UserID:      "user_1",
		OrderType:   types.OrderTypeSubscription,
		ProductID:   "price_pro_month",
		ProductName: "Pro Monthly",
		Amount:      990,
		Currency:    "USD",
	}
}

func TestCreateOrder_ReusesPendingOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateOrder(ctx, createReq())
	require.NoError(t, err)
	require.Equal(t, types.OrderStatusPending, first.Status)
	require.NotNil(t, first.ExpireAt)

	second, err := svc.CreateOrder(ctx, createReq())
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
}

func TestCreateOrder_DifferentAmountGetsNewOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateOrder(ctx, createReq())
	require.NoError(t, err)

	discounted := createReq()
	discounted.Amount = 790
	second, err := svc.CreateOrder(ctx, discounted)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)
}

func TestCreateOrder_NewOrderAfterExpiry(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateOrder(ctx, createReq())
	require.NoError(t, err)

	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", first.ID).Update("expire_at", past).Error)

	second, err := svc.CreateOrder(ctx, createReq())
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	// the stale order is closed out, not left dangling
	stale, err := svc.GetOrderByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, types.OrderStatusExpired, stale.Status)
}

func TestMarkOrderPaid_Transitions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, createReq())
	require.NoError(t, err)

	paid, err := svc.MarkOrderPaid(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, types.OrderStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	// already paid is a no-op, paidAt untouched
	again, err := svc.MarkOrderPaid(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, types.OrderStatusPaid, again.Status)
	require.True(t, again.PaidAt.Equal(*paid.PaidAt))
}

func TestMarkOrderPaid_RejectsCanceledOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, createReq())
	require.NoError(t, err)

	_, err = svc.MarkOrderCanceled(ctx, order.ID)
	require.NoError(t, err)

	_, err = svc.MarkOrderPaid(ctx, order.ID)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidStatus))

	current, err := svc.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, types.OrderStatusCanceled, current.Status)
	require.Nil(t, current.PaidAt)
}

func TestMarkOrderPaid_MissingOrder(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.MarkOrderPaid(context.Background(), "no_such_order")
	require.True(t, errors.Is(err, ErrOrderNotFound))
}

func TestMarkOrderRefunded(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, createReq())
	require.NoError(t, err)
	_, err = svc.MarkOrderPaid(ctx, order.ID)
	require.NoError(t, err)

	refunded, err := svc.MarkOrderRefunded(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, types.OrderStatusRefunded, refunded.Status)
}

func TestIsOrderExpired(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	// missing order counts as expired
	expired, err := svc.IsOrderExpired(ctx, "no_such_order")
	require.NoError(t, err)
	require.True(t, expired)

	order, err := svc.CreateOrder(ctx, createReq())
	require.NoError(t, err)

	expired, err = svc.IsOrderExpired(ctx, order.ID)
	require.NoError(t, err)
	require.False(t, expired)

	past := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", order.ID).Update("expire_at", past).Error)

	expired, err = svc.IsOrderExpired(ctx, order.ID)
	require.NoError(t, err)
	require.True(t, expired)

	// non-pending orders never report expired
	_, err = svc.MarkOrderCanceled(ctx, order.ID)
	require.NoError(t, err)
	expired, err = svc.IsOrderExpired(ctx, order.ID)
	require.NoError(t, err)
	require.False(t, expired)
}

func TestGetUserOrders_StatusFilter(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateOrder(ctx, createReq())
	require.NoError(t, err)

	other := createReq()
	other.ProductID = "price_lifetime"
	other.Amount = 9900
	second, err := svc.CreateOrder(ctx, other)
	require.NoError(t, err)
	_, err = svc.MarkOrderPaid(ctx, second.ID)
	require.NoError(t, err)

	all, err := svc.GetUserOrders(ctx, "user_1", "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	pending, err := svc.GetUserOrders(ctx, "user_1", types.OrderStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, first.ID, pending[0].ID)
}
