package service

import (
	"context"
	"errors"
	"krishna_store/internal/domain"
	"krishna_store/internal/utils"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedOrder(t *testing.T, gdb *gorm.DB, userID uint, amount float64, status domain.OrderStatus, payment domain.PaymentStatus) domain.Order {
	t.Helper()
	order := domain.Order{UserID: userID, TotalAmount: amount, Status: status, PaymentStatus: payment, PaymentMethod: "cod"}
	require.NoError(t, gdb.Create(&order).Error)
	return order
}

func TestOrderCreate_AssignsOrderNumber(t *testing.T) {
	gdb := setupTestDB(t)
	user := createUser(t, gdb, domain.User{Name: "Asha", Phone: "9123456789"})
	a := seedOrder(t, gdb, user.ID, 100, domain.OrderPlaced, domain.PaymentPending)
	b := seedOrder(t, gdb, user.ID, 200, domain.OrderPlaced, domain.PaymentPending)

	assert.True(t, strings.HasPrefix(a.OrderNumber, "ORD-"))
	assert.Len(t, a.OrderNumber, 16)
	assert.NotEqual(t, a.OrderNumber, b.OrderNumber)
}

func TestUpdateStatus_PermissiveByDefault(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewOrderService(gdb, false)
	user := createUser(t, gdb, domain.User{Name: "Asha", Phone: "9123456789"})
	order := seedOrder(t, gdb, user.ID, 100, domain.OrderDelivered, domain.PaymentPaid)
	ctx := context.Background()

	updated, err := svc.UpdateStatus(ctx, 1, order.ID, "placed")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPlaced, updated.Status)

	updated, err = svc.UpdateStatus(ctx, 1, order.ID, "awaiting-pickup")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatus("awaiting-pickup"), updated.Status)

	var stored domain.Order
	require.NoError(t, gdb.First(&stored, order.ID).Error)
	assert.Equal(t, domain.OrderStatus("awaiting-pickup"), stored.Status)

	_, err = svc.UpdateStatus(ctx, 1, order.ID, "  ")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = svc.UpdateStatus(ctx, 1, 9999, "shipped")
	assert.True(t, errors.Is(err, domain.ErrOrderNotFound))
}

func TestUpdateStatus_StrictTransitions(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewOrderService(gdb, true)
	user := createUser(t, gdb, domain.User{Name: "Asha", Phone: "9123456789"})
	order := seedOrder(t, gdb, user.ID, 100, domain.OrderPlaced, domain.PaymentPending)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, 1, order.ID, "awaiting-pickup")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = svc.UpdateStatus(ctx, 1, order.ID, "delivered")
	assert.True(t, errors.Is(err, domain.ErrIllegalTransition))

	for _, next := range []string{"processing", "shipped", "delivered"} {
		updated, err := svc.UpdateStatus(ctx, 1, order.ID, next)
		require.NoError(t, err, next)
		assert.Equal(t, domain.OrderStatus(next), updated.Status)
	}

	_, err = svc.UpdateStatus(ctx, 1, order.ID, "cancelled")
	assert.True(t, errors.Is(err, domain.ErrIllegalTransition))

	// Re-applying the current status is a no-op, not an error
	_, err = svc.UpdateStatus(ctx, 1, order.ID, "delivered")
	assert.NoError(t, err)
}

func TestUpdatePaymentStatus(t *testing.T) {
	gdb := setupTestDB(t)
	user := createUser(t, gdb, domain.User{Name: "Asha", Phone: "9123456789"})
	order := seedOrder(t, gdb, user.ID, 100, domain.OrderPlaced, domain.PaymentPending)
	ctx := context.Background()

	updated, err := NewOrderService(gdb, false).UpdatePaymentStatus(ctx, 1, order.ID, "paid")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, updated.PaymentStatus)

	_, err = NewOrderService(gdb, true).UpdatePaymentStatus(ctx, 1, order.ID, "maybe")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = NewOrderService(gdb, false).UpdatePaymentStatus(ctx, 1, order.ID, "")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestOrderList_FiltersAndPaginates(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewOrderService(gdb, false)
	asha := createUser(t, gdb, domain.User{Name: "Asha", Phone: "9123456789"})
	ravi := createUser(t, gdb, domain.User{Name: "Ravi", Phone: "9123456780"})
	for i := 0; i < 3; i++ {
		seedOrder(t, gdb, asha.ID, 100, domain.OrderPlaced, domain.PaymentPending)
	}
	shipped := seedOrder(t, gdb, ravi.ID, 250, domain.OrderShipped, domain.PaymentPaid)
	ctx := context.Background()

	orders, total, err := svc.List(ctx, OrderFilter{}, utils.Page{Number: 1, Size: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, orders, 2)
	assert.Equal(t, shipped.ID, orders[0].ID)

	orders, total, err = svc.List(ctx, OrderFilter{Status: "placed"}, utils.Page{Number: 2, Size: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, orders, 1)

	orders, total, err = svc.List(ctx, OrderFilter{UserID: ravi.ID}, utils.Page{Number: 1, Size: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, shipped.ID, orders[0].ID)

	got, err := svc.Get(ctx, shipped.ID)
	require.NoError(t, err)
	require.NotNil(t, got.User)
	assert.Equal(t, "Ravi", got.User.Name)
}

func TestOrderSearch_MatchesNumberNameAndPhone(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewOrderService(gdb, false)
	asha := createUser(t, gdb, domain.User{Name: "Asha Rao", Phone: "9123456789"})
	ravi := createUser(t, gdb, domain.User{Name: "Ravi Kumar", Phone: "9988776655"})
	first := seedOrder(t, gdb, asha.ID, 100, domain.OrderPlaced, domain.PaymentPending)
	second := seedOrder(t, gdb, asha.ID, 150, domain.OrderShipped, domain.PaymentPaid)
	other := seedOrder(t, gdb, ravi.ID, 90, domain.OrderPlaced, domain.PaymentPending)
	ctx := context.Background()
	all := utils.Page{Number: 1, Size: 20}

	byName, total, err := svc.Search(ctx, "asha", all)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, byName, 2)
	assert.Equal(t, second.ID, byName[0].ID)
	assert.Equal(t, first.ID, byName[1].ID)
	require.NotNil(t, byName[0].User)
	assert.Equal(t, "Asha Rao", byName[0].User.Name)

	byPhone, total, err := svc.Search(ctx, "887766", all)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, byPhone, 1)
	assert.Equal(t, other.ID, byPhone[0].ID)

	byNumber, total, err := svc.Search(ctx, first.OrderNumber[4:10], all)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, byNumber, 1)
	assert.Equal(t, first.ID, byNumber[0].ID)

	paged, total, err := svc.Search(ctx, "asha", utils.Page{Number: 2, Size: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, paged, 1)
	assert.Equal(t, first.ID, paged[0].ID)

	none, total, err := svc.Search(ctx, "nobody", all)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, none)

	_, _, err = svc.Search(ctx, "   ", all)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestOrderStats(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewOrderService(gdb, false)
	user := createUser(t, gdb, domain.User{Name: "Asha", Phone: "9123456789"})
	seedOrder(t, gdb, user.ID, 100, domain.OrderPlaced, domain.PaymentPending)
	seedOrder(t, gdb, user.ID, 250.5, domain.OrderDelivered, domain.PaymentPaid)
	seedOrder(t, gdb, user.ID, 49.5, domain.OrderShipped, domain.PaymentPaid)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 1, stats.ByStatus["placed"])
	assert.EqualValues(t, 0, stats.ByStatus["cancelled"])
	assert.InDelta(t, 300.0, stats.Revenue, 0.001)
}
