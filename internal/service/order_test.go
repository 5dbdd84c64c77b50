package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcabrera/tindahan/internal/domain"
	"github.com/rcabrera/tindahan/internal/memory"
	"github.com/rcabrera/tindahan/internal/service"
)

// seedOrder places an order through the real checkout path so the stock
// decrement has actually happened before lifecycle tests run.
func seedOrder(t *testing.T, store *memory.Store, deliveryType domain.DeliveryType) (*domain.Order, *domain.Customer, *domain.Product) {
	t.Helper()
	ctx := context.Background()
	checkout := service.NewCheckoutService(store, store, store, store, nil)

	customer := seedCustomer(t, store, "maria")
	product := seedProduct(t, store, "Coffee", "10.00", 5)
	seedCart(t, store, customer.ID, map[uuid.UUID]int32{product.ID: 3})

	params := pickupParams(customer.ID)
	params.DeliveryType = deliveryType
	if deliveryType == domain.DeliveryTypeDelivery {
		params.DeliveryAddress = "123 Mabini St"
		params.DeliveryContactNumber = "09171234567"
	}
	order, err := checkout.Checkout(ctx, params)
	require.NoError(t, err)
	return order, customer, product
}

func stockOf(t *testing.T, store *memory.Store, productID uuid.UUID) int32 {
	t.Helper()
	p, err := store.GetProduct(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}

func TestOrderLifecycle_PickupPath(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewOrderService(store, store, nil, nil)
	order, _, _ := seedOrder(t, store, domain.DeliveryTypePickup)

	ready, err := svc.MarkReadyForPickup(ctx, order.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusReadyForPickup, ready.Status)
	require.Len(t, ready.Notifications, 1)
	assert.Equal(t,
		fmt.Sprintf("Your order #%s is ready for pickup! Please collect it at your earliest convenience.", order.Reference()),
		ready.Notifications[0].Message)

	done, err := svc.CompleteOrder(ctx, order.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	assert.Len(t, done.Notifications, 2)
}

func TestOrderLifecycle_DeliveryPath(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewOrderService(store, store, nil, nil)
	order, _, _ := seedOrder(t, store, domain.DeliveryTypeDelivery)

	out, err := svc.MarkOutForDelivery(ctx, order.ID, "left with rider")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusOutForDelivery, out.Status)
	assert.Equal(t, "left with rider", out.AdminNotes)

	done, err := svc.CompleteOrder(ctx, order.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
}

func TestOrderLifecycle_GuardedTransitions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		deliveryType domain.DeliveryType
		act          func(svc service.OrderService, orderID uuid.UUID) error
		wantErr      error
	}{
		{
			name:         "ready for pickup rejects delivery orders",
			deliveryType: domain.DeliveryTypeDelivery,
			act: func(svc service.OrderService, orderID uuid.UUID) error {
				_, err := svc.MarkReadyForPickup(ctx, orderID, "")
				return err
			},
			wantErr: service.ErrPickupOrdersOnly,
		},
		{
			name:         "out for delivery rejects pickup orders",
			deliveryType: domain.DeliveryTypePickup,
			act: func(svc service.OrderService, orderID uuid.UUID) error {
				_, err := svc.MarkOutForDelivery(ctx, orderID, "")
				return err
			},
			wantErr: service.ErrDeliveryOrdersOnly,
		},
		{
			name:         "complete rejects pending orders",
			deliveryType: domain.DeliveryTypePickup,
			act: func(svc service.OrderService, orderID uuid.UUID) error {
				_, err := svc.CompleteOrder(ctx, orderID, "")
				return err
			},
			wantErr: service.ErrOrderNotFulfillable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewStore()
			svc := service.NewOrderService(store, store, nil, nil)
			order, _, _ := seedOrder(t, store, tt.deliveryType)

			err := tt.act(svc, order.ID)
			assert.ErrorIs(t, err, tt.wantErr)

			got, err := svc.GetOrder(ctx, order.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.OrderStatusPending, got.Status, "a refused transition must not move the order")
			assert.Empty(t, got.Notifications, "a refused transition must not notify")
		})
	}
}

func TestOrderLifecycle_TransitionIsNotRepeatable(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewOrderService(store, store, nil, nil)
	order, _, _ := seedOrder(t, store, domain.DeliveryTypePickup)

	_, err := svc.MarkReadyForPickup(ctx, order.ID, "")
	require.NoError(t, err)

	_, err = svc.MarkReadyForPickup(ctx, order.ID, "")
	assert.ErrorIs(t, err, service.ErrOrderNotPending)
}

func TestCancelByCustomer_RestoresStock(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewOrderService(store, store, nil, nil)
	order, customer, product := seedOrder(t, store, domain.DeliveryTypePickup)

	require.Equal(t, int32(2), stockOf(t, store, product.ID), "checkout took 3 of 5")

	cancelled, err := svc.CancelByCustomer(ctx, order.ID, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, int32(5), stockOf(t, store, product.ID), "cancel must return the full quantity")
	assert.Empty(t, cancelled.Notifications, "customer-initiated cancel sends no notification")
}

func TestCancelByCustomer_OnlyOwnerAndOnlyPending(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewOrderService(store, store, nil, nil)
	order, customer, product := seedOrder(t, store, domain.DeliveryTypePickup)

	_, err := svc.CancelByCustomer(ctx, order.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotOrderOwner)

	_, err = svc.MarkReadyForPickup(ctx, order.ID, "")
	require.NoError(t, err)

	_, err = svc.CancelByCustomer(ctx, order.ID, customer.ID)
	assert.ErrorIs(t, err, service.ErrCannotCancelAtStage)
	assert.Equal(t, int32(2), stockOf(t, store, product.ID), "a refused cancel must not restore stock")
}

func TestCancelByAdmin_AnyStageButCompleted(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewOrderService(store, store, nil, nil)
	order, _, product := seedOrder(t, store, domain.DeliveryTypePickup)

	_, err := svc.MarkReadyForPickup(ctx, order.ID, "")
	require.NoError(t, err)

	cancelled, err := svc.CancelByAdmin(ctx, order.ID, "out of beans", "")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, int32(5), stockOf(t, store, product.ID))
	assert.Equal(t, "out of beans", cancelled.AdminNotes, "reason doubles as notes when none given")

	last := cancelled.Notifications[len(cancelled.Notifications)-1]
	assert.Equal(t,
		fmt.Sprintf("Order #%s has been cancelled. Reason: out of beans", order.Reference()),
		last.Message)
}

func TestCancelByAdmin_Fallbacks(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewOrderService(store, store, nil, nil)
	order, _, _ := seedOrder(t, store, domain.DeliveryTypePickup)

	cancelled, err := svc.CancelByAdmin(ctx, order.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, "Cancelled by admin", cancelled.AdminNotes)
	last := cancelled.Notifications[len(cancelled.Notifications)-1]
	assert.Equal(t,
		fmt.Sprintf("Order #%s has been cancelled. Reason: your order has been cancelled", order.Reference()),
		last.Message)
}

func TestCancelByAdmin_CompletedIsFinal(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewOrderService(store, store, nil, nil)
	order, _, product := seedOrder(t, store, domain.DeliveryTypePickup)

	_, err := svc.MarkReadyForPickup(ctx, order.ID, "")
	require.NoError(t, err)
	_, err = svc.CompleteOrder(ctx, order.ID, "")
	require.NoError(t, err)

	_, err = svc.CancelByAdmin(ctx, order.ID, "too late", "")
	assert.ErrorIs(t, err, domain.ErrCannotCancelCompleted)
	assert.Equal(t, int32(2), stockOf(t, store, product.ID), "completed orders keep their stock")
}

func TestMarkNotificationsRead_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewOrderService(store, store, nil, nil)
	order, customer, _ := seedOrder(t, store, domain.DeliveryTypePickup)

	_, err := svc.MarkReadyForPickup(ctx, order.ID, "")
	require.NoError(t, err)

	notifications, err := svc.ListNotifications(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.False(t, notifications[0].Read)

	require.NoError(t, svc.MarkNotificationsRead(ctx, order.ID))
	require.NoError(t, svc.MarkNotificationsRead(ctx, order.ID), "second call is a no-op, not an error")

	notifications, err = svc.ListNotifications(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.True(t, notifications[0].Read)

	err = svc.MarkNotificationsRead(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestListOrders_CustomerViews(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewOrderService(store, store, nil, nil)
	checkout := service.NewCheckoutService(store, store, store, store, nil)

	customer := seedCustomer(t, store, "maria")
	product := seedProduct(t, store, "Coffee", "10.00", 100)

	var orders []*domain.Order
	for i := 0; i < 3; i++ {
		seedCart(t, store, customer.ID, map[uuid.UUID]int32{product.ID: 1})
		order, err := checkout.Checkout(ctx, pickupParams(customer.ID))
		require.NoError(t, err)
		orders = append(orders, order)
	}

	// One completed, one cancelled, one left pending.
	_, err := svc.MarkReadyForPickup(ctx, orders[0].ID, "")
	require.NoError(t, err)
	_, err = svc.CompleteOrder(ctx, orders[0].ID, "")
	require.NoError(t, err)
	_, err = svc.CancelByCustomer(ctx, orders[1].ID, customer.ID)
	require.NoError(t, err)

	all, err := svc.ListCustomerOrders(ctx, customer.ID)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	active, err := svc.ListActiveOrders(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, orders[2].ID, active[0].ID)

	history, err := svc.ListOrderHistory(ctx, customer.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestGetStatistics(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewOrderService(store, store, nil, nil)
	checkout := service.NewCheckoutService(store, store, store, store, nil)

	customer := seedCustomer(t, store, "maria")
	product := seedProduct(t, store, "Coffee", "10.00", 100)

	var orders []*domain.Order
	for i := 0; i < 3; i++ {
		seedCart(t, store, customer.ID, map[uuid.UUID]int32{product.ID: 2})
		order, err := checkout.Checkout(ctx, pickupParams(customer.ID))
		require.NoError(t, err)
		orders = append(orders, order)
	}
	_, err := svc.MarkReadyForPickup(ctx, orders[0].ID, "")
	require.NoError(t, err)
	_, err = svc.CompleteOrder(ctx, orders[0].ID, "")
	require.NoError(t, err)
	_, err = svc.CancelByCustomer(ctx, orders[1].ID, customer.ID)
	require.NoError(t, err)

	stats, err := svc.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(1), stats.Completed)
	assert.Equal(t, int64(1), stats.Cancelled)
	assert.Equal(t, int64(3), stats.Pickup)
	assert.Equal(t, int64(3), stats.CashPayments)
	assert.True(t, decimal.RequireFromString("20.00").Equal(stats.TotalRevenue),
		"only completed orders count toward revenue, got %s", stats.TotalRevenue)
}
