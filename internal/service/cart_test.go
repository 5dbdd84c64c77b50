package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcabrera/tindahan/internal/domain"
	"github.com/rcabrera/tindahan/internal/memory"
	"github.com/rcabrera/tindahan/internal/service"
)

func TestCartAddItem_CreatesCartLazily(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewCartService(store, store)

	customer := seedCustomer(t, store, "maria")
	product := seedProduct(t, store, "Coffee", "10.00", 5)

	_, err := store.GetPendingCart(ctx, customer.ID)
	require.ErrorIs(t, err, domain.ErrCartNotFound)

	view, err := svc.AddItem(ctx, customer.ID, product.ID, 2)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, product.ID, view.Items[0].ProductID)
	assert.Equal(t, int32(2), view.Items[0].Quantity)

	// A second add of the same product increments the existing line.
	view, err = svc.AddItem(ctx, customer.ID, product.ID, 3)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int32(5), view.Items[0].Quantity)
}

func TestCartAddItem_Validation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewCartService(store, store)

	customer := seedCustomer(t, store, "maria")
	product := seedProduct(t, store, "Coffee", "10.00", 5)
	inactive := &domain.Product{Name: "Retired", Price: product.Price, Stock: 5, IsActive: false}
	require.NoError(t, store.CreateProduct(ctx, inactive))

	_, err := svc.AddItem(ctx, customer.ID, product.ID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = svc.AddItem(ctx, customer.ID, product.ID, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = svc.AddItem(ctx, customer.ID, uuid.New(), 1)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	_, err = svc.AddItem(ctx, customer.ID, inactive.ID, 1)
	assert.ErrorIs(t, err, domain.ErrProductNotFound, "inactive products cannot be carted")

	// None of the rejected adds created a cart.
	_, err = store.GetPendingCart(ctx, customer.ID)
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
}

func TestCartRemoveItem_SoftDeleteNeverRevives(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewCartService(store, store)

	customer := seedCustomer(t, store, "maria")
	product := seedProduct(t, store, "Coffee", "10.00", 5)

	_, err := svc.AddItem(ctx, customer.ID, product.ID, 2)
	require.NoError(t, err)

	view, err := svc.RemoveItem(ctx, customer.ID, product.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items, "removed lines are invisible")

	// The raw cart still carries the soft-deleted line.
	cart, err := store.GetPendingCart(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.True(t, cart.Items[0].Removed)

	// Re-adding starts a fresh line rather than reviving the old one.
	view, err = svc.AddItem(ctx, customer.ID, product.ID, 1)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int32(1), view.Items[0].Quantity)

	cart, err = store.GetPendingCart(ctx, customer.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2, "the dead line stays dead")
}

func TestCartRemoveItem_MissingLine(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewCartService(store, store)

	customer := seedCustomer(t, store, "maria")
	product := seedProduct(t, store, "Coffee", "10.00", 5)

	// No cart at all.
	_, err := svc.RemoveItem(ctx, customer.ID, product.ID)
	assert.ErrorIs(t, err, domain.ErrCartItemNotFound)

	// Cart exists but the product is not in it.
	_, err = svc.AddItem(ctx, customer.ID, product.ID, 1)
	require.NoError(t, err)
	_, err = svc.RemoveItem(ctx, customer.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrCartItemNotFound)

	// Removing an already-removed line is also a miss.
	_, err = svc.RemoveItem(ctx, customer.ID, product.ID)
	require.NoError(t, err)
	_, err = svc.RemoveItem(ctx, customer.ID, product.ID)
	assert.ErrorIs(t, err, domain.ErrCartItemNotFound)
}

func TestCartSetQuantity(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewCartService(store, store)

	customer := seedCustomer(t, store, "maria")
	product := seedProduct(t, store, "Coffee", "10.00", 5)

	_, err := svc.SetQuantity(ctx, customer.ID, product.ID, 3)
	assert.ErrorIs(t, err, domain.ErrCartItemNotFound, "set requires an existing line")

	_, err = svc.AddItem(ctx, customer.ID, product.ID, 1)
	require.NoError(t, err)

	view, err := svc.SetQuantity(ctx, customer.ID, product.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, int32(7), view.Items[0].Quantity)

	_, err = svc.SetQuantity(ctx, customer.ID, product.ID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestGetActiveCart_EmptyViewWithoutCart(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewCartService(store, store)

	customer := seedCustomer(t, store, "maria")

	view, err := svc.GetActiveCart(ctx, customer.ID)
	require.NoError(t, err)
	assert.NotNil(t, view.Items)
	assert.Empty(t, view.Items)
	assert.Equal(t, customer.ID, view.CustomerID)
}
