package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcabrera/tindahan/internal/domain"
	"github.com/rcabrera/tindahan/internal/memory"
)

func TestReserveStock_ConcurrentDecrementsHoldTheFloor(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	p := &domain.Product{Name: "Coffee", Price: decimal.NewFromInt(10), Stock: 50, IsActive: true}
	require.NoError(t, store.CreateProduct(ctx, p))

	// 100 goroutines each try to take 1; only 50 can win.
	var wg sync.WaitGroup
	var mu sync.Mutex
	var wins, losses int
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.ReserveStock(ctx, p.ID, 1)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else {
				assert.ErrorIs(t, err, domain.ErrInsufficientStock)
				losses++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, wins)
	assert.Equal(t, 50, losses)

	got, err := store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(0), got.Stock)
}

func TestReserveStock_ExactBoundary(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	p := &domain.Product{Name: "Coffee", Price: decimal.NewFromInt(10), Stock: 3, IsActive: true}
	require.NoError(t, store.CreateProduct(ctx, p))

	// Taking exactly the remaining stock is allowed.
	require.NoError(t, store.ReserveStock(ctx, p.ID, 3))

	err := store.ReserveStock(ctx, p.ID, 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	require.NoError(t, store.ReleaseStock(ctx, p.ID, 3))
	got, err := store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(3), got.Stock)
}

func TestReserveStock_UnknownProduct(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	id := uuid.New()
	err := store.ReserveStock(ctx, id, 1)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	err = store.ReleaseStock(ctx, id, 1)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestStoreReads_ReturnCopies(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	c := &domain.Customer{Name: "maria", Email: "maria@example.com"}
	require.NoError(t, store.CreateCustomer(ctx, c))
	cart, err := store.CreateCart(ctx, c.ID)
	require.NoError(t, err)

	p := &domain.Product{Name: "Coffee", Price: decimal.NewFromInt(10), Stock: 5, IsActive: true}
	require.NoError(t, store.CreateProduct(ctx, p))
	require.NoError(t, store.AddItem(ctx, cart.ID, p.ID, 2))

	// Mutating a returned cart must not leak back into the store.
	got, err := store.GetPendingCart(ctx, c.ID)
	require.NoError(t, err)
	got.Items[0].Quantity = 99
	got.Status = domain.CartStatusOrdered

	fresh, err := store.GetPendingCart(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(2), fresh.Items[0].Quantity)
	assert.Equal(t, domain.CartStatusPending, fresh.Status)
}
