package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rcabrera/tindahan/internal/domain"
)

// CartStore implements domain.CartStore using PostgreSQL.
//
// Removal is a soft delete: the row keeps its removed flag forever, and a
// re-added product gets a fresh row. Line mutations therefore always target
// the single non-removed row for a product.
type CartStore struct {
	pool *pgxpool.Pool
}

var _ domain.CartStore = (*CartStore)(nil)

// NewCartStore creates a PostgreSQL-backed cart store.
func NewCartStore(pool *pgxpool.Pool) *CartStore {
	return &CartStore{pool: pool}
}

// GetPendingCart returns the customer's pending cart with all lines, removed
// ones included, in insertion order.
func (s *CartStore) GetPendingCart(ctx context.Context, customerID uuid.UUID) (*domain.Cart, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, customer_id, status, created_at, updated_at
		FROM carts
		WHERE customer_id = $1 AND status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1`, customerID)

	var c domain.Cart
	err := row.Scan(&c.ID, &c.CustomerID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCartNotFound
		}
		return nil, domain.Internal(err, "cart.get_pending", "failed to get pending cart")
	}

	items, err := s.cartItems(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Items = items
	return &c, nil
}

func (s *CartStore) cartItems(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, product_id, quantity, removed, added_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY added_at, id`, cartID)
	if err != nil {
		return nil, domain.Internal(err, "cart.items", "failed to list cart items")
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Quantity, &it.Removed, &it.AddedAt); err != nil {
			return nil, domain.Internal(err, "cart.items", "failed to scan cart item")
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "cart.items", "failed to iterate cart items")
	}
	return items, nil
}

// CreateCart creates an empty pending cart for the customer.
func (s *CartStore) CreateCart(ctx context.Context, customerID uuid.UUID) (*domain.Cart, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO carts (id, customer_id, status)
		VALUES ($1, $2, 'pending')
		RETURNING id, customer_id, status, created_at, updated_at`,
		uuid.New(), customerID)

	var c domain.Cart
	err := row.Scan(&c.ID, &c.CustomerID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, domain.Internal(err, "cart.create", "failed to create cart")
	}
	return &c, nil
}

// AddItem appends a new active line.
func (s *CartStore) AddItem(ctx context.Context, cartID, productID uuid.UUID, qty int32) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO cart_items (id, cart_id, product_id, quantity)
		SELECT $1, $2, $3, $4
		WHERE EXISTS (SELECT 1 FROM carts WHERE id = $2)`,
		uuid.New(), cartID, productID, qty)
	if err != nil {
		return domain.Internal(err, "cart.add_item", "failed to add cart item")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCartNotFound
	}
	return s.touch(ctx, cartID)
}

// IncrementItemQuantity adds delta to the active line for productID.
func (s *CartStore) IncrementItemQuantity(ctx context.Context, cartID, productID uuid.UUID, delta int32) error {
	return s.updateActiveItem(ctx, cartID, productID,
		`UPDATE cart_items SET quantity = quantity + $3
		 WHERE cart_id = $1 AND product_id = $2 AND NOT removed`, delta)
}

// SetItemQuantity overwrites the quantity on the active line for productID.
func (s *CartStore) SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, qty int32) error {
	return s.updateActiveItem(ctx, cartID, productID,
		`UPDATE cart_items SET quantity = $3
		 WHERE cart_id = $1 AND product_id = $2 AND NOT removed`, qty)
}

// RemoveItem soft-deletes the active line for productID. The flag is never
// cleared afterwards.
func (s *CartStore) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE cart_items SET removed = TRUE
		WHERE cart_id = $1 AND product_id = $2 AND NOT removed`, cartID, productID)
	if err != nil {
		return domain.Internal(err, "cart.remove_item", "failed to remove cart item")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCartItemNotFound
	}
	return s.touch(ctx, cartID)
}

func (s *CartStore) updateActiveItem(ctx context.Context, cartID, productID uuid.UUID, query string, arg int32) error {
	tag, err := s.pool.Exec(ctx, query, cartID, productID, arg)
	if err != nil {
		return domain.Internal(err, "cart.update_item", "failed to update cart item")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCartItemNotFound
	}
	return s.touch(ctx, cartID)
}

// SetCartStatus transitions the cart record.
func (s *CartStore) SetCartStatus(ctx context.Context, cartID uuid.UUID, status domain.CartStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE carts SET status = $2, updated_at = now() WHERE id = $1`, cartID, status)
	if err != nil {
		return domain.Internal(err, "cart.set_status", "failed to set cart status")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCartNotFound
	}
	return nil
}

func (s *CartStore) touch(ctx context.Context, cartID uuid.UUID) error {
	if _, err := s.pool.Exec(ctx,
		`UPDATE carts SET updated_at = now() WHERE id = $1`, cartID); err != nil {
		return domain.Internal(err, "cart.touch", "failed to touch cart")
	}
	return nil
}
