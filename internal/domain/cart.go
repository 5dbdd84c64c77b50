package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Cart-related domain errors.
var (
	ErrCartNotFound     = &Error{Code: ENOTFOUND, Message: "Cart not found"}
	ErrCartItemNotFound = &Error{Code: ENOTFOUND, Message: "Item not found in cart"}
	ErrEmptyCart        = &Error{Code: EINVALID, Message: "Cart is empty"}
	ErrInvalidQuantity  = &Error{Code: EINVALID, Message: "Quantity must be a positive integer"}
)

// CartStatus is the lifecycle state of a cart record.
type CartStatus string

const (
	// CartStatusPending is the single mutable cart a customer shops with.
	CartStatusPending CartStatus = "pending"

	// CartStatusOrdered is terminal; set exactly once at successful checkout.
	CartStatusOrdered CartStatus = "ordered"
)

// Cart holds a customer's candidate line items. A customer has at most one
// pending cart at a time; it is created lazily on first add and retired at
// checkout.
type Cart struct {
	ID         uuid.UUID  `json:"id"`
	CustomerID uuid.UUID  `json:"customerId"`
	Status     CartStatus `json:"status"`
	Items      []CartItem `json:"items"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// CartItem is one cart line. Removal is a soft delete: the flag is set and
// never cleared, so re-adding a removed product appends a fresh line rather
// than reviving this one.
type CartItem struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"productId"`
	Quantity  int32     `json:"quantity"`
	Removed   bool      `json:"removed"`
	AddedAt   time.Time `json:"addedAt"`
}

// ActiveItems returns the non-removed lines in insertion order.
func (c *Cart) ActiveItems() []CartItem {
	items := make([]CartItem, 0, len(c.Items))
	for _, it := range c.Items {
		if !it.Removed {
			items = append(items, it)
		}
	}
	return items
}

// ActiveItem returns the non-removed line for productID, or nil.
// A product appears at most once among active lines.
func (c *Cart) ActiveItem(productID uuid.UUID) *CartItem {
	for i := range c.Items {
		if !c.Items[i].Removed && c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// CartStore persists carts and their lines.
type CartStore interface {
	// GetPendingCart returns the customer's pending cart with all lines
	// (removed included), or ErrCartNotFound.
	GetPendingCart(ctx context.Context, customerID uuid.UUID) (*Cart, error)

	// CreateCart creates an empty pending cart for the customer.
	CreateCart(ctx context.Context, customerID uuid.UUID) (*Cart, error)

	// AddItem appends a new active line to the cart.
	AddItem(ctx context.Context, cartID, productID uuid.UUID, qty int32) error

	// IncrementItemQuantity adds delta to the active line for productID.
	// Returns ErrCartItemNotFound if no active line matches.
	IncrementItemQuantity(ctx context.Context, cartID, productID uuid.UUID, delta int32) error

	// SetItemQuantity overwrites the quantity on the active line for
	// productID. Returns ErrCartItemNotFound if no active line matches.
	SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, qty int32) error

	// RemoveItem soft-deletes the active line for productID.
	// Returns ErrCartItemNotFound if no active line matches.
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error

	// SetCartStatus transitions the cart record. Used once per cart, to mark
	// it ordered at checkout.
	SetCartStatus(ctx context.Context, cartID uuid.UUID, status CartStatus) error
}
