package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product-related domain errors.
var (
	ErrProductNotFound = &Error{Code: ENOTFOUND, Message: "Product not found"}

	// ErrInsufficientStock is returned by ProductStore.ReserveStock when the
	// conditional decrement would push stock below zero. Checkout converts it
	// into a StockError carrying the full shortage list.
	ErrInsufficientStock = &Error{Code: ECONFLICT, Message: "Insufficient stock"}
)

// Product is a catalog entity. The core references products but does not own
// them; stock is mutated only through the ReserveStock/ReleaseStock primitives.
type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Category    string          `json:"category"`
	Variation   string          `json:"variation,omitempty"`
	Description string          `json:"description,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int32           `json:"stock"`
	IsActive    bool            `json:"isActive"`
	IsDeleted   bool            `json:"isDeleted"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ProductStore is the inventory ledger. Both stock primitives must be
// serialized per product, never with one store-wide lock: two concurrent
// checkouts touching disjoint products proceed without blocking each other.
type ProductStore interface {
	// GetProduct returns the product or ErrProductNotFound.
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)

	// CreateProduct inserts a new catalog entry.
	CreateProduct(ctx context.Context, p *Product) error

	// ReserveStock atomically decrements stock by qty. It re-validates the
	// zero floor at the moment of the decrement and returns
	// ErrInsufficientStock if the result would be negative, leaving stock
	// untouched.
	ReserveStock(ctx context.Context, id uuid.UUID, qty int32) error

	// ReleaseStock atomically increments stock by qty. Increments cannot
	// violate the floor invariant, so release is unconditional; it is the
	// compensating half of ReserveStock, used by cancellation and checkout
	// rollback.
	ReleaseStock(ctx context.Context, id uuid.UUID, qty int32) error
}
