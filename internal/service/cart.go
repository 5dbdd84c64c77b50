package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/rcabrera/tindahan/internal/domain"
)

// CartService provides business logic for cart operations.
//
// A customer has at most one pending cart; it is created lazily on the first
// add. Removal is a soft delete and a product removed then re-added gets a
// fresh line. Two sessions of one customer mutating the same cart are
// last-write-wins, not locked.
type CartService interface {
	// AddItem adds qty of a product to the customer's pending cart,
	// incrementing the existing active line if one exists.
	AddItem(ctx context.Context, customerID, productID uuid.UUID, qty int32) (*CartView, error)

	// RemoveItem soft-deletes the active line for the product.
	RemoveItem(ctx context.Context, customerID, productID uuid.UUID) (*CartView, error)

	// SetQuantity overwrites the quantity on the active line.
	SetQuantity(ctx context.Context, customerID, productID uuid.UUID, qty int32) (*CartView, error)

	// GetActiveCart returns the pending cart with only active lines visible.
	// A customer with no pending cart gets an empty view, never an error.
	GetActiveCart(ctx context.Context, customerID uuid.UUID) (*CartView, error)
}

// CartView is the caller-facing shape of a cart: active lines only.
type CartView struct {
	ID         uuid.UUID         `json:"id"`
	CustomerID uuid.UUID         `json:"customerId"`
	Items      []domain.CartItem `json:"items"`
}

type cartService struct {
	carts    domain.CartStore
	products domain.ProductStore
}

// NewCartService creates the cart service.
func NewCartService(carts domain.CartStore, products domain.ProductStore) CartService {
	return &cartService{carts: carts, products: products}
}

func (s *cartService) AddItem(ctx context.Context, customerID, productID uuid.UUID, qty int32) (*CartView, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive || product.IsDeleted {
		return nil, domain.ErrProductNotFound
	}

	cart, err := s.pendingCart(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if line := cart.ActiveItem(productID); line != nil {
		if err := s.carts.IncrementItemQuantity(ctx, cart.ID, productID, qty); err != nil {
			return nil, err
		}
	} else {
		if err := s.carts.AddItem(ctx, cart.ID, productID, qty); err != nil {
			return nil, err
		}
	}

	return s.view(ctx, customerID)
}

func (s *cartService) RemoveItem(ctx context.Context, customerID, productID uuid.UUID) (*CartView, error) {
	cart, err := s.carts.GetPendingCart(ctx, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return nil, domain.ErrCartItemNotFound
		}
		return nil, err
	}

	if err := s.carts.RemoveItem(ctx, cart.ID, productID); err != nil {
		return nil, err
	}
	return s.view(ctx, customerID)
}

func (s *cartService) SetQuantity(ctx context.Context, customerID, productID uuid.UUID, qty int32) (*CartView, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	cart, err := s.carts.GetPendingCart(ctx, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return nil, domain.ErrCartItemNotFound
		}
		return nil, err
	}

	if err := s.carts.SetItemQuantity(ctx, cart.ID, productID, qty); err != nil {
		return nil, err
	}
	return s.view(ctx, customerID)
}

func (s *cartService) GetActiveCart(ctx context.Context, customerID uuid.UUID) (*CartView, error) {
	return s.view(ctx, customerID)
}

// pendingCart returns the customer's pending cart, creating one lazily.
func (s *cartService) pendingCart(ctx context.Context, customerID uuid.UUID) (*domain.Cart, error) {
	cart, err := s.carts.GetPendingCart(ctx, customerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, domain.ErrCartNotFound) {
		return nil, err
	}
	return s.carts.CreateCart(ctx, customerID)
}

// view projects the pending cart down to its active lines. No pending cart
// projects to an empty view.
func (s *cartService) view(ctx context.Context, customerID uuid.UUID) (*CartView, error) {
	cart, err := s.carts.GetPendingCart(ctx, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return &CartView{CustomerID: customerID, Items: []domain.CartItem{}}, nil
		}
		return nil, err
	}

	items := cart.ActiveItems()
	if items == nil {
		items = []domain.CartItem{}
	}
	return &CartView{ID: cart.ID, CustomerID: cart.CustomerID, Items: items}, nil
}
