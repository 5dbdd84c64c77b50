package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rcabrera/tindahan/internal/domain"
)

// CheckoutService converts a customer's pending cart into an immutable order.
type CheckoutService interface {
	// Checkout validates the cart against current inventory, creates the
	// order, commits the stock decrements and retires the cart. It is
	// all-or-nothing: on any failure no order exists and stock is unchanged.
	Checkout(ctx context.Context, params CheckoutParams) (*domain.Order, error)
}

// CheckoutParams is the checkout request.
type CheckoutParams struct {
	CustomerID            uuid.UUID
	DeliveryType          domain.DeliveryType
	PaymentMethod         domain.PaymentMethod
	DeliveryAddress       string
	DeliveryContactNumber string
	DeliveryNotes         string
	CustomerPhone         string
}

type checkoutService struct {
	carts     domain.CartStore
	products  domain.ProductStore
	orders    domain.OrderStore
	customers domain.CustomerStore
	logger    *slog.Logger
}

// NewCheckoutService creates the checkout service.
func NewCheckoutService(
	carts domain.CartStore,
	products domain.ProductStore,
	orders domain.OrderStore,
	customers domain.CustomerStore,
	logger *slog.Logger,
) CheckoutService {
	if logger == nil {
		logger = slog.Default()
	}
	return &checkoutService{
		carts:     carts,
		products:  products,
		orders:    orders,
		customers: customers,
		logger:    logger,
	}
}

func (s *checkoutService) Checkout(ctx context.Context, params CheckoutParams) (*domain.Order, error) {
	// Validation happens before any mutation; an invalid request leaves
	// stock and carts untouched.
	if !params.DeliveryType.Valid() {
		return nil, domain.ErrInvalidDeliveryType
	}
	if !params.PaymentMethod.Valid() {
		return nil, domain.ErrInvalidPaymentMethod
	}
	if params.DeliveryType == domain.DeliveryTypeDelivery {
		if params.DeliveryAddress == "" || params.DeliveryContactNumber == "" {
			return nil, domain.ErrMissingDeliveryDetails
		}
	}

	customer, err := s.customers.GetCustomer(ctx, params.CustomerID)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.GetPendingCart(ctx, params.CustomerID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return nil, domain.ErrEmptyCart
		}
		return nil, err
	}
	activeItems := cart.ActiveItems()
	if len(activeItems) == 0 {
		return nil, ErrNoItemsInCart
	}

	// First pass: check availability and freeze prices. This read is
	// advisory only; the decrement below re-validates the floor.
	var (
		shortages  []domain.Shortage
		orderItems []domain.OrderItem
		total      decimal.Decimal
	)
	for _, line := range activeItems {
		product, err := s.products.GetProduct(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				shortages = append(shortages, domain.Shortage{
					ProductID:         line.ProductID,
					ProductName:       "Unknown",
					AvailableStock:    0,
					RequestedQuantity: line.Quantity,
				})
				continue
			}
			return nil, err
		}
		if product.Stock < line.Quantity {
			shortages = append(shortages, domain.Shortage{
				ProductID:         product.ID,
				ProductName:       product.Name,
				AvailableStock:    product.Stock,
				RequestedQuantity: line.Quantity,
			})
			continue
		}

		subtotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(subtotal)
		orderItems = append(orderItems, domain.OrderItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductPrice: product.Price,
			Quantity:     line.Quantity,
			Subtotal:     subtotal,
		})
	}
	if len(shortages) > 0 {
		return nil, domain.NewStockError("checkout", shortages)
	}

	order := &domain.Order{
		CustomerID:    customer.ID,
		CustomerName:  customer.DisplayName(),
		CustomerEmail: customer.Email,
		CustomerPhone: params.CustomerPhone,
		Items:         orderItems,
		TotalAmount:   total,
		DeliveryType:  params.DeliveryType,
		PaymentMethod: params.PaymentMethod,
		Status:        domain.OrderStatusPending,
	}
	if params.DeliveryType == domain.DeliveryTypeDelivery {
		order.DeliveryAddress = params.DeliveryAddress
		order.DeliveryContactNumber = params.DeliveryContactNumber
		order.DeliveryNotes = params.DeliveryNotes
	}
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	// Commit the decrements. A late race can still surface a shortage here;
	// compensate by releasing what was already reserved and deleting the
	// order, then report it the same way the first pass would have.
	for i, it := range order.Items {
		if err := s.products.ReserveStock(ctx, it.ProductID, it.Quantity); err != nil {
			s.rollback(ctx, order, i)
			if errors.Is(err, domain.ErrInsufficientStock) || errors.Is(err, domain.ErrProductNotFound) {
				return nil, domain.NewStockError("checkout", []domain.Shortage{s.shortageFor(ctx, it)})
			}
			return nil, err
		}
	}

	if err := s.carts.SetCartStatus(ctx, cart.ID, domain.CartStatusOrdered); err != nil {
		return nil, err
	}

	s.logger.Info("checkout completed",
		"order_id", order.ID,
		"customer_id", customer.ID,
		"total", order.TotalAmount,
		"items", len(order.Items))
	return order, nil
}

// rollback releases the first reserved lines of a half-committed checkout and
// deletes the order record.
func (s *checkoutService) rollback(ctx context.Context, order *domain.Order, reserved int) {
	for j := 0; j < reserved; j++ {
		it := order.Items[j]
		if err := s.products.ReleaseStock(ctx, it.ProductID, it.Quantity); err != nil {
			s.logger.Error("failed to release stock during checkout rollback",
				"order_id", order.ID, "product_id", it.ProductID, "error", err)
		}
	}
	if err := s.orders.DeleteOrder(ctx, order.ID); err != nil {
		s.logger.Error("failed to delete order during checkout rollback",
			"order_id", order.ID, "error", err)
	}
}

// shortageFor rebuilds the shortage record for a line that lost the stock
// race between validation and decrement.
func (s *checkoutService) shortageFor(ctx context.Context, it domain.OrderItem) domain.Shortage {
	shortage := domain.Shortage{
		ProductID:         it.ProductID,
		ProductName:       it.ProductName,
		AvailableStock:    0,
		RequestedQuantity: it.Quantity,
	}
	if product, err := s.products.GetProduct(ctx, it.ProductID); err == nil {
		shortage.AvailableStock = product.Stock
	}
	return shortage
}
