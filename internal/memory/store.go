// Package memory provides an in-memory implementation of the domain stores.
// It backs the service tests and the dev mode of the server. Stock mutation
// is serialized per product, not with one store-wide lock, mirroring the
// conditional-update semantics of the Postgres backend.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rcabrera/tindahan/internal/domain"
)

// Store implements every domain store interface over process memory.
type Store struct {
	mu sync.RWMutex

	products  map[uuid.UUID]*productEntry
	carts     map[uuid.UUID]*domain.Cart
	orders    map[uuid.UUID]*domain.Order
	customers map[uuid.UUID]*domain.Customer
	chats     map[uuid.UUID]*domain.Chat

	// ordersMu guards order mutation (status, notes, notifications) so
	// notification appends from concurrent callers never lose entries.
	ordersMu sync.Mutex

	chatsMu sync.Mutex
}

// productEntry pairs a product with its own lock so stock operations on
// different products never contend.
type productEntry struct {
	mu sync.Mutex
	p  domain.Product
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		products:  make(map[uuid.UUID]*productEntry),
		carts:     make(map[uuid.UUID]*domain.Cart),
		orders:    make(map[uuid.UUID]*domain.Order),
		customers: make(map[uuid.UUID]*domain.Customer),
		chats:     make(map[uuid.UUID]*domain.Chat),
	}
}

// Compile-time interface checks.
var (
	_ domain.ProductStore  = (*Store)(nil)
	_ domain.CartStore     = (*Store)(nil)
	_ domain.OrderStore    = (*Store)(nil)
	_ domain.CustomerStore = (*Store)(nil)
	_ domain.ChatStore     = (*Store)(nil)
)

// =============================================================================
// ProductStore / inventory ledger
// =============================================================================

// GetProduct returns a copy of the product or ErrProductNotFound.
func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	s.mu.RLock()
	entry, ok := s.products[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrProductNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	p := entry.p
	return &p, nil
}

// CreateProduct inserts a catalog entry.
func (s *Store) CreateProduct(ctx context.Context, p *domain.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = &productEntry{p: *p}
	return nil
}

// ReserveStock decrements stock by qty, refusing to cross the zero floor.
// The check and the decrement happen under the product's own lock, so two
// concurrent reservations against the same product cannot jointly oversell.
func (s *Store) ReserveStock(ctx context.Context, id uuid.UUID, qty int32) error {
	s.mu.RLock()
	entry, ok := s.products[id]
	s.mu.RUnlock()
	if !ok {
		return domain.ErrProductNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.p.Stock < qty {
		return domain.ErrInsufficientStock
	}
	entry.p.Stock -= qty
	return nil
}

// ReleaseStock increments stock by qty unconditionally.
func (s *Store) ReleaseStock(ctx context.Context, id uuid.UUID, qty int32) error {
	s.mu.RLock()
	entry, ok := s.products[id]
	s.mu.RUnlock()
	if !ok {
		return domain.ErrProductNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.p.Stock += qty
	return nil
}

// =============================================================================
// CartStore
// =============================================================================

// GetPendingCart returns a copy of the customer's pending cart.
func (s *Store) GetPendingCart(ctx context.Context, customerID uuid.UUID) (*domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.carts {
		if c.CustomerID == customerID && c.Status == domain.CartStatusPending {
			return copyCart(c), nil
		}
	}
	return nil, domain.ErrCartNotFound
}

// CreateCart creates an empty pending cart for the customer.
func (s *Store) CreateCart(ctx context.Context, customerID uuid.UUID) (*domain.Cart, error) {
	now := time.Now()
	c := &domain.Cart{
		ID:         uuid.New(),
		CustomerID: customerID,
		Status:     domain.CartStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[c.ID] = c
	return copyCart(c), nil
}

// AddItem appends a new active line.
func (s *Store) AddItem(ctx context.Context, cartID, productID uuid.UUID, qty int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[cartID]
	if !ok {
		return domain.ErrCartNotFound
	}
	c.Items = append(c.Items, domain.CartItem{
		ID:        uuid.New(),
		ProductID: productID,
		Quantity:  qty,
		AddedAt:   time.Now(),
	})
	c.UpdatedAt = time.Now()
	return nil
}

// IncrementItemQuantity adds delta to the active line for productID.
func (s *Store) IncrementItemQuantity(ctx context.Context, cartID, productID uuid.UUID, delta int32) error {
	return s.mutateActiveItem(cartID, productID, func(it *domain.CartItem) {
		it.Quantity += delta
	})
}

// SetItemQuantity overwrites the quantity on the active line for productID.
func (s *Store) SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, qty int32) error {
	return s.mutateActiveItem(cartID, productID, func(it *domain.CartItem) {
		it.Quantity = qty
	})
}

// RemoveItem soft-deletes the active line for productID.
func (s *Store) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	return s.mutateActiveItem(cartID, productID, func(it *domain.CartItem) {
		it.Removed = true
	})
}

func (s *Store) mutateActiveItem(cartID, productID uuid.UUID, fn func(*domain.CartItem)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[cartID]
	if !ok {
		return domain.ErrCartNotFound
	}
	for i := range c.Items {
		if !c.Items[i].Removed && c.Items[i].ProductID == productID {
			fn(&c.Items[i])
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return domain.ErrCartItemNotFound
}

// SetCartStatus transitions the cart record.
func (s *Store) SetCartStatus(ctx context.Context, cartID uuid.UUID, status domain.CartStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[cartID]
	if !ok {
		return domain.ErrCartNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	return nil
}

func copyCart(c *domain.Cart) *domain.Cart {
	out := *c
	out.Items = append([]domain.CartItem(nil), c.Items...)
	return &out
}

// =============================================================================
// OrderStore
// =============================================================================

// CreateOrder inserts the order with its items.
func (s *Store) CreateOrder(ctx context.Context, o *domain.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	for i := range o.Items {
		if o.Items[i].ID == uuid.Nil {
			o.Items[i].ID = uuid.New()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = copyOrder(o)
	return nil
}

// DeleteOrder removes an order entirely (checkout compensation only).
func (s *Store) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(s.orders, id)
	return nil
}

// GetOrder returns a copy of the order.
func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return copyOrder(o), nil
}

// ListOrders returns orders matching the filter, newest first.
func (s *Store) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Order
	for _, o := range s.orders {
		if filter.CustomerID != nil && o.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.DeliveryType != nil && o.DeliveryType != *filter.DeliveryType {
			continue
		}
		if len(filter.Statuses) > 0 && !statusIn(o.Status, filter.Statuses) {
			continue
		}
		out = append(out, *copyOrder(o))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// SetOrderStatus updates the status, and completedAt when non-nil.
func (s *Store) SetOrderStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, completedAt *time.Time) error {
	s.ordersMu.Lock()
	defer s.ordersMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = status
	if completedAt != nil {
		o.CompletedAt = completedAt
	}
	o.UpdatedAt = time.Now()
	return nil
}

// SetAdminNotes replaces the admin notes.
func (s *Store) SetAdminNotes(ctx context.Context, id uuid.UUID, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.AdminNotes = notes
	o.UpdatedAt = time.Now()
	return nil
}

// AppendNotification atomically appends one notification to the order.
func (s *Store) AppendNotification(ctx context.Context, orderID uuid.UUID, message string) (*domain.Notification, error) {
	s.ordersMu.Lock()
	defer s.ordersMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	n := domain.Notification{
		ID:      uuid.New(),
		OrderID: orderID,
		Message: message,
		SentAt:  time.Now(),
	}
	o.Notifications = append(o.Notifications, n)
	o.UpdatedAt = time.Now()
	return &n, nil
}

// MarkNotificationsRead marks every notification on the order as read.
func (s *Store) MarkNotificationsRead(ctx context.Context, orderID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	for i := range o.Notifications {
		o.Notifications[i].Read = true
	}
	return nil
}

// ListCustomerNotifications returns all notifications across the customer's
// orders, newest first.
func (s *Store) ListCustomerNotifications(ctx context.Context, customerID uuid.UUID) ([]domain.CustomerNotification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.CustomerNotification
	for _, o := range s.orders {
		if o.CustomerID != customerID {
			continue
		}
		for _, n := range o.Notifications {
			out = append(out, domain.CustomerNotification{
				OrderID:     o.ID,
				Message:     n.Message,
				SentAt:      n.SentAt,
				Read:        n.Read,
				OrderStatus: o.Status,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SentAt.After(out[j].SentAt)
	})
	return out, nil
}

// GetOrderStatistics aggregates counts and completed-order revenue.
func (s *Store) GetOrderStatistics(ctx context.Context) (*domain.OrderStatistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &domain.OrderStatistics{}
	for _, o := range s.orders {
		stats.Total++
		switch o.Status {
		case domain.OrderStatusPending:
			stats.Pending++
		case domain.OrderStatusReadyForPickup:
			stats.ReadyForPickup++
		case domain.OrderStatusOutForDelivery:
			stats.OutForDelivery++
		case domain.OrderStatusCompleted:
			stats.Completed++
			stats.TotalRevenue = stats.TotalRevenue.Add(o.TotalAmount)
		case domain.OrderStatusCancelled:
			stats.Cancelled++
		}
		switch o.DeliveryType {
		case domain.DeliveryTypePickup:
			stats.Pickup++
		case domain.DeliveryTypeDelivery:
			stats.Delivery++
		}
		switch o.PaymentMethod {
		case domain.PaymentMethodGCash:
			stats.GCashPayments++
		case domain.PaymentMethodCash:
			stats.CashPayments++
		}
	}
	return stats, nil
}

func statusIn(status domain.OrderStatus, set []domain.OrderStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

func copyOrder(o *domain.Order) *domain.Order {
	out := *o
	out.Items = append([]domain.OrderItem(nil), o.Items...)
	out.Notifications = append([]domain.Notification(nil), o.Notifications...)
	return &out
}

// =============================================================================
// CustomerStore
// =============================================================================

// GetCustomer returns the customer or ErrCustomerNotFound.
func (s *Store) GetCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[id]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	out := *c
	return &out, nil
}

// CreateCustomer inserts a directory entry.
func (s *Store) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.customers[c.ID] = &cp
	return nil
}

// =============================================================================
// ChatStore
// =============================================================================

// GetChatByCustomer returns the customer's chat with all messages.
func (s *Store) GetChatByCustomer(ctx context.Context, customerID uuid.UUID) (*domain.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.chats {
		if c.CustomerID == customerID {
			return copyChat(c), nil
		}
	}
	return nil, domain.ErrChatNotFound
}

// GetChat returns the chat by ID with all messages.
func (s *Store) GetChat(ctx context.Context, chatID uuid.UUID) (*domain.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.chats[chatID]
	if !ok {
		return nil, domain.ErrChatNotFound
	}
	return copyChat(c), nil
}

// CreateChat creates an empty active chat for the customer.
func (s *Store) CreateChat(ctx context.Context, customerID uuid.UUID, customerName, customerEmail string) (*domain.Chat, error) {
	now := time.Now()
	c := &domain.Chat{
		ID:            uuid.New(),
		CustomerID:    customerID,
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		Status:        domain.ChatStatusActive,
		LastMessageAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats[c.ID] = c
	return copyChat(c), nil
}

// AppendMessage atomically appends a message and bumps the opposite side's
// unread counter.
func (s *Store) AppendMessage(ctx context.Context, chatID uuid.UUID, msg domain.ChatMessage) (*domain.ChatMessage, error) {
	s.chatsMu.Lock()
	defer s.chatsMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chats[chatID]
	if !ok {
		return nil, domain.ErrChatNotFound
	}

	msg.ID = uuid.New()
	msg.ChatID = chatID
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now()
	}
	c.Messages = append(c.Messages, msg)
	c.LastMessage = msg.Body
	c.LastMessageAt = msg.SentAt
	c.LastMessageBy = msg.SenderType
	if msg.SenderType == domain.SenderCustomer {
		c.UnreadAdmin++
	} else {
		c.UnreadCustomer++
	}
	c.UpdatedAt = time.Now()
	return &msg, nil
}

// AssignAdmin records the first admin to reply.
func (s *Store) AssignAdmin(ctx context.Context, chatID, adminID uuid.UUID, adminName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chats[chatID]
	if !ok {
		return domain.ErrChatNotFound
	}
	if c.AdminID == nil {
		id := adminID
		c.AdminID = &id
		c.AdminName = adminName
		c.UpdatedAt = time.Now()
	}
	return nil
}

// MarkMessagesRead marks the other side's messages as read and resets the
// reader's unread counter.
func (s *Store) MarkMessagesRead(ctx context.Context, chatID uuid.UUID, reader domain.SenderType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chats[chatID]
	if !ok {
		return domain.ErrChatNotFound
	}
	for i := range c.Messages {
		if c.Messages[i].SenderType != reader {
			c.Messages[i].Read = true
		}
	}
	if reader == domain.SenderCustomer {
		c.UnreadCustomer = 0
	} else {
		c.UnreadAdmin = 0
	}
	c.UpdatedAt = time.Now()
	return nil
}

// ListActiveChats returns active chats ordered by most recent message.
func (s *Store) ListActiveChats(ctx context.Context) ([]domain.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Chat
	for _, c := range s.chats {
		if c.Status == domain.ChatStatusActive {
			cp := copyChat(c)
			cp.Messages = nil
			out = append(out, *cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessageAt.After(out[j].LastMessageAt)
	})
	return out, nil
}

// SetChatStatus transitions the conversation between active and closed.
func (s *Store) SetChatStatus(ctx context.Context, chatID uuid.UUID, status domain.ChatStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chats[chatID]
	if !ok {
		return domain.ErrChatNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	return nil
}

// DeleteChat removes the conversation and its messages.
func (s *Store) DeleteChat(ctx context.Context, chatID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chats[chatID]; !ok {
		return domain.ErrChatNotFound
	}
	delete(s.chats, chatID)
	return nil
}

func copyChat(c *domain.Chat) *domain.Chat {
	out := *c
	out.Messages = append([]domain.ChatMessage(nil), c.Messages...)
	if c.AdminID != nil {
		id := *c.AdminID
		out.AdminID = &id
	}
	return &out
}
