package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rcabrera/tindahan/internal/domain"
)

// OrderStore implements domain.OrderStore using PostgreSQL.
type OrderStore struct {
	pool *pgxpool.Pool
}

var _ domain.OrderStore = (*OrderStore)(nil)

// NewOrderStore creates a PostgreSQL-backed order store.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

const orderColumns = `id, customer_id, customer_name, customer_email, customer_phone,
	total_amount, delivery_type, delivery_address, delivery_contact_number, delivery_notes,
	payment_method, status, admin_notes, created_at, updated_at, completed_at`

// CreateOrder inserts the order with its items in one transaction.
func (s *OrderStore) CreateOrder(ctx context.Context, o *domain.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	for i := range o.Items {
		if o.Items[i].ID == uuid.Nil {
			o.Items[i].ID = uuid.New()
		}
	}

	err := withTx(ctx, s.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO orders (id, customer_id, customer_name, customer_email, customer_phone,
				total_amount, delivery_type, delivery_address, delivery_contact_number, delivery_notes,
				payment_method, status, admin_notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING created_at, updated_at`,
			o.ID, o.CustomerID, o.CustomerName, o.CustomerEmail, o.CustomerPhone,
			o.TotalAmount, o.DeliveryType, o.DeliveryAddress, o.DeliveryContactNumber, o.DeliveryNotes,
			o.PaymentMethod, o.Status, o.AdminNotes,
		).Scan(&o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for _, it := range o.Items {
			_, err := tx.Exec(ctx, `
				INSERT INTO order_items (id, order_id, product_id, product_name, product_price, quantity, subtotal)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				it.ID, o.ID, it.ProductID, it.ProductName, it.ProductPrice, it.Quantity, it.Subtotal)
			if err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return domain.Internal(err, "order.create", "failed to create order")
	}
	return nil
}

// DeleteOrder removes the order and its items. Reserved for checkout
// compensation; customer-facing cancellation keeps the record.
func (s *OrderStore) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return domain.Internal(err, "order.delete", "failed to delete order")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// GetOrder returns the order with items and notifications.
func (s *OrderStore) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.Internal(err, "order.get", "failed to get order")
	}

	if err := s.loadItems(ctx, o); err != nil {
		return nil, err
	}
	if err := s.loadNotifications(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// ListOrders returns orders matching the filter, newest first, with items
// and notifications attached.
func (s *OrderStore) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	var (
		where []string
		args  []any
	)
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		where = append(where, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}
		args = append(args, statuses)
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if filter.DeliveryType != nil {
		args = append(args, *filter.DeliveryType)
		where = append(where, fmt.Sprintf("delivery_type = $%d", len(args)))
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.Internal(err, "order.list", "failed to list orders")
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, domain.Internal(err, "order.list", "failed to scan order")
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "order.list", "failed to iterate orders")
	}

	for i := range orders {
		if err := s.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
		if err := s.loadNotifications(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// SetOrderStatus updates the status, and completed_at when given.
func (s *OrderStore) SetOrderStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, completedAt *time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE orders
		SET status = $2, completed_at = COALESCE($3, completed_at), updated_at = now()
		WHERE id = $1`, id, status, completedAt)
	if err != nil {
		return domain.Internal(err, "order.set_status", "failed to set order status")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// SetAdminNotes replaces the admin notes.
func (s *OrderStore) SetAdminNotes(ctx context.Context, id uuid.UUID, notes string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE orders SET admin_notes = $2, updated_at = now() WHERE id = $1`, id, notes)
	if err != nil {
		return domain.Internal(err, "order.set_notes", "failed to set admin notes")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// AppendNotification atomically appends one notification to the order.
// The insert itself is the append; concurrent status changes each get their
// own row and none is lost.
func (s *OrderStore) AppendNotification(ctx context.Context, orderID uuid.UUID, message string) (*domain.Notification, error) {
	n := domain.Notification{
		ID:      uuid.New(),
		OrderID: orderID,
		Message: message,
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO order_notifications (id, order_id, message)
		VALUES ($1, $2, $3)
		RETURNING sent_at`, n.ID, orderID, message).Scan(&n.SentAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.Internal(err, "order.append_notification", "failed to append notification")
	}
	return &n, nil
}

// MarkNotificationsRead marks every notification on the order as read.
// Idempotent: already-read rows are simply matched again.
func (s *OrderStore) MarkNotificationsRead(ctx context.Context, orderID uuid.UUID) error {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
		return domain.Internal(err, "order.mark_read", "failed to check order existence")
	}
	if !exists {
		return domain.ErrOrderNotFound
	}

	_, err := s.pool.Exec(ctx,
		`UPDATE order_notifications SET read = TRUE WHERE order_id = $1`, orderID)
	if err != nil {
		return domain.Internal(err, "order.mark_read", "failed to mark notifications read")
	}
	return nil
}

// ListCustomerNotifications returns all notifications across the customer's
// orders, newest first, each joined with its order's current status.
func (s *OrderStore) ListCustomerNotifications(ctx context.Context, customerID uuid.UUID) ([]domain.CustomerNotification, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT n.order_id, n.message, n.sent_at, n.read, o.status
		FROM order_notifications n
		JOIN orders o ON o.id = n.order_id
		WHERE o.customer_id = $1
		ORDER BY n.sent_at DESC`, customerID)
	if err != nil {
		return nil, domain.Internal(err, "order.list_notifications", "failed to list notifications")
	}
	defer rows.Close()

	var out []domain.CustomerNotification
	for rows.Next() {
		var n domain.CustomerNotification
		if err := rows.Scan(&n.OrderID, &n.Message, &n.SentAt, &n.Read, &n.OrderStatus); err != nil {
			return nil, domain.Internal(err, "order.list_notifications", "failed to scan notification")
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "order.list_notifications", "failed to iterate notifications")
	}
	return out, nil
}

// GetOrderStatistics aggregates counts and completed-order revenue.
func (s *OrderStore) GetOrderStatistics(ctx context.Context) (*domain.OrderStatistics, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT
			count(*),
			count(*) FILTER (WHERE status = 'pending'),
			count(*) FILTER (WHERE status = 'ready_for_pickup'),
			count(*) FILTER (WHERE status = 'out_for_delivery'),
			count(*) FILTER (WHERE status = 'completed'),
			count(*) FILTER (WHERE status = 'cancelled'),
			count(*) FILTER (WHERE delivery_type = 'pickup'),
			count(*) FILTER (WHERE delivery_type = 'delivery'),
			count(*) FILTER (WHERE payment_method = 'gcash'),
			count(*) FILTER (WHERE payment_method = 'cash'),
			COALESCE(sum(total_amount) FILTER (WHERE status = 'completed'), 0)
		FROM orders`)

	var stats domain.OrderStatistics
	err := row.Scan(&stats.Total, &stats.Pending, &stats.ReadyForPickup, &stats.OutForDelivery,
		&stats.Completed, &stats.Cancelled, &stats.Pickup, &stats.Delivery,
		&stats.GCashPayments, &stats.CashPayments, &stats.TotalRevenue)
	if err != nil {
		return nil, domain.Internal(err, "order.statistics", "failed to aggregate order statistics")
	}
	return &stats, nil
}

func (s *OrderStore) loadItems(ctx context.Context, o *domain.Order) error {
	rows, err := s.pool.Query(ctx, `
		SELECT id, product_id, product_name, product_price, quantity, subtotal
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`, o.ID)
	if err != nil {
		return domain.Internal(err, "order.items", "failed to list order items")
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName, &it.ProductPrice, &it.Quantity, &it.Subtotal); err != nil {
			return domain.Internal(err, "order.items", "failed to scan order item")
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

func (s *OrderStore) loadNotifications(ctx context.Context, o *domain.Order) error {
	rows, err := s.pool.Query(ctx, `
		SELECT id, order_id, message, sent_at, read
		FROM order_notifications
		WHERE order_id = $1
		ORDER BY sent_at, id`, o.ID)
	if err != nil {
		return domain.Internal(err, "order.notifications", "failed to list order notifications")
	}
	defer rows.Close()

	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.OrderID, &n.Message, &n.SentAt, &n.Read); err != nil {
			return domain.Internal(err, "order.notifications", "failed to scan notification")
		}
		o.Notifications = append(o.Notifications, n)
	}
	return rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.TotalAmount, &o.DeliveryType, &o.DeliveryAddress, &o.DeliveryContactNumber, &o.DeliveryNotes,
		&o.PaymentMethod, &o.Status, &o.AdminNotes, &o.CreatedAt, &o.UpdatedAt, &o.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
