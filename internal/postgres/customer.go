package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rcabrera/tindahan/internal/domain"
)

// CustomerStore implements domain.CustomerStore using PostgreSQL.
type CustomerStore struct {
	pool *pgxpool.Pool
}

var _ domain.CustomerStore = (*CustomerStore)(nil)

// NewCustomerStore creates a PostgreSQL-backed customer store.
func NewCustomerStore(pool *pgxpool.Pool) *CustomerStore {
	return &CustomerStore{pool: pool}
}

// GetCustomer returns the customer or ErrCustomerNotFound.
func (s *CustomerStore) GetCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, email, created_at FROM customers WHERE id = $1`, id)

	var c domain.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, domain.Internal(err, "customer.get", "failed to get customer")
	}
	return &c, nil
}

// CreateCustomer inserts a directory entry.
func (s *CustomerStore) CreateCustomer(ctx context.Context, c *domain.Customer) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO customers (id, name, email)
		VALUES ($1, $2, $3)
		RETURNING created_at`, c.ID, c.Name, c.Email).Scan(&c.CreatedAt)
	if err != nil {
		return domain.Internal(err, "customer.create", "failed to create customer")
	}
	return nil
}
