package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rcabrera/tindahan/internal/domain"
)

// ProductStore implements domain.ProductStore using PostgreSQL.
//
// Stock mutation is a single conditional UPDATE, so the zero-floor check and
// the decrement are one atomic statement. Row-level locking inside Postgres
// serializes concurrent updates per product without blocking other products.
type ProductStore struct {
	pool *pgxpool.Pool
}

var _ domain.ProductStore = (*ProductStore)(nil)

// NewProductStore creates a PostgreSQL-backed product store.
func NewProductStore(pool *pgxpool.Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

const productColumns = `id, name, brand, category, variation, description, image_url, price, stock, is_active, is_deleted, created_at`

// GetProduct returns the product or ErrProductNotFound.
func (s *ProductStore) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Brand, &p.Category, &p.Variation, &p.Description,
		&p.ImageURL, &p.Price, &p.Stock, &p.IsActive, &p.IsDeleted, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, domain.Internal(err, "product.get", "failed to get product")
	}
	return &p, nil
}

// CreateProduct inserts a new catalog entry.
func (s *ProductStore) CreateProduct(ctx context.Context, p *domain.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO products (id, name, brand, category, variation, description, image_url, price, stock, is_active, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`,
		p.ID, p.Name, p.Brand, p.Category, p.Variation, p.Description,
		p.ImageURL, p.Price, p.Stock, p.IsActive, p.IsDeleted,
	).Scan(&p.CreatedAt)
	if err != nil {
		return domain.Internal(err, "product.create", "failed to create product")
	}
	return nil
}

// ReserveStock decrements stock by qty, refusing to cross the zero floor.
// The WHERE clause re-validates availability at the moment of the decrement;
// zero rows affected means either a shortage or an unknown product.
func (s *ProductStore) ReserveStock(ctx context.Context, id uuid.UUID, qty int32) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE products SET stock = stock - $2 WHERE id = $1 AND stock >= $2`, id, qty)
	if err != nil {
		return domain.Internal(err, "product.reserve_stock", "failed to reserve stock")
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
			return domain.Internal(err, "product.reserve_stock", "failed to check product existence")
		}
		if !exists {
			return domain.ErrProductNotFound
		}
		return domain.ErrInsufficientStock
	}
	return nil
}

// ReleaseStock increments stock by qty. Increments cannot violate the floor,
// so there is no condition to re-check.
func (s *ProductStore) ReleaseStock(ctx context.Context, id uuid.UUID, qty int32) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE products SET stock = stock + $2 WHERE id = $1`, id, qty)
	if err != nil {
		return domain.Internal(err, "product.release_stock", "failed to release stock")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
