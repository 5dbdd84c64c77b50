package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ErrCustomerNotFound is returned when the customer directory has no record.
var ErrCustomerNotFound = &Error{Code: ENOTFOUND, Message: "Customer not found"}

// Customer is the directory entry checkout denormalizes from. The core reads
// it; account management lives outside this service.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// DisplayName returns the customer's name, or "Guest" when unset.
func (c *Customer) DisplayName() string {
	if c.Name == "" {
		return "Guest"
	}
	return c.Name
}

// CustomerStore is the customer directory.
type CustomerStore interface {
	// GetCustomer returns the customer or ErrCustomerNotFound.
	GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error)

	// CreateCustomer inserts a directory entry.
	CreateCustomer(ctx context.Context, c *Customer) error
}
