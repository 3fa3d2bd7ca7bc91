// Package repository defines the persistence interfaces the service layer
// depends on. Postgres and Redis implementations live in subpackages.
package repository

import (
	"context"

	"github.com/ironabhi05/scatch-backend/internal/domain"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	// Create inserts a new user. Returns a conflict error when the email
	// is already registered.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// SetOTP stores the password-reset OTP hash and its expiry on the user.
	SetOTP(ctx context.Context, userID, otpHash string, expiresAt int64) error

	// UpdatePassword replaces the password hash and clears any pending OTP.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// ProductRepository defines persistence operations for the catalog.
type ProductRepository interface {
	// Create inserts a new product.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// GetByIDs retrieves the products with the given IDs. Missing IDs are
	// simply absent from the result.
	GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Product, error)

	// SearchByName returns the first product whose name contains the given
	// text, case-insensitively.
	SearchByName(ctx context.Context, name string) (*domain.Product, error)

	// List returns a page of products ordered by creation time along with
	// the total count.
	List(ctx context.Context, limit, offset int) ([]domain.Product, int, error)

	// Update replaces the mutable fields of a product.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product from the catalog.
	Delete(ctx context.Context, id string) error
}

// OrderRepository defines persistence operations for orders and their items.
type OrderRepository interface {
	// Create inserts an order and its items atomically. Returns a conflict
	// error when the order's cart snapshot was already converted.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order with items and resolved products.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// GetByIDForUser retrieves an order only if it belongs to the user.
	GetByIDForUser(ctx context.Context, id, userID string) (*domain.Order, error)

	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, int, error)

	// ListAll returns all orders with user summaries, newest first.
	ListAll(ctx context.Context, limit, offset int) ([]domain.Order, int, error)

	// UpdateItemStatus moves an order item from fromStatus to toStatus.
	// Returns a conflict error when the item is no longer in fromStatus.
	UpdateItemStatus(ctx context.Context, itemID, fromStatus, toStatus string) error

	// UpdateItemStatuses moves multiple order items from fromStatus to
	// toStatus. Returns a conflict error when any item has moved on.
	UpdateItemStatuses(ctx context.Context, itemIDs []string, fromStatus, toStatus string) error
}

// CartRepository defines persistence operations for carts. Writes are
// guarded by optimistic version checks.
type CartRepository interface {
	// Get retrieves the user's cart, or a not-found error.
	Get(ctx context.Context, userID string) (*domain.Cart, error)

	// SaveIfVersion persists the cart only if the stored version still
	// matches expectedVersion. A zero expectedVersion requires that no
	// cart exists yet.
	SaveIfVersion(ctx context.Context, cart *domain.Cart, expectedVersion int) error

	// DeleteIfVersion removes the cart only if the stored version still
	// matches expectedVersion.
	DeleteIfVersion(ctx context.Context, userID string, expectedVersion int) error

	// Delete removes the cart unconditionally.
	Delete(ctx context.Context, userID string) error
}
