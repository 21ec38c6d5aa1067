// Package repository defines the persistence interfaces consumed by the
// service layer. Implementations live in the postgres subpackage; tests use
// testify mocks.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
)

// ListParams carries pagination parameters for list queries.
type ListParams struct {
	Page     int
	PerPage  int
	Category string
}

// Offset returns the row offset for the current page.
func (p ListParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

// ProductRepository persists catalog products.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, params ListParams) ([]*domain.Product, error)
	Count(ctx context.Context, params ListParams) (int, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error

	// AdjustStock applies stock = stock + delta as a single atomic update and
	// returns the resulting stock. Returns NotFound if the product is missing.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error)

	// UpdateStats writes a recomputed rating aggregate onto the product.
	// Returns NotFound if the product no longer exists.
	UpdateStats(ctx context.Context, id uuid.UUID, agg domain.RatingAggregate) error
}

// OrderRepository persists customer orders.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params ListParams) ([]*domain.Order, error)
	List(ctx context.Context, params ListParams) ([]*domain.Order, error)
	Count(ctx context.Context) (int, error)

	// Save persists mutable order fields (status, shipped_at, delivered_at).
	Save(ctx context.Context, order *domain.Order) error

	TotalRevenue(ctx context.Context) (float64, error)
}

// ReviewRepository persists product reviews.
type ReviewRepository interface {
	// Upsert creates or updates the review keyed by (user_id, product_id) and
	// returns the stored row.
	Upsert(ctx context.Context, review *domain.Review) (*domain.Review, error)

	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Review, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserRepository persists users, their addresses and wishlists.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByClerkID(ctx context.Context, clerkID string) (*domain.User, error)
	List(ctx context.Context, params ListParams) ([]*domain.User, error)
	Count(ctx context.Context) (int, error)

	CreateAddress(ctx context.Context, address *domain.Address) error
	// UpdateAddress replaces the fields of the address identified by
	// address.ID, scoped to address.UserID.
	UpdateAddress(ctx context.Context, address *domain.Address) error
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error)
	DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error
	// ClearDefaultAddress unsets the default flag on all of the user's
	// addresses so a new default can be set.
	ClearDefaultAddress(ctx context.Context, userID uuid.UUID) error

	// AddWishlistItem fails with AlreadyExists when the product is already
	// on the user's wishlist.
	AddWishlistItem(ctx context.Context, item *domain.WishlistItem) error
	RemoveWishlistItem(ctx context.Context, userID, productID uuid.UUID) error
	ListWishlist(ctx context.Context, userID uuid.UUID) ([]*domain.WishlistItem, error)
}
