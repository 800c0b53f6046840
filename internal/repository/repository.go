package repository

import (
	"context"
	"time"

	"github.com/aldermoor/storefront/internal/domain"
	"github.com/aldermoor/storefront/pkg/pagination"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their normalized email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update modifies an existing user in the store.
	Update(ctx context.Context, user *domain.User) error

	// UpdateLastLogin records the time of the user's latest successful login.
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error

	// List returns a page of users and the total count.
	List(ctx context.Context, params pagination.Params) ([]*domain.User, int, error)

	// Delete removes a user from the store by their identifier.
	Delete(ctx context.Context, id string) error
}

// RefreshTokenRepository defines the interface for refresh token persistence.
// Tokens are stored as digests and removed on use; deletion doubles as the
// single-use gate during rotation.
type RefreshTokenRepository interface {
	// Create stores a new refresh token digest.
	Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// Find retrieves the stored record matching the user and digest.
	Find(ctx context.Context, userID, tokenHash string) (*domain.RefreshToken, error)

	// Delete removes the record matching the user and digest, reporting
	// whether a row was actually deleted. A false return means another
	// request consumed the token first.
	Delete(ctx context.Context, userID, tokenHash string) (bool, error)

	// DeleteByUserID removes every refresh token for the user, ending all
	// their sessions. Returns the number of rows removed.
	DeleteByUserID(ctx context.Context, userID string) (int64, error)

	// DeleteExpired prunes tokens past their expiry. Returns the number of
	// rows removed.
	DeleteExpired(ctx context.Context) (int64, error)
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	Search   string
	Category string
	MinPrice *float64
	MaxPrice *float64
}

// ProductRepository defines the interface for catalog persistence operations.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error

	// List returns a filtered page of products and the total count.
	List(ctx context.Context, filter ProductFilter, params pagination.Params) ([]*domain.Product, int, error)
}

// PostFilter narrows blog post listings.
type PostFilter struct {
	Status   string
	AuthorID string
	Tag      string
	Search   string
}

// PostRepository defines the interface for blog post persistence operations.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id string) error

	// List returns a filtered page of posts and the total count.
	List(ctx context.Context, filter PostFilter, params pagination.Params) ([]*domain.Post, int, error)
}

// WishlistRepository defines the interface for wishlist persistence operations.
type WishlistRepository interface {
	// Add inserts a product into the user's wishlist (idempotent).
	Add(ctx context.Context, userID, productID string) error

	// Remove deletes a product from the user's wishlist.
	Remove(ctx context.Context, userID, productID string) error

	// List returns a page of wishlist items for the user and the total count.
	List(ctx context.Context, userID string, params pagination.Params) ([]*domain.WishlistItem, int, error)

	// Exists checks whether a product is in the user's wishlist.
	Exists(ctx context.Context, userID, productID string) (bool, error)
}
