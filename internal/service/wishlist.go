package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aldermoor/storefront/internal/domain"
	"github.com/aldermoor/storefront/internal/repository"
	"github.com/aldermoor/storefront/pkg/pagination"
)

// WishlistService manages per-user product wishlists.
type WishlistService struct {
	wishlists repository.WishlistRepository
	products  repository.ProductRepository
	logger    *slog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(
	wishlists repository.WishlistRepository,
	products repository.ProductRepository,
	logger *slog.Logger,
) *WishlistService {
	return &WishlistService{
		wishlists: wishlists,
		products:  products,
		logger:    logger,
	}
}

// Add saves a product to the user's wishlist. The product must exist; the
// insert itself is idempotent.
func (s *WishlistService) Add(ctx context.Context, userID, productID string) error {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return fmt.Errorf("get product: %w", err)
	}

	if err := s.wishlists.Add(ctx, userID, productID); err != nil {
		return fmt.Errorf("add to wishlist: %w", err)
	}

	s.logger.InfoContext(ctx, "product added to wishlist",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
	)

	return nil
}

// Remove deletes a product from the user's wishlist.
func (s *WishlistService) Remove(ctx context.Context, userID, productID string) error {
	if err := s.wishlists.Remove(ctx, userID, productID); err != nil {
		return fmt.Errorf("remove from wishlist: %w", err)
	}
	return nil
}

// Exists reports whether the product is on the user's wishlist.
func (s *WishlistService) Exists(ctx context.Context, userID, productID string) (bool, error) {
	exists, err := s.wishlists.Exists(ctx, userID, productID)
	if err != nil {
		return false, fmt.Errorf("check wishlist: %w", err)
	}
	return exists, nil
}

// List returns a page of the user's wishlist and the total count.
func (s *WishlistService) List(ctx context.Context, userID string, params pagination.Params) ([]*domain.WishlistItem, int, error) {
	items, total, err := s.wishlists.List(ctx, userID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list wishlist: %w", err)
	}
	return items, total, nil
}
