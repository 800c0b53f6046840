package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aldermoor/storefront/internal/domain"
	"github.com/aldermoor/storefront/internal/repository"
	apperrors "github.com/aldermoor/storefront/pkg/errors"
	"github.com/aldermoor/storefront/pkg/pagination"
)

// ProductService implements catalog business logic. Reads are public;
// mutations are admin only, enforced by the router.
type ProductService struct {
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(products repository.ProductRepository, logger *slog.Logger) *ProductService {
	return &ProductService{
		products: products,
		logger:   logger,
	}
}

// CreateProductInput holds the parameters for adding a catalog item.
type CreateProductInput struct {
	Name          string
	Description   string
	Thumbnail     string
	Price         float64
	AffiliateLink string
	Categories    []string
	Tags          []string
}

// UpdateProductInput holds partial changes to a catalog item.
type UpdateProductInput struct {
	Name          *string
	Description   *string
	Thumbnail     *string
	Price         *float64
	AffiliateLink *string
	Categories    *[]string
	Tags          *[]string
}

// CreateProduct adds an item to the catalog.
func (s *ProductService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if input.Price < 0 {
		return nil, apperrors.InvalidInput("price cannot be negative")
	}
	if len(input.Categories) == 0 {
		return nil, apperrors.InvalidInput("at least one category is required")
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:            uuid.New().String(),
		Name:          input.Name,
		Description:   input.Description,
		Thumbnail:     input.Thumbnail,
		Price:         input.Price,
		AffiliateLink: input.AffiliateLink,
		Categories:    input.Categories,
		Tags:          input.Tags,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if product.Tags == nil {
		product.Tags = []string{}
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("name", product.Name),
	)

	return product, nil
}

// GetProduct returns one catalog item.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// ListProducts returns a filtered page of the catalog.
func (s *ProductService) ListProducts(ctx context.Context, filter repository.ProductFilter, params pagination.Params) ([]*domain.Product, int, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, 0, apperrors.InvalidInput("min_price cannot exceed max_price")
	}

	products, total, err := s.products.List(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

// UpdateProduct applies partial changes to a catalog item.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("name cannot be empty")
		}
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Thumbnail != nil {
		product.Thumbnail = *input.Thumbnail
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, apperrors.InvalidInput("price cannot be negative")
		}
		product.Price = *input.Price
	}
	if input.AffiliateLink != nil {
		product.AffiliateLink = *input.AffiliateLink
	}
	if input.Categories != nil {
		if len(*input.Categories) == 0 {
			return nil, apperrors.InvalidInput("at least one category is required")
		}
		product.Categories = *input.Categories
	}
	if input.Tags != nil {
		product.Tags = *input.Tags
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	return product, nil
}

// DeleteProduct removes a catalog item.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
	)

	return nil
}
