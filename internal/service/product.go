package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ironabhi05/scatch-backend/internal/domain"
	"github.com/ironabhi05/scatch-backend/internal/repository"
	apperrors "github.com/ironabhi05/scatch-backend/pkg/errors"
	"github.com/ironabhi05/scatch-backend/pkg/pagination"
)

// ProductService implements catalog management. Listings are public; only
// handlers behind the admin role reach the mutating operations.
type ProductService struct {
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(products repository.ProductRepository, logger *slog.Logger) *ProductService {
	return &ProductService{products: products, logger: logger}
}

// CreateProductInput holds the parameters for creating a product. Price is
// in minor currency units; Discount is a whole percentage.
type CreateProductInput struct {
	Name       string
	Price      int64
	Discount   int
	Image      string
	BgColor    string
	PanelColor string
	TextColor  string
}

// UpdateProductInput holds the optional fields for a product update. Nil
// fields are left unchanged.
type UpdateProductInput struct {
	Name       *string
	Price      *int64
	Discount   *int
	Image      *string
	BgColor    *string
	PanelColor *string
	TextColor  *string
}

// List returns a page of products.
func (s *ProductService) List(ctx context.Context, params pagination.Params) ([]domain.Product, int, error) {
	products, total, err := s.products.List(ctx, params.PerPage, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

// Get retrieves a product by ID.
func (s *ProductService) Get(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// Create adds a product to the catalog.
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if input.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}
	if input.Discount < 0 || input.Discount > 100 {
		return nil, apperrors.InvalidInput("discount must be between 0 and 100")
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:         uuid.New().String(),
		Name:       input.Name,
		Price:      input.Price,
		Discount:   input.Discount,
		Image:      input.Image,
		BgColor:    input.BgColor,
		PanelColor: input.PanelColor,
		TextColor:  input.TextColor,
		CreatedAt:  now,
		UpdatedAt:  now,
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

// Update modifies a product's fields.
func (s *ProductService) Update(ctx context.Context, productID string, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("name must not be empty")
		}
		product.Name = *input.Name
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, apperrors.InvalidInput("price must not be negative")
		}
		product.Price = *input.Price
	}
	if input.Discount != nil {
		if *input.Discount < 0 || *input.Discount > 100 {
			return nil, apperrors.InvalidInput("discount must be between 0 and 100")
		}
		product.Discount = *input.Discount
	}
	if input.Image != nil {
		product.Image = *input.Image
	}
	if input.BgColor != nil {
		product.BgColor = *input.BgColor
	}
	if input.PanelColor != nil {
		product.PanelColor = *input.PanelColor
	}
	if input.TextColor != nil {
		product.TextColor = *input.TextColor
	}
	product.UpdatedAt = time.Now().UTC()

	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID),
	)

	return product, nil
}

// Delete removes a product from the catalog. Existing order items keep their
// frozen price even after the product disappears.
func (s *ProductService) Delete(ctx context.Context, productID string) error {
	if err := s.products.Delete(ctx, productID); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", productID),
	)

	return nil
}
