package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/upload"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/validator"
)

// Product image count bounds.
const (
	minProductImages = 1
	maxProductImages = 3
)

// ImageFile is an uploaded image file handed to CreateProductWithImages.
type ImageFile struct {
	Filename string
	Content  io.Reader
}

// ProductService implements catalog CRUD and image upload.
type ProductService struct {
	products repository.ProductRepository
	uploader upload.Uploader
	logger   *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(products repository.ProductRepository, uploader upload.Uploader, logger *slog.Logger) *ProductService {
	return &ProductService{
		products: products,
		uploader: uploader,
		logger:   logger,
	}
}

// CreateProduct creates a product from pre-resolved image URLs.
func (s *ProductService) CreateProduct(ctx context.Context, input domain.CreateProductInput) (*domain.Product, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Stock:       input.Stock,
		Images:      input.Images,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if product.Images == nil {
		product.Images = []string{}
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

// CreateProductWithImages uploads between one and three image files to the
// object store, then creates the product with the resulting URLs.
func (s *ProductService) CreateProductWithImages(ctx context.Context, input domain.CreateProductInput, files []ImageFile) (*domain.Product, error) {
	if len(files) < minProductImages || len(files) > maxProductImages {
		return nil, apperrors.InvalidInput(
			fmt.Sprintf("between %d and %d images are required", minProductImages, maxProductImages))
	}

	urls := make([]string, 0, len(files))
	for _, f := range files {
		url, err := s.uploader.Upload(ctx, f.Filename, f.Content)
		if err != nil {
			s.logger.ErrorContext(ctx, "image upload failed",
				slog.String("filename", f.Filename),
				slog.String("error", err.Error()),
			)
			return nil, apperrors.Internal(err)
		}
		urls = append(urls, url)
	}

	input.Images = urls
	return s.CreateProduct(ctx, input)
}

// GetProduct loads a product by ID.
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// ListProducts returns a page of products with the matching total count.
func (s *ProductService) ListProducts(ctx context.Context, params repository.ListParams) ([]*domain.Product, int, error) {
	products, err := s.products.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	count, err := s.products.Count(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	return products, count, nil
}

// UpdateProduct applies a partial update to an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, input domain.UpdateProductInput) (*domain.Product, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load product: %w", err)
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.Images != nil {
		product.Images = input.Images
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	return product, nil
}

// DeleteProduct removes a product from the catalog.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}
