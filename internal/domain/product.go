package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog item. Stock is mutated only through the inventory
// service; AverageRating and TotalReviews only through the review service's
// aggregate recompute.
type Product struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	Category      string    `json:"category"`
	Stock         int       `json:"stock"`
	AverageRating float64   `json:"average_rating"`
	TotalReviews  int       `json:"total_reviews"`
	Images        []string  `json:"images"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RatingAggregate is the recomputed review summary written back onto a product.
type RatingAggregate struct {
	AverageRating float64
	TotalReviews  int
}

// CreateProductInput carries the fields needed to create a product.
type CreateProductInput struct {
	Name        string   `json:"name" validate:"required,min=2,max=200"`
	Description string   `json:"description" validate:"max=5000"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Category    string   `json:"category" validate:"required"`
	Stock       int      `json:"stock" validate:"gte=0"`
	Images      []string `json:"images" validate:"omitempty,min=1,max=3,dive,url"`
}

// UpdateProductInput carries optional fields for a partial product update.
type UpdateProductInput struct {
	Name        *string  `json:"name" validate:"omitempty,min=2,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Category    *string  `json:"category"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
	Images      []string `json:"images" validate:"omitempty,min=1,max=3,dive,url"`
}
