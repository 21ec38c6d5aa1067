package domain

import (
	"time"

	"github.com/google/uuid"
)

// Review is a product rating left by a user. At most one review exists per
// (UserID, ProductID) pair; re-submission overwrites the prior rating.
type Review struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	ProductID uuid.UUID `json:"product_id"`
	UserID    uuid.UUID `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubmitReviewInput carries the fields needed to submit a review.
type SubmitReviewInput struct {
	OrderID   uuid.UUID `json:"order_id" validate:"required"`
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Rating    int       `json:"rating" validate:"required"`
	Comment   string    `json:"comment" validate:"max=2000"`
}
