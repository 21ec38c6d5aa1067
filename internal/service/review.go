package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// ErrProductGoneRollback is returned when the reviewed product vanished
// between the review upsert and the aggregate write. The review has been
// deleted again by the time this error is returned.
var ErrProductGoneRollback = &apperrors.AppError{
	Code:    "PRODUCT_NOT_FOUND_ROLLBACK",
	Message: "product no longer exists; review rolled back",
	Status:  http.StatusNotFound,
	Err:     apperrors.ErrNotFound,
}

// ReviewService validates review eligibility, upserts reviews and maintains
// the reviewed product's rating aggregate by full recompute.
//
// The upsert, recompute and aggregate write are three separate statements
// with no cross-row atomicity. Two concurrent submissions for the same
// product can interleave and leave the aggregate reflecting a stale review
// set; serial submissions always converge to the correct value.
type ReviewService struct {
	reviews  repository.ReviewRepository
	orders   repository.OrderRepository
	products repository.ProductRepository
	producer event.Publisher
	logger   *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviews repository.ReviewRepository,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	producer event.Publisher,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		orders:   orders,
		products: products,
		producer: producer,
		logger:   logger,
	}
}

// SubmitReview records the user's rating for a product they received in a
// delivered order, then recomputes the product's aggregate rating from all
// stored reviews. If the aggregate write finds the product gone, the review
// just written is deleted as compensation.
func (s *ReviewService) SubmitReview(ctx context.Context, user *domain.User, input domain.SubmitReviewInput) (*domain.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}

	order, err := s.orders.GetByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load order: %w", err)
	}

	if order.ClerkID != user.ClerkID {
		return nil, apperrors.Unauthorized("order does not belong to the requesting user")
	}

	if order.Status != domain.OrderStatusDelivered {
		return nil, apperrors.Conflict("ORDER_NOT_DELIVERED",
			"reviews can only be submitted for delivered orders")
	}

	if !order.ContainsProduct(input.ProductID) {
		return nil, apperrors.Conflict("PRODUCT_NOT_IN_ORDER",
			"product is not part of the given order")
	}

	review := &domain.Review{
		ID:        uuid.New(),
		OrderID:   order.ID,
		ProductID: input.ProductID,
		UserID:    user.ID,
		Rating:    input.Rating,
		Comment:   input.Comment,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	stored, err := s.reviews.Upsert(ctx, review)
	if err != nil {
		return nil, fmt.Errorf("upsert review: %w", err)
	}

	agg, err := s.recomputeAggregate(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	if err := s.products.UpdateStats(ctx, input.ProductID, agg); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Deleting the product cascades to its reviews, so the review may
			// already be gone by the time we compensate. A missing row means
			// the compensation goal is already met.
			delErr := s.reviews.Delete(ctx, stored.ID)
			if delErr != nil && !errors.Is(delErr, apperrors.ErrNotFound) {
				s.logger.ErrorContext(ctx, "review compensation failed",
					slog.String("review_id", stored.ID.String()),
					slog.String("product_id", input.ProductID.String()),
					slog.String("error", delErr.Error()),
				)
				return nil, fmt.Errorf("compensate review upsert: %w", delErr)
			}
			return nil, ErrProductGoneRollback
		}
		return nil, fmt.Errorf("write rating aggregate: %w", err)
	}

	if err := s.producer.PublishProductRatingUpdated(ctx, input.ProductID, agg); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.rating_updated event",
			slog.String("product_id", input.ProductID.String()),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	return stored, nil
}

// ListReviews returns all reviews for a product, newest first.
func (s *ReviewService) ListReviews(ctx context.Context, productID uuid.UUID) ([]*domain.Review, error) {
	reviews, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// recomputeAggregate derives the rating summary from the full current review
// set rather than applying an incremental delta.
func (s *ReviewService) recomputeAggregate(ctx context.Context, productID uuid.UUID) (domain.RatingAggregate, error) {
	reviews, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return domain.RatingAggregate{}, fmt.Errorf("load reviews for aggregate: %w", err)
	}

	agg := domain.RatingAggregate{TotalReviews: len(reviews)}
	if len(reviews) > 0 {
		var sum int
		for _, r := range reviews {
			sum += r.Rating
		}
		agg.AverageRating = float64(sum) / float64(len(reviews))
	}

	return agg, nil
}
