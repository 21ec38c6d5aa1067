package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// InventoryService adjusts product stock. Decrements that would take stock
// negative are undone with a compensating increment on the same row; the two
// writes are separate statements, so a concurrent reader can observe a
// transient negative stock between them.
type InventoryService struct {
	products repository.ProductRepository
	producer event.Publisher
	logger   *slog.Logger
}

// NewInventoryService creates a new inventory service.
func NewInventoryService(products repository.ProductRepository, producer event.Publisher, logger *slog.Logger) *InventoryService {
	return &InventoryService{
		products: products,
		producer: producer,
		logger:   logger,
	}
}

// DecreaseStock removes quantity units from the product's stock. If the
// decrement leaves stock negative, a compensating increment restores it and
// the call fails with an insufficient-stock conflict. If the compensating
// write itself fails, that failure is surfaced instead; stock is then left
// negative, a documented limitation of the single-compensation protocol.
func (s *InventoryService) DecreaseStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return apperrors.InvalidInput("quantity must be greater than zero")
	}

	newStock, err := s.products.AdjustStock(ctx, productID, -quantity)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return fmt.Errorf("decrease stock: %w", err)
	}

	if newStock < 0 {
		if _, err := s.products.AdjustStock(ctx, productID, quantity); err != nil {
			s.logger.ErrorContext(ctx, "stock compensation failed",
				slog.String("product_id", productID.String()),
				slog.Int("quantity", quantity),
				slog.String("error", err.Error()),
			)
			return fmt.Errorf("compensate stock decrement: %w", err)
		}
		return apperrors.Conflict("INSUFFICIENT_STOCK",
			fmt.Sprintf("insufficient stock for product %s", productID))
	}

	s.publishAdjusted(ctx, productID, -quantity, newStock)
	return nil
}

// IncreaseStock adds quantity units to the product's stock.
func (s *InventoryService) IncreaseStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return apperrors.InvalidInput("quantity must be greater than zero")
	}

	newStock, err := s.products.AdjustStock(ctx, productID, quantity)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return fmt.Errorf("increase stock: %w", err)
	}

	s.publishAdjusted(ctx, productID, quantity, newStock)
	return nil
}

func (s *InventoryService) publishAdjusted(ctx context.Context, productID uuid.UUID, delta, newStock int) {
	if s.producer == nil {
		return
	}
	if err := s.producer.PublishStockAdjusted(ctx, productID, delta, newStock); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish stock.adjusted event",
			slog.String("product_id", productID.String()),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}
}
