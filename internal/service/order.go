package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// OrderService orchestrates order creation against inventory and applies
// status transitions.
type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	inventory *InventoryService
	producer  event.Publisher
	logger    *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	inventory *InventoryService,
	producer event.Publisher,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		products:  products,
		inventory: inventory,
		producer:  producer,
		logger:    logger,
	}
}

// CreateOrder validates the request against current stock, persists the order
// with a value snapshot of each line item, then decrements stock per item.
//
// The pre-check pass only reads; no writes happen until it passes for every
// item. The decrement pass runs after the order row exists and is not covered
// by a rollback of the order: if stock was consumed by a concurrent order
// between the two passes, the insufficient-stock failure is returned while
// the order row remains in pending status. Reconciliation of such orders is
// an operational concern, not handled here.
func (s *OrderService) CreateOrder(ctx context.Context, user *domain.User, input domain.CreateOrderInput) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, apperrors.InvalidInput("order must contain at least one item")
	}

	// Pre-check pass. Reads only.
	var totalPrice float64
	items := make([]domain.OrderItem, len(input.Items))
	for i, itemInput := range input.Items {
		if itemInput.Quantity < 1 {
			return nil, apperrors.InvalidInput("item quantity must be at least 1")
		}

		product, err := s.products.GetByID(ctx, itemInput.ProductID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("load product %s: %w", itemInput.ProductID, err)
		}

		if product.Stock < itemInput.Quantity {
			return nil, apperrors.Conflict("INSUFFICIENT_STOCK",
				fmt.Sprintf("insufficient stock for product %s", product.ID))
		}

		image := ""
		if len(product.Images) > 0 {
			image = product.Images[0]
		}

		items[i] = domain.OrderItem{
			ProductID:    product.ID,
			Quantity:     itemInput.Quantity,
			PriceAtOrder: product.Price,
			Name:         product.Name,
			Image:        image,
		}
		totalPrice += product.Price * float64(itemInput.Quantity)
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:              uuid.New(),
		UserID:          user.ID,
		ClerkID:         user.ClerkID,
		Items:           items,
		Status:          domain.OrderStatusPending,
		TotalPrice:      totalPrice,
		ShippingAddress: input.ShippingAddress,
		PaymentResult:   input.PaymentResult,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// Decrement pass. The order row already exists; a failure here surfaces
	// the inventory error and leaves the order in pending status.
	for _, item := range order.Items {
		if err := s.inventory.DecreaseStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.WarnContext(ctx, "stock decrement failed after order creation",
				slog.String("order_id", order.ID.String()),
				slog.String("product_id", item.ProductID.String()),
				slog.Int("quantity", item.Quantity),
				slog.String("error", err.Error()),
			)
			return nil, err
		}
	}

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID.String()),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	return order, nil
}

// GetOrder loads an order by ID.
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// ListUserOrders returns a page of the user's orders, newest first.
func (s *OrderService) ListUserOrders(ctx context.Context, userID uuid.UUID, params repository.ListParams) ([]*domain.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, fmt.Errorf("list user orders: %w", err)
	}
	return orders, nil
}

// ListOrders returns a page of all orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, params repository.ListParams) ([]*domain.Order, error) {
	orders, err := s.orders.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus sets the order's status and stamps the shipped/delivered
// timestamps once. Transitions between any two valid status values are
// allowed; only the value set is enforced. Repeated transitions to the same
// state keep the first-set timestamp.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus domain.OrderStatus) (*domain.Order, error) {
	if !domain.IsValidOrderStatus(newStatus) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid order status %q", newStatus))
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load order: %w", err)
	}

	oldStatus := order.Status
	now := time.Now().UTC()

	order.Status = newStatus
	if newStatus == domain.OrderStatusShipped && order.ShippedAt == nil {
		order.ShippedAt = &now
	}
	if newStatus == domain.OrderStatusDelivered && order.DeliveredAt == nil {
		order.DeliveredAt = &now
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save order status: %w", err)
	}

	if oldStatus != newStatus {
		if err := s.producer.PublishOrderStatusChanged(ctx, order.ID, oldStatus, newStatus); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
				slog.String("order_id", order.ID.String()),
				slog.String("error", err.Error()),
			)
		}
	}

	return order, nil
}
