package event

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
)

// Domain event types. All events go to the single storefront topic; consumers
// filter on the event_type header.
const (
	TypeOrderCreated         = "order.created"
	TypeOrderStatusChanged   = "order.status_changed"
	TypeProductRatingUpdated = "product.rating_updated"
	TypeStockAdjusted        = "stock.adjusted"
)

// Aggregate type constants.
const (
	AggregateTypeOrder   = "order"
	AggregateTypeProduct = "product"
)

// Publisher is the interface the services use to emit domain events. Publish
// failures are logged by callers and never fail the originating operation.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
	PublishOrderStatusChanged(ctx context.Context, orderID uuid.UUID, oldStatus, newStatus domain.OrderStatus) error
	PublishProductRatingUpdated(ctx context.Context, productID uuid.UUID, agg domain.RatingAggregate) error
	PublishStockAdjusted(ctx context.Context, productID uuid.UUID, delta, newStock int) error
}

// OrderCreatedData is the payload for an order.created event.
type OrderCreatedData struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Status     string          `json:"status"`
	TotalPrice float64         `json:"total_price"`
	Items      []OrderItemData `json:"items"`
}

// OrderItemData is the event payload for an order line item.
type OrderItemData struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// OrderStatusChangedData is the payload for an order.status_changed event.
type OrderStatusChangedData struct {
	OrderID   string `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// ProductRatingUpdatedData is the payload for a product.rating_updated event.
type ProductRatingUpdatedData struct {
	ProductID     string  `json:"product_id"`
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
}

// StockAdjustedData is the payload for a stock.adjusted event.
type StockAdjustedData struct {
	ProductID string `json:"product_id"`
	Delta     int    `json:"delta"`
	NewStock  int    `json:"new_stock"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new domain event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

// PublishOrderCreated publishes an order.created event with the order snapshot.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	items := make([]OrderItemData, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemData{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			Price:     item.PriceAtOrder,
		}
	}

	data := OrderCreatedData{
		ID:         order.ID.String(),
		UserID:     order.UserID.String(),
		Status:     string(order.Status),
		TotalPrice: order.TotalPrice,
		Items:      items,
	}

	return p.publish(ctx, TypeOrderCreated, order.ID.String(), AggregateTypeOrder, data)
}

// PublishOrderStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, orderID uuid.UUID, oldStatus, newStatus domain.OrderStatus) error {
	data := OrderStatusChangedData{
		OrderID:   orderID.String(),
		OldStatus: string(oldStatus),
		NewStatus: string(newStatus),
	}
	return p.publish(ctx, TypeOrderStatusChanged, orderID.String(), AggregateTypeOrder, data)
}

// PublishProductRatingUpdated publishes a product.rating_updated event.
func (p *Producer) PublishProductRatingUpdated(ctx context.Context, productID uuid.UUID, agg domain.RatingAggregate) error {
	data := ProductRatingUpdatedData{
		ProductID:     productID.String(),
		AverageRating: agg.AverageRating,
		TotalReviews:  agg.TotalReviews,
	}
	return p.publish(ctx, TypeProductRatingUpdated, productID.String(), AggregateTypeProduct, data)
}

// PublishStockAdjusted publishes a stock.adjusted event.
func (p *Producer) PublishStockAdjusted(ctx context.Context, productID uuid.UUID, delta, newStock int) error {
	data := StockAdjustedData{
		ProductID: productID.String(),
		Delta:     delta,
		NewStock:  newStock,
	}
	return p.publish(ctx, TypeStockAdjusted, productID.String(), AggregateTypeProduct, data)
}

func (p *Producer) publish(ctx context.Context, eventType, aggregateID, aggregateType string, data any) error {
	evt, err := pkgkafka.NewEvent(eventType, aggregateID, aggregateType, data)
	if err != nil {
		return err
	}

	if err := p.kafka.Publish(ctx, evt); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published domain event",
		slog.String("event_type", eventType),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}
