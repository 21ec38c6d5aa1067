package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

// ValidOrderStatuses lists every accepted status value. Transitions between
// any two values are allowed; only the value set is enforced.
var ValidOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusShipped,
	OrderStatusDelivered,
}

// IsValidOrderStatus reports whether s is one of the accepted status values.
func IsValidOrderStatus(s OrderStatus) bool {
	for _, v := range ValidOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// OrderItem is a value snapshot of a product line taken at order creation.
// It is never resynchronized with later product changes.
type OrderItem struct {
	ProductID    uuid.UUID `json:"product_id"`
	Quantity     int       `json:"quantity"`
	PriceAtOrder float64   `json:"price_at_order"`
	Name         string    `json:"name"`
	Image        string    `json:"image"`
}

// ShippingAddress is the destination captured on the order.
type ShippingAddress struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// PaymentResult records the outcome reported by the payment provider.
type PaymentResult struct {
	Provider      string `json:"provider"`
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

// Order is a customer order. The item list is immutable after creation; only
// Status, ShippedAt and DeliveredAt change afterwards, and only through the
// status update path.
type Order struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	ClerkID         string          `json:"clerk_id"`
	Items           []OrderItem     `json:"items"`
	Status          OrderStatus     `json:"status"`
	TotalPrice      float64         `json:"total_price"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentResult   *PaymentResult  `json:"payment_result,omitempty"`
	ShippedAt       *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ContainsProduct reports whether the order's item list includes productID.
func (o *Order) ContainsProduct(productID uuid.UUID) bool {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// OrderItemInput is a requested line item on order creation.
type OrderItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gte=1"`
}

// CreateOrderInput carries the fields needed to create an order.
type CreateOrderInput struct {
	Items           []OrderItemInput `json:"items" validate:"dive"`
	ShippingAddress ShippingAddress  `json:"shipping_address" validate:"required"`
	PaymentResult   *PaymentResult   `json:"payment_result"`
}
