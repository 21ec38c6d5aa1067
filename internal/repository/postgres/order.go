package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
// Line items are a value snapshot stored as JSONB on the order row; they are
// written once at creation and never updated.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderColumns = `id, user_id, clerk_id, items, status, total_price, shipping_address, payment_result, shipped_at, delivered_at, created_at, updated_at`

// Create inserts a new order with its item snapshot.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}

	addressJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshal shipping address: %w", err)
	}

	var paymentJSON []byte
	if o.PaymentResult != nil {
		paymentJSON, err = json.Marshal(o.PaymentResult)
		if err != nil {
			return fmt.Errorf("marshal payment result: %w", err)
		}
	}

	query := `
		INSERT INTO orders (id, user_id, clerk_id, items, status, total_price, shipping_address, payment_result, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.pool.Exec(ctx, query,
		o.ID,
		o.UserID,
		o.ClerkID,
		itemsJSON,
		o.Status,
		o.TotalPrice,
		addressJSON,
		paymentJSON,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

// GetByID retrieves an order by its ID.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	o, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id.String())
		}
		return nil, err
	}

	return o, nil
}

// ListByUser returns a page of the user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID, params repository.ListParams) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	perPage := params.PerPage
	if perPage <= 0 {
		perPage = 20
	}

	rows, err := r.pool.Query(ctx, query, userID, perPage, params.Offset())
	if err != nil {
		return nil, fmt.Errorf("list user orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// List returns a page of all orders, newest first.
func (r *OrderRepository) List(ctx context.Context, params repository.ListParams) ([]*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	perPage := params.PerPage
	if perPage <= 0 {
		perPage = 20
	}

	rows, err := r.pool.Query(ctx, query, perPage, params.Offset())
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// Count returns the total number of orders.
func (r *OrderRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return count, nil
}

// Save persists the mutable order fields (status and timestamps). The item
// snapshot is immutable and deliberately not written here.
func (r *OrderRepository) Save(ctx context.Context, o *domain.Order) error {
	query := `
		UPDATE orders
		SET status = $1, shipped_at = $2, delivered_at = $3, updated_at = $4
		WHERE id = $5`

	ct, err := r.pool.Exec(ctx, query, o.Status, o.ShippedAt, o.DeliveredAt, time.Now().UTC(), o.ID)
	if err != nil {
		return fmt.Errorf("save order: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", o.ID.String())
	}

	return nil
}

// TotalRevenue sums total_price across all orders.
func (r *OrderRepository) TotalRevenue(ctx context.Context) (float64, error) {
	var total float64
	if err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(total_price), 0) FROM orders`).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum order revenue: %w", err)
	}
	return total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		o           domain.Order
		itemsJSON   []byte
		addressJSON []byte
		paymentJSON []byte
	)

	if err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.ClerkID,
		&itemsJSON,
		&o.Status,
		&o.TotalPrice,
		&addressJSON,
		&paymentJSON,
		&o.ShippedAt,
		&o.DeliveredAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	if o.Items == nil {
		o.Items = []domain.OrderItem{}
	}

	if err := json.Unmarshal(addressJSON, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("unmarshal shipping address: %w", err)
	}

	if len(paymentJSON) > 0 && string(paymentJSON) != "null" {
		var pr domain.PaymentResult
		if err := json.Unmarshal(paymentJSON, &pr); err != nil {
			return nil, fmt.Errorf("unmarshal payment result: %w", err)
		}
		o.PaymentResult = &pr
	}

	return &o, nil
}

func collectOrders(rows pgx.Rows) ([]*domain.Order, error) {
	orders := make([]*domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}
