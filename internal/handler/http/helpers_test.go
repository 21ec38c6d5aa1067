package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httputil"
)

// --- Mock repositories ---

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context, params repository.ListParams) ([]*domain.Product, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]*domain.Product), args.Error(1)
}

func (m *mockProductRepository) Count(ctx context.Context, params repository.ListParams) (int, error) {
	args := m.Called(ctx, params)
	return args.Int(0), args.Error(1)
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProductRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	args := m.Called(ctx, id, delta)
	return args.Int(0), args.Error(1)
}

func (m *mockProductRepository) UpdateStats(ctx context.Context, id uuid.UUID, agg domain.RatingAggregate) error {
	args := m.Called(ctx, id, agg)
	return args.Error(0)
}

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID, params repository.ListParams) ([]*domain.Order, error) {
	args := m.Called(ctx, userID, params)
	return args.Get(0).([]*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) List(ctx context.Context, params repository.ListParams) ([]*domain.Order, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepository) TotalRevenue(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Upsert(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	args := m.Called(ctx, review)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.Review, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByClerkID(ctx context.Context, clerkID string) (*domain.User, error) {
	args := m.Called(ctx, clerkID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) List(ctx context.Context, params repository.ListParams) ([]*domain.User, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *mockUserRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockUserRepository) CreateAddress(ctx context.Context, address *domain.Address) error {
	args := m.Called(ctx, address)
	return args.Error(0)
}

func (m *mockUserRepository) UpdateAddress(ctx context.Context, address *domain.Address) error {
	args := m.Called(ctx, address)
	return args.Error(0)
}

func (m *mockUserRepository) ListAddresses(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*domain.Address), args.Error(1)
}

func (m *mockUserRepository) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	args := m.Called(ctx, userID, addressID)
	return args.Error(0)
}

func (m *mockUserRepository) ClearDefaultAddress(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockUserRepository) AddWishlistItem(ctx context.Context, item *domain.WishlistItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockUserRepository) RemoveWishlistItem(ctx context.Context, userID, productID uuid.UUID) error {
	args := m.Called(ctx, userID, productID)
	return args.Error(0)
}

func (m *mockUserRepository) ListWishlist(ctx context.Context, userID uuid.UUID) ([]*domain.WishlistItem, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*domain.WishlistItem), args.Error(1)
}

// noopPublisher discards domain events.
type noopPublisher struct{}

func (noopPublisher) PublishOrderCreated(context.Context, *domain.Order) error { return nil }
func (noopPublisher) PublishOrderStatusChanged(context.Context, uuid.UUID, domain.OrderStatus, domain.OrderStatus) error {
	return nil
}
func (noopPublisher) PublishProductRatingUpdated(context.Context, uuid.UUID, domain.RatingAggregate) error {
	return nil
}
func (noopPublisher) PublishStockAdjusted(context.Context, uuid.UUID, int, int) error { return nil }

// --- Test fixtures ---

type testEnv struct {
	products *mockProductRepository
	orders   *mockOrderRepository
	reviews  *mockReviewRepository
	users    *mockUserRepository
	verifier *auth.TokenVerifier
	router   http.Handler
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestEnv builds the production router over mocked repositories so tests
// exercise the full middleware chain, including authentication.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := testLogger()
	products := new(mockProductRepository)
	orders := new(mockOrderRepository)
	reviews := new(mockReviewRepository)
	users := new(mockUserRepository)

	publisher := noopPublisher{}
	inventorySvc := service.NewInventoryService(products, publisher, log)
	orderSvc := service.NewOrderService(orders, products, inventorySvc, publisher, log)
	reviewSvc := service.NewReviewService(reviews, orders, products, publisher, log)
	productSvc := service.NewProductService(products, nil, log)
	userSvc := service.NewUserService(users, log)
	dashboardSvc := service.NewDashboardService(orders, products, users, nil, log)

	verifier := auth.NewTokenVerifier("test-secret", "storefront-test")

	router := NewRouter(RouterDeps{
		Orders:    orderSvc,
		Products:  productSvc,
		Reviews:   reviewSvc,
		Users:     userSvc,
		Dashboard: dashboardSvc,
		Health:    health.NewHandler(),
		Validator: verifier,
		Logger:    log,
	})

	return &testEnv{
		products: products,
		orders:   orders,
		reviews:  reviews,
		users:    users,
		verifier: verifier,
		router:   router,
	}
}

func (e *testEnv) bearerToken(t *testing.T, subject, email, name, role string) string {
	t.Helper()
	token, err := e.verifier.Sign(subject, email, name, role, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

// sampleUser returns the internal user record for the default test identity.
func sampleUser() *domain.User {
	now := time.Now().UTC()
	return &domain.User{
		ID:        uuid.MustParse("550e8400-e29b-41d4-a716-446655440100"),
		ClerkID:   "user_2abc",
		Email:     "jane@example.com",
		Name:      "Jane Doe",
		Role:      domain.RoleCustomer,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func sampleProduct() *domain.Product {
	now := time.Now().UTC()
	return &domain.Product{
		ID:            uuid.MustParse("550e8400-e29b-41d4-a716-446655440020"),
		Name:          "Walnut Desk Organizer",
		Description:   "Five compartments, oiled finish.",
		Price:         34.50,
		Category:      "office",
		Stock:         12,
		AverageRating: 4.2,
		TotalReviews:  5,
		Images:        []string{"https://cdn.example.com/desk-organizer.jpg"},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func sampleOrder(user *domain.User) *domain.Order {
	now := time.Now().UTC()
	product := sampleProduct()
	return &domain.Order{
		ID:      uuid.MustParse("550e8400-e29b-41d4-a716-446655440001"),
		UserID:  user.ID,
		ClerkID: user.ClerkID,
		Items: []domain.OrderItem{
			{
				ProductID:    product.ID,
				Quantity:     2,
				PriceAtOrder: product.Price,
				Name:         product.Name,
				Image:        product.Images[0],
			},
		},
		Status:     domain.OrderStatusPending,
		TotalPrice: 69.00,
		ShippingAddress: domain.ShippingAddress{
			Line1:      "123 Main St",
			City:       "Portland",
			State:      "OR",
			PostalCode: "97201",
			Country:    "US",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}
