package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func TestGetOrCreateByClerkID_ExistingUser(t *testing.T) {
	users := new(mockUserRepository)
	svc := NewUserService(users, newTestLogger())
	ctx := context.Background()

	existing := &domain.User{ID: uuid.New(), ClerkID: "user_2abc"}
	users.On("GetByClerkID", ctx, "user_2abc").Return(existing, nil)

	user, err := svc.GetOrCreateByClerkID(ctx, "user_2abc", "jo@example.com", "Jo")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)
	users.AssertNotCalled(t, "Create")
}

func TestGetOrCreateByClerkID_ProvisionsNewUser(t *testing.T) {
	users := new(mockUserRepository)
	svc := NewUserService(users, newTestLogger())
	ctx := context.Background()

	users.On("GetByClerkID", ctx, "user_2new").
		Return(nil, apperrors.NotFound("user", "user_2new"))
	users.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	user, err := svc.GetOrCreateByClerkID(ctx, "user_2new", "new@example.com", "New")
	require.NoError(t, err)
	assert.Equal(t, "user_2new", user.ClerkID)
	assert.Equal(t, domain.RoleCustomer, user.Role)
	users.AssertExpectations(t)
}

func TestAddAddress_DefaultClearsPreviousDefault(t *testing.T) {
	users := new(mockUserRepository)
	svc := NewUserService(users, newTestLogger())
	ctx := context.Background()
	userID := uuid.New()

	users.On("ClearDefaultAddress", ctx, userID).Return(nil)
	users.On("CreateAddress", ctx, mock.AnythingOfType("*domain.Address")).Return(nil)

	addr, err := svc.AddAddress(ctx, userID, domain.CreateAddressInput{
		Line1: "1 Main St", City: "Springfield", State: "IL", PostalCode: "62701", Country: "US",
		IsDefault: true,
	})
	require.NoError(t, err)
	assert.True(t, addr.IsDefault)
	users.AssertCalled(t, "ClearDefaultAddress", ctx, userID)
}

func TestAddAddress_NonDefaultSkipsClear(t *testing.T) {
	users := new(mockUserRepository)
	svc := NewUserService(users, newTestLogger())
	ctx := context.Background()
	userID := uuid.New()

	users.On("CreateAddress", ctx, mock.AnythingOfType("*domain.Address")).Return(nil)

	_, err := svc.AddAddress(ctx, userID, domain.CreateAddressInput{
		Line1: "2 Oak Ave", City: "Springfield", State: "IL", PostalCode: "62701", Country: "US",
	})
	require.NoError(t, err)
	users.AssertNotCalled(t, "ClearDefaultAddress")
}

func TestAddAddress_ValidationFailure(t *testing.T) {
	users := new(mockUserRepository)
	svc := NewUserService(users, newTestLogger())

	_, err := svc.AddAddress(context.Background(), uuid.New(), domain.CreateAddressInput{})
	assert.Error(t, err)
	users.AssertNotCalled(t, "CreateAddress")
}

func TestUpdateAddress_DefaultClearsPreviousDefault(t *testing.T) {
	users := new(mockUserRepository)
	svc := NewUserService(users, newTestLogger())
	ctx := context.Background()
	userID := uuid.New()
	addressID := uuid.New()

	users.On("ClearDefaultAddress", ctx, userID).Return(nil)
	users.On("UpdateAddress", ctx, mock.AnythingOfType("*domain.Address")).Return(nil)

	addr, err := svc.UpdateAddress(ctx, userID, addressID, domain.UpdateAddressInput{
		Line1: "3 Elm St", City: "Springfield", State: "IL", PostalCode: "62701", Country: "US",
		IsDefault: true,
	})
	require.NoError(t, err)
	assert.Equal(t, addressID, addr.ID)
	assert.True(t, addr.IsDefault)
	users.AssertCalled(t, "ClearDefaultAddress", ctx, userID)
}

func TestUpdateAddress_NotFoundPassesThrough(t *testing.T) {
	users := new(mockUserRepository)
	svc := NewUserService(users, newTestLogger())
	ctx := context.Background()
	userID := uuid.New()
	addressID := uuid.New()

	users.On("UpdateAddress", ctx, mock.AnythingOfType("*domain.Address")).
		Return(apperrors.NotFound("address", addressID.String()))

	_, err := svc.UpdateAddress(ctx, userID, addressID, domain.UpdateAddressInput{
		Line1: "3 Elm St", City: "Springfield", State: "IL", PostalCode: "62701", Country: "US",
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateAddress_ValidationFailure(t *testing.T) {
	users := new(mockUserRepository)
	svc := NewUserService(users, newTestLogger())

	_, err := svc.UpdateAddress(context.Background(), uuid.New(), uuid.New(), domain.UpdateAddressInput{})
	assert.Error(t, err)
	users.AssertNotCalled(t, "UpdateAddress")
}

func TestWishlist_AddAndRemove(t *testing.T) {
	users := new(mockUserRepository)
	svc := NewUserService(users, newTestLogger())
	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()

	users.On("AddWishlistItem", ctx, mock.AnythingOfType("*domain.WishlistItem")).Return(nil)
	users.On("RemoveWishlistItem", ctx, userID, productID).Return(nil)

	require.NoError(t, svc.AddToWishlist(ctx, userID, productID))
	require.NoError(t, svc.RemoveFromWishlist(ctx, userID, productID))
	users.AssertExpectations(t)
}

func TestWishlist_AddDuplicateConflicts(t *testing.T) {
	users := new(mockUserRepository)
	svc := NewUserService(users, newTestLogger())
	ctx := context.Background()
	productID := uuid.New()

	users.On("AddWishlistItem", ctx, mock.AnythingOfType("*domain.WishlistItem")).
		Return(apperrors.AlreadyExists("wishlist item", "product_id", productID.String()))

	err := svc.AddToWishlist(ctx, uuid.New(), productID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}
