package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func setupUserRepo(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewUserRepository(mock)
	return repo, mock
}

var userTestColumns = []string{
	"id", "clerk_id", "email", "name", "role", "created_at", "updated_at",
}

func TestUserRepository_Create(t *testing.T) {
	repo, mock := setupUserRepo(t)
	defer mock.Close()

	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	u := &domain.User{
		ID:        uuid.New(),
		ClerkID:   "user_2abc",
		Email:     "jane@example.com",
		Name:      "Jane Doe",
		Role:      domain.RoleCustomer,
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.ClerkID, u.Email, u.Name, u.Role, u.CreatedAt, u.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByClerkID(t *testing.T) {
	repo, mock := setupUserRepo(t)
	defer mock.Close()

	id := uuid.New()
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT .+ FROM users WHERE clerk_id").
		WithArgs("user_2abc").
		WillReturnRows(
			pgxmock.NewRows(userTestColumns).
				AddRow(id, "user_2abc", "jane@example.com", "Jane Doe", domain.RoleCustomer, now, now),
		)

	u, err := repo.GetByClerkID(context.Background(), "user_2abc")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "user_2abc", u.ClerkID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByClerkID_NotFound(t *testing.T) {
	repo, mock := setupUserRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM users WHERE clerk_id").
		WithArgs("user_missing").
		WillReturnRows(pgxmock.NewRows(userTestColumns))

	_, err := repo.GetByClerkID(context.Background(), "user_missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateAddress_ScopedToOwner(t *testing.T) {
	repo, mock := setupUserRepo(t)
	defer mock.Close()

	createdAt := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	a := &domain.Address{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		Line1:      "3 Elm St",
		City:       "Springfield",
		State:      "IL",
		PostalCode: "62701",
		Country:    "US",
		IsDefault:  true,
	}

	mock.ExpectQuery("UPDATE addresses").
		WithArgs(a.ID, a.UserID, a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country, a.IsDefault).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	err := repo.UpdateAddress(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, createdAt, a.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateAddress_NotFound(t *testing.T) {
	repo, mock := setupUserRepo(t)
	defer mock.Close()

	a := &domain.Address{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		Line1:      "3 Elm St",
		City:       "Springfield",
		State:      "IL",
		PostalCode: "62701",
		Country:    "US",
	}

	mock.ExpectQuery("UPDATE addresses").
		WithArgs(a.ID, a.UserID, a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country, a.IsDefault).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}))

	err := repo.UpdateAddress(context.Background(), a)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_DeleteAddress_ScopedToOwner(t *testing.T) {
	repo, mock := setupUserRepo(t)
	defer mock.Close()

	userID := uuid.New()
	addressID := uuid.New()

	// The delete is keyed by both address and user so one user cannot remove
	// another user's address.
	mock.ExpectExec("DELETE FROM addresses").
		WithArgs(addressID, userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.DeleteAddress(context.Background(), userID, addressID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_DeleteAddress_NotFound(t *testing.T) {
	repo, mock := setupUserRepo(t)
	defer mock.Close()

	userID := uuid.New()
	addressID := uuid.New()

	mock.ExpectExec("DELETE FROM addresses").
		WithArgs(addressID, userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.DeleteAddress(context.Background(), userID, addressID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_AddWishlistItem_Success(t *testing.T) {
	repo, mock := setupUserRepo(t)
	defer mock.Close()

	item := &domain.WishlistItem{
		UserID:    uuid.New(),
		ProductID: uuid.New(),
		AddedAt:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec("INSERT INTO wishlist_items").
		WithArgs(item.UserID, item.ProductID, item.AddedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.AddWishlistItem(context.Background(), item)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_AddWishlistItem_DuplicateConflicts(t *testing.T) {
	repo, mock := setupUserRepo(t)
	defer mock.Close()

	item := &domain.WishlistItem{
		UserID:    uuid.New(),
		ProductID: uuid.New(),
		AddedAt:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}

	// ON CONFLICT DO NOTHING reports zero affected rows for a duplicate,
	// which surfaces as AlreadyExists.
	mock.ExpectExec("INSERT INTO wishlist_items").
		WithArgs(item.UserID, item.ProductID, item.AddedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	err := repo.AddWishlistItem(context.Background(), item)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ListWishlist(t *testing.T) {
	repo, mock := setupUserRepo(t)
	defer mock.Close()

	userID := uuid.New()
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT .+ FROM wishlist_items WHERE").
		WithArgs(userID).
		WillReturnRows(
			pgxmock.NewRows([]string{"user_id", "product_id", "added_at"}).
				AddRow(userID, uuid.New(), now).
				AddRow(userID, uuid.New(), now.Add(-time.Hour)),
		)

	items, err := repo.ListWishlist(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
