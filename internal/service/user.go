package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/validator"
)

// UserService manages users, their saved addresses and wishlists.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// GetOrCreateByClerkID resolves the internal user for an external identity,
// creating the record on first sight.
func (s *UserService) GetOrCreateByClerkID(ctx context.Context, clerkID, email, name string) (*domain.User, error) {
	user, err := s.users.GetByClerkID(ctx, clerkID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("load user: %w", err)
	}

	now := time.Now().UTC()
	user = &domain.User{
		ID:        uuid.New(),
		ClerkID:   clerkID,
		Email:     email,
		Name:      name,
		Role:      domain.RoleCustomer,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user provisioned",
		slog.String("user_id", user.ID.String()),
		slog.String("clerk_id", clerkID),
	)
	return user, nil
}

// GetUser loads a user by internal ID.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ListUsers returns a page of users with the total count.
func (s *UserService) ListUsers(ctx context.Context, params repository.ListParams) ([]*domain.User, int, error) {
	users, err := s.users.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	count, err := s.users.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	return users, count, nil
}

// AddAddress saves a shipping address for the user. Marking the new address
// as default clears the flag from any previously saved default first, so at
// most one default exists per user.
func (s *UserService) AddAddress(ctx context.Context, userID uuid.UUID, input domain.CreateAddressInput) (*domain.Address, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	if input.IsDefault {
		if err := s.users.ClearDefaultAddress(ctx, userID); err != nil {
			return nil, fmt.Errorf("clear default address: %w", err)
		}
	}

	address := &domain.Address{
		ID:         uuid.New(),
		UserID:     userID,
		Line1:      input.Line1,
		Line2:      input.Line2,
		City:       input.City,
		State:      input.State,
		PostalCode: input.PostalCode,
		Country:    input.Country,
		IsDefault:  input.IsDefault,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.users.CreateAddress(ctx, address); err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}

	return address, nil
}

// UpdateAddress replaces one of the user's saved addresses. The same
// clear-default-first rule as AddAddress keeps at most one default per user.
func (s *UserService) UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, input domain.UpdateAddressInput) (*domain.Address, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	if input.IsDefault {
		if err := s.users.ClearDefaultAddress(ctx, userID); err != nil {
			return nil, fmt.Errorf("clear default address: %w", err)
		}
	}

	address := &domain.Address{
		ID:         addressID,
		UserID:     userID,
		Line1:      input.Line1,
		Line2:      input.Line2,
		City:       input.City,
		State:      input.State,
		PostalCode: input.PostalCode,
		Country:    input.Country,
		IsDefault:  input.IsDefault,
	}

	if err := s.users.UpdateAddress(ctx, address); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update address: %w", err)
	}

	return address, nil
}

// ListAddresses returns the user's saved addresses, default first.
func (s *UserService) ListAddresses(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error) {
	addresses, err := s.users.ListAddresses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	return addresses, nil
}

// RemoveAddress deletes one of the user's saved addresses.
func (s *UserService) RemoveAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	if err := s.users.DeleteAddress(ctx, userID, addressID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete address: %w", err)
	}
	return nil
}

// AddToWishlist saves a product to the user's wishlist. Re-adding a product
// already on the list fails with AlreadyExists.
func (s *UserService) AddToWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	item := &domain.WishlistItem{
		UserID:    userID,
		ProductID: productID,
		AddedAt:   time.Now().UTC(),
	}
	if err := s.users.AddWishlistItem(ctx, item); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return err
		}
		return fmt.Errorf("add wishlist item: %w", err)
	}
	return nil
}

// RemoveFromWishlist removes a product from the user's wishlist.
func (s *UserService) RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	if err := s.users.RemoveWishlistItem(ctx, userID, productID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return fmt.Errorf("remove wishlist item: %w", err)
	}
	return nil
}

// ListWishlist returns the user's wishlist, newest first.
func (s *UserService) ListWishlist(ctx context.Context, userID uuid.UUID) ([]*domain.WishlistItem, error) {
	items, err := s.users.ListWishlist(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	return items, nil
}
