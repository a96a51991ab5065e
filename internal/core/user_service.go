package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shifttrack-backend-go/internal/db"
	"shifttrack-backend-go/internal/models"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidHourlyRate is returned for a negative hourly rate.
	ErrInvalidHourlyRate = errors.New("hourlyRateCents cannot be negative")
)

// userService implements the UserService interface.
type userService struct {
	userRepo        db.UserRepository
	defaultCurrency string
}

// NewUserService creates a new UserService instance.
func NewUserService(userRepo db.UserRepository, defaultCurrency string) UserService {
	return &userService{
		userRepo:        userRepo,
		defaultCurrency: defaultCurrency,
	}
}

// GetOrCreate retrieves a user by ID, creating the profile record on first
// contact. New profiles start with no subscription; access control reads
// that as "subscription required". Returns the user, a boolean indicating
// whether it was created, and an error if any.
func (s *userService) GetOrCreate(ctx context.Context, userID, email, displayName string, emailVerified bool) (*models.User, bool, error) {
	if s.userRepo == nil {
		return nil, false, errors.New("UserRepository not initialized in UserService")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			newUser := &models.User{
				ID:            userID, // User ID from Firebase Auth is the document ID
				Email:         email,
				DisplayName:   displayName,
				EmailVerified: emailVerified,
				Currency:      s.defaultCurrency,
				CreatedAt:     time.Now().UTC(),
				UpdatedAt:     time.Now().UTC(),
			}
			if createErr := s.userRepo.Create(ctx, newUser); createErr != nil {
				return nil, false, fmt.Errorf("failed to create user (id: %s) after not found: %w", userID, createErr)
			}
			return newUser, true, nil
		}
		return nil, false, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}
	if user == nil {
		return nil, false, fmt.Errorf("repository returned (nil, nil) for user ID '%s', expected error if not found or user object if found", userID)
	}

	// Keep the verification flag current: the token is the source of truth,
	// and verification can only move from false to true.
	if emailVerified && !user.EmailVerified {
		user.EmailVerified = true
		user.UpdatedAt = time.Now().UTC()
		if updErr := s.userRepo.Update(ctx, user); updErr != nil {
			return nil, false, fmt.Errorf("failed to persist verification for user '%s': %w", userID, updErr)
		}
	}

	return user, false, nil
}

// GetByID retrieves a user by their ID.
func (s *userService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if s.userRepo == nil {
		return nil, errors.New("UserRepository not initialized in UserService")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user with ID '%s' (repository returned nil user and nil error)", ErrUserNotFound, userID)
	}
	return user, nil
}

// UpdateSettings applies the provided work/invoice settings. Only fields
// present in the request are changed.
func (s *userService) UpdateSettings(ctx context.Context, userID string, req models.UpdateSettingsRequest) (*models.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.HourlyRateCents != nil {
		if *req.HourlyRateCents < 0 {
			return nil, ErrInvalidHourlyRate
		}
		user.HourlyRateCents = *req.HourlyRateCents
	}
	if req.Currency != nil && *req.Currency != "" {
		user.Currency = *req.Currency
	}
	if req.BusinessName != nil {
		user.BusinessName = *req.BusinessName
	}
	if req.Street != nil {
		user.Street = *req.Street
	}
	if req.City != nil {
		user.City = *req.City
	}
	if req.PostalCode != nil {
		user.PostalCode = *req.PostalCode
	}
	if req.Country != nil {
		user.Country = *req.Country
	}
	if req.TaxID != nil {
		user.TaxID = *req.TaxID
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update settings for user '%s': %w", userID, err)
	}
	return user, nil
}

// ApplySubscriptionUpdate persists subscription state reported by the
// payment provider. Nil fields in upd are left untouched so partial webhook
// payloads cannot wipe existing references.
func (s *userService) ApplySubscriptionUpdate(ctx context.Context, userID string, upd SubscriptionUpdate) (*models.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.Status != nil {
		user.SubscriptionStatus = *upd.Status
	}
	if upd.Tier != nil {
		user.SubscriptionTier = *upd.Tier
	}
	if upd.CustomerID != nil {
		user.StripeCustomerID = *upd.CustomerID
	}
	if upd.SubscriptionID != nil {
		user.StripeSubscriptionID = *upd.SubscriptionID
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to persist subscription update for user '%s': %w", userID, err)
	}
	return user, nil
}
