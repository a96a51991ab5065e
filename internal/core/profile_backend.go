package core

import (
	"context"
	"errors"

	"shifttrack-backend-go/internal/access"
	"shifttrack-backend-go/internal/db"
)

// userProfileBackend adapts the user repository to the access package's
// ProfileBackend contract. This is the boundary where the free-form stored
// subscription status is parsed into the closed set.
type userProfileBackend struct {
	userRepo db.UserRepository
}

// NewProfileBackend creates the profile backend the access-control cache
// fetches through.
func NewProfileBackend(userRepo db.UserRepository) access.ProfileBackend {
	return &userProfileBackend{userRepo: userRepo}
}

// FetchProfile performs the single-row profile lookup. A missing user record
// maps to access.ErrProfileNotFound, which the cache stores as a confirmed
// "no subscription" profile rather than an error.
func (b *userProfileBackend) FetchProfile(ctx context.Context, identityID string) (*access.Profile, error) {
	user, err := b.userRepo.GetByID(ctx, identityID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, access.ErrProfileNotFound
		}
		return nil, err
	}
	return &access.Profile{
		SubscriptionStatus: access.ParseSubscriptionStatus(user.SubscriptionStatus),
		SubscriptionTier:   user.SubscriptionTier,
		StripeCustomerID:   user.StripeCustomerID,
	}, nil
}
