package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/wellness-be/internal/models"
	"github.com/isdelr/wellness-be/internal/store"
)

// ProfileServiceProvider defines the interface for profile services.
type ProfileServiceProvider interface {
	GetProfile(ctx context.Context, userID int64) (models.Profile, error)
	UpdateProfile(ctx context.Context, userID int64, callerUsername string, update models.ProfileUpdate) (models.User, error)
}

// ProfileService reads and updates the non-credential fields of users.
type ProfileService struct {
	users store.UserStore
}

// NewProfileService creates a new ProfileService.
func NewProfileService(users store.UserStore) *ProfileService {
	return &ProfileService{users: users}
}

// GetProfile returns the profile of any user. Callers only need to be authenticated.
func (s *ProfileService) GetProfile(ctx context.Context, userID int64) (models.Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Profile{}, ErrNotFound
		}
		return models.Profile{}, fmt.Errorf("failed to load profile: %w", err)
	}
	return user.Profile(), nil
}

// UpdateProfile applies update to userID on behalf of callerUsername, who must own it.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, callerUsername string, update models.ProfileUpdate) (models.User, error) {
	caller, err := s.users.GetByUsername(ctx, callerUsername)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("failed to load caller: %w", err)
	}
	if caller.ID != userID {
		log.Warn().Int64("user_id", userID).Int64("caller_id", caller.ID).Msg("Rejected profile update by non-owner")
		return models.User{}, ErrForbidden
	}
	if err := update.Validate(); err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	user, err := s.users.UpdateProfile(ctx, userID, update)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("failed to update profile: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}
