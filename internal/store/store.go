// Package store persists user records.
package store

import (
	"context"
	"errors"

	"github.com/isdelr/wellness-be/internal/models"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateUsername is returned when the username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
)

// UserStore is the credential store. Username uniqueness is enforced by the
// backing database, so concurrent Create calls for one username let exactly one win.
type UserStore interface {
	// Create inserts user and fills in its ID and CreatedAt.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	// UpdateProfile applies the set fields of update and returns the stored result.
	UpdateProfile(ctx context.Context, id int64, update models.ProfileUpdate) (models.User, error)
	Ping(ctx context.Context) error
}
