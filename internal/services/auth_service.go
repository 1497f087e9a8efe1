package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/wellness-be/internal/auth"
	"github.com/isdelr/wellness-be/internal/models"
	"github.com/isdelr/wellness-be/internal/store"
)

// TokenIssuer mints and verifies access tokens.
type TokenIssuer interface {
	Issue(username string) (string, time.Time, error)
	Verify(tokenStr string) (string, error)
}

// RegisterInput carries the fields accepted on registration.
type RegisterInput struct {
	Username string
	Password string
	Profile  models.ProfileUpdate
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      models.User
}

// AuthServiceProvider defines the interface for authentication services.
type AuthServiceProvider interface {
	Register(ctx context.Context, in RegisterInput) (models.User, error)
	Login(ctx context.Context, username, password string) (LoginResult, error)
	ResolveIdentity(tokenStr string) (string, error)
	CurrentUser(ctx context.Context, tokenStr string) (models.User, error)
}

// AuthService registers users, logs them in and resolves token identities.
type AuthService struct {
	users  store.UserStore
	hasher auth.PasswordHasher
	tokens TokenIssuer

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(users store.UserStore, hasher auth.PasswordHasher, tokens TokenIssuer) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register creates a user with a hashed password and the given profile fields.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		return models.User{}, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	if err := in.Profile.Validate(); err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmptyPassword) || errors.Is(err, auth.ErrPasswordTooLong) {
			return models.User{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return models.User{}, err
	}

	user := models.User{
		Username:     in.Username,
		PasswordHash: hash,
	}
	in.Profile.Apply(&user)

	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			return models.User{}, ErrDuplicateUsername
		}
		return models.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("User registered")
	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// Login verifies credentials and issues an access token. Unknown usernames and wrong
// passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return LoginResult{}, fmt.Errorf("failed to load user: %w", err)
		}
		// Burn the same bcrypt work as a real comparison.
		s.hasher.Verify(password, s.dummy())
		return LoginResult{}, ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.Username)
	if err != nil {
		return LoginResult{}, fmt.Errorf("failed to issue token: %w", err)
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// ResolveIdentity returns the username a token was issued for. Failures wrap both
// ErrUnauthenticated and the verifier's reason.
func (s *AuthService) ResolveIdentity(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", fmt.Errorf("%w: %w", ErrUnauthenticated, auth.ErrMissingToken)
	}
	username, err := s.tokens.Verify(tokenStr)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	return username, nil
}

// CurrentUser resolves the token and loads the matching user.
func (s *AuthService) CurrentUser(ctx context.Context, tokenStr string) (models.User, error) {
	username, err := s.ResolveIdentity(tokenStr)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn().Str("username", username).Msg("Token subject has no stored user")
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("failed to load user: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("timing-equalizer")
		if err != nil {
			log.Error().Err(err).Msg("Failed to compute dummy password hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
