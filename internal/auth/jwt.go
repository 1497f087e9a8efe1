package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultTokenTTL is the lifetime of an access token when none is configured.
const DefaultTokenTTL = time.Hour

// Token verification failures. All of them wrap ErrInvalidToken.
var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrMalformedToken = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrBadSignature   = fmt.Errorf("%w: bad signature", ErrInvalidToken)
	ErrTokenExpired   = fmt.Errorf("%w: expired", ErrInvalidToken)
	ErrMissingSubject = fmt.Errorf("%w: missing subject", ErrInvalidToken)
	ErrWrongIssuer    = fmt.Errorf("%w: wrong issuer", ErrInvalidToken)
)

// CredentialsError is the only failure message a client ever sees for a bad token.
const CredentialsError = "Could not validate credentials (invalid or expired token)"

// TokenConfig holds the signing parameters of a TokenManager.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
}

// TokenVerifier resolves a bearer token to the username it was issued for.
type TokenVerifier interface {
	Verify(tokenStr string) (string, error)
}

// TokenManager issues and verifies HS256 access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// Option configures a TokenManager.
type Option func(*TokenManager)

// WithClock overrides the time source, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *TokenManager) {
		m.now = now
	}
}

// NewTokenManager creates a TokenManager from cfg.
func NewTokenManager(cfg TokenConfig, opts ...Option) (*TokenManager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token secret must not be empty")
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	if ttl < 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}

	m := &TokenManager{
		secret: cfg.Secret,
		ttl:    ttl,
		issuer: cfg.Issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Issue creates a signed token for username and returns it with its expiry.
func (m *TokenManager) Issue(username string) (string, time.Time, error) {
	if username == "" {
		return "", time.Time{}, ErrMissingSubject
	}

	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   username,
		Issuer:    m.issuer,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses and validates tokenStr and returns its subject.
func (m *TokenManager) Verify(tokenStr string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return "", classify(err)
	}
	if claims.Subject == "" {
		return "", ErrMissingSubject
	}
	return claims.Subject, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return fmt.Errorf("%w: %v", ErrWrongIssuer, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
}

// FailureReason returns a short label for a verification error, for logs and metrics.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrBadSignature):
		return "bad_signature"
	case errors.Is(err, ErrMissingSubject):
		return "missing_subject"
	case errors.Is(err, ErrWrongIssuer):
		return "wrong_issuer"
	case errors.Is(err, ErrMalformedToken):
		return "malformed"
	case errors.Is(err, ErrMissingToken):
		return "missing"
	default:
		return "unknown"
	}
}

type contextKey string

// UsernameKey is the context key for the authenticated username.
const UsernameKey = contextKey("username")

// ErrMissingToken is reported when a request carries no bearer token.
var ErrMissingToken = fmt.Errorf("%w: missing", ErrInvalidToken)

// UsernameFromContext returns the username stored by Middleware.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok && username != ""
}

// WithUsername returns a copy of ctx carrying username.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, UsernameKey, username)
}

// TokenSource extracts the raw token from a request.
type TokenSource func(r *http.Request) string

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) string {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if found && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

// BearerOrQueryToken falls back to the access_token query parameter when the
// Authorization header is absent. Only use it for WebSocket upgrades, where browsers
// cannot set headers.
func BearerOrQueryToken(r *http.Request) string {
	if r.Header.Get("Authorization") != "" {
		return BearerToken(r)
	}
	return r.URL.Query().Get("access_token")
}

// VerifierFunc adapts a function to the TokenVerifier interface.
type VerifierFunc func(tokenStr string) (string, error)

// Verify calls f(tokenStr).
func (f VerifierFunc) Verify(tokenStr string) (string, error) {
	return f(tokenStr)
}

// Middleware protects routes with bearer token authentication. source picks where the
// token is read from; onFailure, when set, observes every rejected token.
func Middleware(verifier TokenVerifier, source TokenSource, onFailure func(error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := source(r)

			var (
				username string
				err      error
			)
			if tokenStr == "" {
				err = ErrMissingToken
			} else {
				username, err = verifier.Verify(tokenStr)
			}
			if err != nil {
				log.Debug().Str("reason", FailureReason(err)).Str("path", r.URL.Path).Msg("Rejected bearer token")
				if onFailure != nil {
					onFailure(err)
				}
				WriteUnauthorized(w, CredentialsError)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUsername(r.Context(), username)))
		})
	}
}

// WriteUnauthorized writes a 401 response with a bearer challenge.
func WriteUnauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
