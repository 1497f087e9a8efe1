package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/isdelr/wellness-be/internal/models"
)

// pgxPool is the subset of pgxpool.Pool used by PostgresUserStore.
type pgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresUserStore implements UserStore on PostgreSQL.
type PostgresUserStore struct {
	pool pgxPool
}

// NewPostgresUserStore creates a new PostgresUserStore.
func NewPostgresUserStore(pool pgxPool) *PostgresUserStore {
	return &PostgresUserStore{pool: pool}
}

// Create inserts a new user row.
func (s *PostgresUserStore) Create(ctx context.Context, user *models.User) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (username, hashed_password, name, age_group, gender, preferred_language)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		user.Username, user.PasswordHash, user.Name, user.AgeGroup, user.Gender, user.PreferredLanguage,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("failed to insert user %q: %w", user.Username, err)
	}
	return nil
}

// GetByID retrieves a single user by its ID.
func (s *PostgresUserStore) GetByID(ctx context.Context, id int64) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

// GetByUsername retrieves a single user by username, including the password hash.
func (s *PostgresUserStore) GetByUsername(ctx context.Context, username string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to get user %q: %w", username, err)
	}
	return user, nil
}

// UpdateProfile overwrites the profile columns that are set in update.
func (s *PostgresUserStore) UpdateProfile(ctx context.Context, id int64, update models.ProfileUpdate) (models.User, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE users SET
			name = COALESCE($1, name),
			age_group = COALESCE($2, age_group),
			gender = COALESCE($3, gender),
			preferred_language = COALESCE($4, preferred_language)
		WHERE id = $5
		RETURNING `+userColumns,
		update.Name, update.AgeGroup, update.Gender, update.PreferredLanguage, id,
	)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to update user %d: %w", id, err)
	}
	return user, nil
}

// Ping checks the database connection.
func (s *PostgresUserStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Name,
		&user.AgeGroup,
		&user.Gender,
		&user.PreferredLanguage,
		&user.CreatedAt,
	)
	return user, err
}
