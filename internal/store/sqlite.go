package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/isdelr/wellness-be/internal/models"
)

const userColumns = `id, username, hashed_password, name, age_group, gender, preferred_language, created_at`

// SQLiteUserStore implements UserStore on SQLite.
type SQLiteUserStore struct {
	db *sqlx.DB
}

// NewSQLiteUserStore creates a new SQLiteUserStore.
func NewSQLiteUserStore(db *sqlx.DB) *SQLiteUserStore {
	return &SQLiteUserStore{db: db}
}

// Create inserts a new user row.
func (s *SQLiteUserStore) Create(ctx context.Context, user *models.User) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, hashed_password, name, age_group, gender, preferred_language)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.Username, user.PasswordHash, user.Name, user.AgeGroup, user.Gender, user.PreferredLanguage,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("failed to insert user %q: %w", user.Username, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new user id: %w", err)
	}

	stored, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	*user = stored
	return nil
}

// GetByID retrieves a single user by its ID.
func (s *SQLiteUserStore) GetByID(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

// GetByUsername retrieves a single user by username, including the password hash.
func (s *SQLiteUserStore) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("failed to get user %q: %w", username, err)
	}
	return user, nil
}

// UpdateProfile overwrites the profile columns that are set in update.
func (s *SQLiteUserStore) UpdateProfile(ctx context.Context, id int64, update models.ProfileUpdate) (models.User, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE users SET
			name = COALESCE(?, name),
			age_group = COALESCE(?, age_group),
			gender = COALESCE(?, gender),
			preferred_language = COALESCE(?, preferred_language)
		WHERE id = ?`,
		update.Name, update.AgeGroup, update.Gender, update.PreferredLanguage, id,
	)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to update user %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return models.User{}, fmt.Errorf("failed to update user %d: %w", id, err)
	} else if n == 0 {
		return models.User{}, ErrNotFound
	}

	var user models.User
	if err := tx.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = ?`, id); err != nil {
		return models.User{}, fmt.Errorf("failed to reload user %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return models.User{}, fmt.Errorf("failed to commit profile update: %w", err)
	}
	return user, nil
}

// Ping checks the database connection.
func (s *SQLiteUserStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
