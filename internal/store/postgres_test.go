package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/wellness-be/internal/models"
)

func strPtr(s string) *string { return &s }

var userRowColumns = []string{
	"id", "username", "hashed_password", "name", "age_group", "gender", "preferred_language", "created_at",
}

func TestPostgresUserStore_Create(t *testing.T) {
	createdAt := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantID    int64
		wantErr   error
		errMsg    string
	}{
		{
			name: "inserts user",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("alice", "hash", strPtr("Alice"), (*string)(nil), (*string)(nil), (*string)(nil)).
					WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), createdAt))
			},
			wantID: 1,
		},
		{
			name: "unique violation",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("alice", "hash", strPtr("Alice"), (*string)(nil), (*string)(nil), (*string)(nil)).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
			},
			wantErr: ErrDuplicateUsername,
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("alice", "hash", strPtr("Alice"), (*string)(nil), (*string)(nil), (*string)(nil)).
					WillReturnError(errors.New("connection refused"))
			},
			errMsg: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			s := NewPostgresUserStore(mock)
			user := &models.User{Username: "alice", PasswordHash: "hash", Name: strPtr("Alice")}
			err = s.Create(context.Background(), user)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, user.ID)
				assert.Equal(t, createdAt, user.CreatedAt)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestPostgresUserStore_GetByUsername(t *testing.T) {
	createdAt := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE username = \$1`).
			WithArgs("alice").
			WillReturnRows(pgxmock.NewRows(userRowColumns).
				AddRow(int64(1), "alice", "hash", strPtr("Alice"), (*string)(nil), strPtr("Female"), (*string)(nil), createdAt))

		user, err := NewPostgresUserStore(mock).GetByUsername(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(1), user.ID)
		assert.Equal(t, "hash", user.PasswordHash)
		assert.Equal(t, "Alice", *user.Name)
		assert.Nil(t, user.AgeGroup)
		assert.Equal(t, "Female", *user.Gender)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE username = \$1`).
			WithArgs("nobody").
			WillReturnError(pgx.ErrNoRows)

		_, err = NewPostgresUserStore(mock).GetByUsername(context.Background(), "nobody")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresUserStore_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnError(pgx.ErrNoRows)

	_, err = NewPostgresUserStore(mock).GetByID(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserStore_UpdateProfile(t *testing.T) {
	createdAt := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	update := models.ProfileUpdate{Name: strPtr("Alice")}

	t.Run("returns updated row", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`UPDATE users SET`).
			WithArgs(strPtr("Alice"), (*string)(nil), (*string)(nil), (*string)(nil), int64(1)).
			WillReturnRows(pgxmock.NewRows(userRowColumns).
				AddRow(int64(1), "alice", "hash", strPtr("Alice"), strPtr("27-35"), (*string)(nil), strPtr("Hindi"), createdAt))

		user, err := NewPostgresUserStore(mock).UpdateProfile(context.Background(), 1, update)
		require.NoError(t, err)
		assert.Equal(t, "Alice", *user.Name)
		assert.Equal(t, "27-35", *user.AgeGroup)
		assert.Equal(t, "Hindi", *user.PreferredLanguage)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`UPDATE users SET`).
			WithArgs(strPtr("Alice"), (*string)(nil), (*string)(nil), (*string)(nil), int64(2)).
			WillReturnError(pgx.ErrNoRows)

		_, err = NewPostgresUserStore(mock).UpdateProfile(context.Background(), 2, update)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
