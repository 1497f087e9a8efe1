package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		driver, in, want string
	}{
		{"sqlite", "./users.db", "sqlite://./users.db"},
		{"sqlite", "/var/lib/wellness/users.db", "sqlite:///var/lib/wellness/users.db"},
		{"sqlite", "sqlite://already.db", "sqlite://already.db"},
		{"postgres", "postgres://u:p@localhost:5432/db", "pgx5://u:p@localhost:5432/db"},
		{"postgres", "postgresql://u:p@localhost/db", "pgx5://u:p@localhost/db"},
		{"postgres", "pgx5://u:p@localhost/db", "pgx5://u:p@localhost/db"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, migrateURL(tt.driver, tt.in))
	}
}

func TestMigrate_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")

	require.NoError(t, Migrate("sqlite", path))
	// Running again is a no-op.
	require.NoError(t, Migrate("sqlite", path))

	db, err := NewSQLite(path)
	require.NoError(t, err)
	defer db.Close()

	var columns []string
	require.NoError(t, db.Select(&columns, `SELECT name FROM pragma_table_info('users') ORDER BY cid`))
	assert.Equal(t, []string{
		"id", "username", "hashed_password", "name", "age_group", "gender", "preferred_language", "created_at",
	}, columns)
}

func TestMigrate_UnknownDriver(t *testing.T) {
	assert.Error(t, Migrate("mysql", "whatever"))
}
