package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/wellness-be/internal/config"
	"github.com/isdelr/wellness-be/internal/models"
)

const testSecret = "cli-test-secret-0123456789abcdefgh"

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "migrate")
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestMigrateCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", path)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("LOG_FORMAT", "json")

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"migrate"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Migrations completed successfully")

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestMigrateCmd_RejectsWeakSecret(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "users.db"))
	t.Setenv("JWT_SECRET", "short")

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"migrate"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestOpenUserStore_SQLite(t *testing.T) {
	cfg := config.Default()
	cfg.DatabaseURL = filepath.Join(t.TempDir(), "users.db")
	cfg.JWTSecret = testSecret

	t.Setenv("LOG_FORMAT", "json")
	runMigrateWith(t, cfg)

	users, closeStore, err := openUserStore(context.Background(), cfg)
	require.NoError(t, err)
	defer closeStore()

	require.NoError(t, users.Ping(context.Background()))

	u := models.User{Username: "alice", PasswordHash: "hash"}
	require.NoError(t, users.Create(context.Background(), &u))
	assert.Equal(t, int64(1), u.ID)
}

func runMigrateWith(t *testing.T, cfg *config.Config) {
	t.Helper()
	t.Setenv("DATABASE_DRIVER", cfg.DatabaseDriver)
	t.Setenv("DATABASE_URL", cfg.DatabaseURL)
	t.Setenv("JWT_SECRET", cfg.JWTSecret)

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"migrate"})
	require.NoError(t, cmd.Execute())
}

func TestNewHTTPServer_Timeouts(t *testing.T) {
	cfg := config.Default()
	cfg.ServerPort = 9090

	srv := newHTTPServer(cfg, http.NotFoundHandler())

	assert.Equal(t, ":9090", srv.Addr)
	assert.Equal(t, 10*time.Second, srv.ReadHeaderTimeout)
	assert.Equal(t, 30*time.Second, srv.ReadTimeout)
	assert.Equal(t, 120*time.Second, srv.IdleTimeout)
	assert.Zero(t, srv.WriteTimeout)
}
