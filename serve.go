package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/isdelr/wellness-be/internal/api"
	"github.com/isdelr/wellness-be/internal/auth"
	"github.com/isdelr/wellness-be/internal/config"
	"github.com/isdelr/wellness-be/internal/database"
	"github.com/isdelr/wellness-be/internal/metrics"
	"github.com/isdelr/wellness-be/internal/services"
	"github.com/isdelr/wellness-be/internal/store"
	"github.com/isdelr/wellness-be/internal/websocket"
)

const (
	tokenIssuer     = "wellness-be"
	shutdownTimeout = 5 * time.Second
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Apply pending migrations, then serve the HTTP and WebSocket API until
SIGINT or SIGTERM is received.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Set up database
	if err := database.Migrate(cfg.DatabaseDriver, cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	users, closeStore, err := openUserStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	tokens, err := auth.NewTokenManager(auth.TokenConfig{
		Secret: []byte(cfg.JWTSecret),
		TTL:    cfg.TokenTTL,
		Issuer: tokenIssuer,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token manager: %w", err)
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub(m.SetChatSessions)
	go hub.Run()
	defer hub.Stop()

	router := api.NewRouter(api.Dependencies{
		AuthService:    services.NewAuthService(users, auth.NewBcryptHasher(cfg.BcryptCost), tokens),
		ProfileService: services.NewProfileService(users),
		ChatService:    services.NewChatService(),
		Hub:            hub,
		DB:             users,
		Metrics:        m,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := newHTTPServer(cfg, router)

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("driver", cfg.DatabaseDriver).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("Server exiting")
	return nil
}

// newHTTPServer bounds how long a client may take to send a request. There is no
// write timeout because it would also cut off upgraded chat sockets.
func newHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// openUserStore connects the user store for the configured driver. The returned
// func releases the connection.
func openUserStore(ctx context.Context, cfg *config.Config) (store.UserStore, func(), error) {
	switch cfg.DatabaseDriver {
	case "postgres":
		pool, err := database.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return store.NewPostgresUserStore(pool), pool.Close, nil
	default:
		db, err := database.NewSQLite(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return store.NewSQLiteUserStore(db), func() { _ = db.Close() }, nil
	}
}
