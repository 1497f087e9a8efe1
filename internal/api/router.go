package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/wellness-be/internal/api/handlers"
	"github.com/isdelr/wellness-be/internal/auth"
	"github.com/isdelr/wellness-be/internal/metrics"
	"github.com/isdelr/wellness-be/internal/services"
	"github.com/isdelr/wellness-be/internal/websocket"
)

// Dependencies groups everything the router wires into handlers.
type Dependencies struct {
	AuthService    services.AuthServiceProvider
	ProfileService services.ProfileServiceProvider
	ChatService    services.ChatServiceProvider
	Hub            *websocket.Hub
	DB             handlers.Pinger
	Metrics        *metrics.Metrics // nil disables /metrics
	AllowedOrigins []string
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.Metrics)
	profileHandler := handlers.NewProfileHandler(deps.ProfileService)
	chatHandler := handlers.NewChatHandler(deps.ChatService, deps.Metrics)
	wsHandler := handlers.NewWebSocketHandler(deps.Hub, deps.ChatService, deps.Metrics, deps.AllowedOrigins)
	healthHandler := handlers.NewHealthHandler(deps.DB)

	r.Get("/", healthHandler.Root)
	r.Get("/healthz", healthHandler.Ready)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Post("/register", authHandler.Register)
	r.Post("/token", authHandler.Login)
	r.Get("/me", authHandler.Me)

	verifier := auth.VerifierFunc(deps.AuthService.ResolveIdentity)

	// Routes below require a bearer token in the Authorization header.
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(verifier, auth.BearerToken, deps.Metrics.TokenFailure))

		r.Route("/profile/{id}", func(r chi.Router) {
			r.Get("/", profileHandler.Get)
			r.Put("/", profileHandler.Update)
		})
		r.Get("/chat", chatHandler.Get)
		r.Post("/chat", chatHandler.Post)
	})

	r.With(auth.Middleware(verifier, auth.BearerOrQueryToken, deps.Metrics.TokenFailure)).
		Get("/ws/chat", wsHandler.Serve)

	return r
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("Request handled")
}
