package handlers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/wellness-be/internal/auth"
	"github.com/isdelr/wellness-be/internal/metrics"
	"github.com/isdelr/wellness-be/internal/models"
	"github.com/isdelr/wellness-be/internal/services"
)

// AuthHandler handles registration, login and identity requests.
type AuthHandler struct {
	service services.AuthServiceProvider
	metrics *metrics.Metrics
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service services.AuthServiceProvider, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{service: service, metrics: m}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Username          string  `json:"username"`
	Password          string  `json:"password"`
	Name              *string `json:"name"`
	AgeGroup          *string `json:"age_group"`
	Gender            *string `json:"gender"`
	PreferredLanguage *string `json:"preferred_language"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	Msg    string `json:"msg"`
	UserID int64  `json:"user_id"`
	models.Profile
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      int64  `json:"user_id"`
	models.Profile
}

// Register handles new user registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.Register(r.Context(), services.RegisterInput{
		Username: payload.Username,
		Password: payload.Password,
		Profile: models.ProfileUpdate{
			Name:              payload.Name,
			AgeGroup:          payload.AgeGroup,
			Gender:            payload.Gender,
			PreferredLanguage: payload.PreferredLanguage,
		},
	})
	if err != nil {
		h.metrics.Registration(registrationResult(err))
		if errors.Is(err, services.ErrDuplicateUsername) {
			log.Info().Str("username", payload.Username).Msg("Registration rejected, username taken")
		}
		writeServiceError(w, r, err)
		return
	}
	h.metrics.Registration("success")

	writeJSON(w, http.StatusCreated, RegisterResponse{
		Msg:     "User registered successfully",
		UserID:  user.ID,
		Profile: user.Profile(),
	})
}

// Login handles the OAuth2 password form and issues an access token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	username, password, err := readCredentials(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if username == "" || password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	res, err := h.service.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.metrics.Login("invalid_credentials")
			log.Warn().Str("username", username).Msg("Failed authentication attempt")
		} else {
			h.metrics.Login("error")
		}
		writeServiceError(w, r, err)
		return
	}
	h.metrics.Login("success")

	writeJSON(w, http.StatusOK, LoginResponse{
		AccessToken: res.Token,
		TokenType:   "bearer",
		UserID:      res.User.ID,
		Profile:     res.User.Profile(),
	})
}

// Me resolves the presented bearer token to its stored user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.CurrentUser(r.Context(), auth.BearerToken(r))
	if err != nil {
		if errors.Is(err, services.ErrUnauthenticated) {
			h.metrics.TokenFailure(err)
		}
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"username": user.Username})
}

// readCredentials accepts form-encoded credentials and, for convenience, JSON.
func readCredentials(r *http.Request) (string, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", "", err
		}
		return body.Username, body.Password, nil
	}

	if err := r.ParseForm(); err != nil {
		return "", "", err
	}
	return r.PostForm.Get("username"), r.PostForm.Get("password"), nil
}

func registrationResult(err error) string {
	switch {
	case errors.Is(err, services.ErrDuplicateUsername):
		return "duplicate"
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidProfile):
		return "invalid"
	default:
		return "error"
	}
}
