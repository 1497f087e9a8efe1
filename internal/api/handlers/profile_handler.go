package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/isdelr/wellness-be/internal/models"
	"github.com/isdelr/wellness-be/internal/services"
)

// ProfileHandler handles HTTP requests for user profiles.
type ProfileHandler struct {
	service services.ProfileServiceProvider
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(service services.ProfileServiceProvider) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// ProfileResponse is the user summary returned after an update.
type ProfileResponse struct {
	ID int64 `json:"id"`
	models.Profile
}

// Get returns the profile of the user in the path.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDParam(w, r)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// Update applies a partial profile change on behalf of the token's owner.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDParam(w, r)
	if !ok {
		return
	}
	caller, ok := callerFromContext(w, r)
	if !ok {
		return
	}

	var payload models.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), id, caller, payload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"msg":  "Profile updated successfully",
		"user": ProfileResponse{ID: user.ID, Profile: user.Profile()},
	})
}

func userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "user id must be an integer")
		return 0, false
	}
	return id, true
}
