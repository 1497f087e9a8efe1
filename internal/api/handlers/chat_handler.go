package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/isdelr/wellness-be/internal/metrics"
	"github.com/isdelr/wellness-be/internal/services"
)

// ChatHandler answers chat messages over plain HTTP.
type ChatHandler struct {
	service services.ChatServiceProvider
	metrics *metrics.Metrics
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(service services.ChatServiceProvider, m *metrics.Metrics) *ChatHandler {
	return &ChatHandler{service: service, metrics: m}
}

// ChatResponse is the bot reply.
type ChatResponse struct {
	User     string `json:"user"`
	Response string `json:"response"`
}

// Get answers the message query parameter.
func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !r.URL.Query().Has("message") {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	h.reply(w, r, r.URL.Query().Get("message"))
}

// Post answers a JSON {"message": "..."} body.
func (h *ChatHandler) Post(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message *string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Message == nil {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	h.reply(w, r, *payload.Message)
}

func (h *ChatHandler) reply(w http.ResponseWriter, r *http.Request, message string) {
	username, ok := callerFromContext(w, r)
	if !ok {
		return
	}
	h.metrics.ChatMessage("http")
	writeJSON(w, http.StatusOK, ChatResponse{
		User:     username,
		Response: h.service.Respond(username, message),
	})
}
