package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/wellness-be/internal/metrics"
	"github.com/isdelr/wellness-be/internal/services"
	ws "github.com/isdelr/wellness-be/internal/websocket"
)

// WebSocketHandler upgrades authenticated requests to chat sessions.
type WebSocketHandler struct {
	hub      *ws.Hub
	chat     services.ChatServiceProvider
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler. Browser origins must be
// listed in allowedOrigins ("*" allows any) or match the request host.
func NewWebSocketHandler(hub *ws.Hub, chat services.ChatServiceProvider, m *metrics.Metrics, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub:     hub,
		chat:    chat,
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

// Serve handles the WebSocket connection request.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	username, ok := callerFromContext(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(conn, username)
	h.hub.Add(client)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		client.WritePump()
	}()
	go func() {
		defer wg.Done()
		client.ReadPump(h.handleIncomingWSMessage)
	}()

	// Cleanup on disconnect.
	go func() {
		wg.Wait()
		h.hub.Remove(client)
	}()
}

// handleIncomingWSMessage processes messages received from a websocket client.
func (h *WebSocketHandler) handleIncomingWSMessage(client *ws.Client, message []byte) {
	var msg ws.Message
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Warn().Err(err).Str("username", client.Username).Msg("Error decoding websocket message")
		client.Queue(ws.NewErrorMessage("Invalid message format"))
		return
	}

	switch msg.Action {
	case ws.ActionChat:
		var payload ws.ChatPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			client.Queue(ws.NewErrorMessage("Invalid payload for chat"))
			return
		}
		h.metrics.ChatMessage("websocket")
		reply := h.chat.Respond(client.Username, payload.Message)
		client.Queue(ws.NewChatResponseMessage(client.Username, reply))

	default:
		log.Warn().Str("action", msg.Action).Msg("Unknown websocket action received")
		client.Queue(ws.NewErrorMessage("Unknown action: " + msg.Action))
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			// Non-browser clients send no Origin header.
			return true
		}
		if slices.Contains(allowed, "*") || slices.Contains(allowed, origin) {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}
