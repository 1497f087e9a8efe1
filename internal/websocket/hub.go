package websocket

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Hub maintains the set of open chat sessions.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Open sessions per username.
	sessions map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	count      chan chan int
	quit       chan struct{}
	done       chan struct{}
	stopOnce   sync.Once

	onChange func(total int)
}

// NewHub creates a new Hub. onChange, when set, is called from the hub loop with
// the number of open sessions after every change.
func NewHub(onChange func(total int)) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		sessions:   make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan chan int),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		onChange:   onChange,
	}
}

// Run starts the Hub's processing loop. It returns after Stop.
func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.addSession(client)
			log.Info().Str("username", client.Username).Int("total_clients", len(h.clients)).Msg("Chat client connected")
			h.changed()
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				h.removeSession(client)
				log.Info().Str("username", client.Username).Int("total_clients", len(h.clients)).Msg("Chat client disconnected")
				h.changed()
			}
		case reply := <-h.count:
			reply <- len(h.clients)
		case <-h.quit:
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
				h.removeSession(client)
			}
			h.changed()
			return
		}
	}
}

// Stop closes every open session and stops the loop.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
	<-h.done
}

// Add registers client. After Stop the client is closed instead.
func (h *Hub) Add(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
		client.Close()
	}
}

// Remove unregisters client. It is a no-op after Stop.
func (h *Hub) Remove(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// Count returns the number of open sessions.
func (h *Hub) Count() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.quit:
		return 0
	}
}

func (h *Hub) changed() {
	if h.onChange != nil {
		h.onChange(len(h.clients))
	}
}

func (h *Hub) addSession(client *Client) {
	if h.sessions[client.Username] == nil {
		h.sessions[client.Username] = make(map[*Client]bool)
	}
	h.sessions[client.Username][client] = true
}

func (h *Hub) removeSession(client *Client) {
	if subs, ok := h.sessions[client.Username]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.sessions, client.Username)
		}
	}
}
