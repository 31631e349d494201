package main

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"drivesim/engine/internal/auth"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// client is one connected mirror consumer. Snapshot frames are fanned out on
// the send channel; a slow client is dropped rather than stalling the others.
type client struct {
	conn    *websocket.Conn
	send    chan []byte
	subject string
}

// Hub mirrors completed-tick snapshot frames to WebSocket clients and routes
// their control intents into the input pipeline.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]bool
	intents  *intentRouter
	verifier *auth.Verifier
	logger   zerolog.Logger
}

// NewHub constructs a hub. A nil verifier disables authentication.
func NewHub(intents *intentRouter, verifier *auth.Verifier, logger zerolog.Logger) *Hub {
	return &Hub{
		clients:  make(map[*client]bool),
		intents:  intents,
		verifier: verifier,
		logger:   logger.With().Str("component", "hub").Logger(),
	}
}

// Broadcast fans an encoded snapshot frame out to every connected client.
// It never blocks: clients that cannot keep up are disconnected.
func (h *Hub) Broadcast(frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			//1.- Drop the laggard so the simulation-facing path stays unblocked.
			close(c.send)
			delete(h.clients, c)
		}
	}
}

// authenticate resolves the client subject from the token, when auth is on.
func (h *Hub) authenticate(r *http.Request) (string, error) {
	if h.verifier == nil {
		return r.RemoteAddr, nil
	}
	token := strings.TrimSpace(r.URL.Query().Get("auth_token"))
	if token == "" {
		token = strings.TrimSpace(r.Header.Get("X-Auth-Token"))
	}
	if token == "" {
		return "", errors.New("missing auth token")
	}
	return h.verifier.Verify(token)
}

// ServeWS upgrades the connection and starts the reader/writer pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	subject, err := h.authenticate(r)
	if err != nil {
		h.logger.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("rejected websocket client")
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	c := &client{conn: conn, send: make(chan []byte, 256), subject: subject}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	h.logger.Info().Str("subject", subject).Msg("mirror client connected")

	// reader: control intents in
	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, c)
			h.mu.Unlock()
			c.conn.Close()
		}()
		for {
			_, payload, err := c.conn.ReadMessage()
			if err != nil {
				h.logger.Debug().Err(err).Str("subject", c.subject).Msg("mirror client read ended")
				return
			}
			if h.intents != nil {
				//1.- Intent failures are logged and dropped; one bad frame
				// never tears the connection down.
				if err := h.intents.Ingest(c.subject, payload); err != nil {
					h.logger.Debug().Err(err).Str("subject", c.subject).Msg("dropping intent")
				}
			}
		}
	}()

	// writer: snapshot frames out
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer func() {
			ticker.Stop()
			c.conn.Close()
		}()
		for {
			select {
			case frame, ok := <-c.send:
				if !ok {
					_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				//1.- Frames are snappy-compressed JSON, so binary framing applies.
				_ = c.conn.WriteMessage(websocket.BinaryMessage, frame)
			case <-ticker.C:
				_ = c.conn.WriteMessage(websocket.PingMessage, []byte{})
			}
		}
	}()
}
