package api

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/helio-health/patient-sync/internal/engine"
)

const streamSendBuffer = 16

// Hub fans engine events out to every connected websocket client. The
// portal UI listens here for navigation events instead of polling.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[chan engine.StreamEvent]struct{}
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			// The agent serves the local portal only.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[chan engine.StreamEvent]struct{}),
	}
}

// Broadcast delivers ev to every connected client. Clients that cannot
// keep up lose events rather than stalling the observation loop.
func (h *Hub) Broadcast(ev engine.StreamEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *Hub) register() chan engine.StreamEvent {
	ch := make(chan engine.StreamEvent, streamSendBuffer)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) unregister(ch chan engine.StreamEvent) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
}

// ServeHTTP upgrades the request and streams events until either side
// hangs up.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ch := h.register()
	defer h.unregister(ch)

	// The read loop only exists to notice the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case ev := <-ch:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}
