// Package console verteilt Logzeilen an die Websocket-Konsole der
// Weboberfläche.
package console

import (
	"sync"

	"heatmon/pkg/crash"
)

// ClientBuffer is the per-client queue length; a client that falls behind
// further loses lines instead of blocking the hub.
const ClientBuffer = 64

type registration struct {
	id string
	ch chan []byte
}

// Hub fans log lines out to registered clients. It implements io.Writer so
// it can sit behind a logger.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]chan []byte
	register   chan registration
	unregister chan string
	broadcast  chan []byte
	shutdown   chan struct{}
	stopOnce   sync.Once
	dropped    int
}

// NewHub creates and starts a hub
func NewHub() *Hub {
	h := &Hub{
		clients:    make(map[string]chan []byte),
		register:   make(chan registration),
		unregister: make(chan string),
		broadcast:  make(chan []byte, 256),
		shutdown:   make(chan struct{}),
	}
	crash.SafeGo("console-hub", h.run)
	return h
}

func (h *Hub) run() {
	for {
		select {
		case reg := <-h.register:
			h.mu.Lock()
			h.clients[reg.id] = reg.ch
			h.mu.Unlock()
		case id := <-h.unregister:
			h.mu.Lock()
			if ch, ok := h.clients[id]; ok {
				close(ch)
				delete(h.clients, id)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for _, ch := range h.clients {
				select {
				case ch <- msg:
				default:
					// Client hängt hinterher
					h.dropped++
				}
			}
			h.mu.Unlock()
		case <-h.shutdown:
			h.mu.Lock()
			for id, ch := range h.clients {
				close(ch)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Register adds a client channel under id. It returns false once the hub is
// stopped.
func (h *Hub) Register(id string, ch chan []byte) bool {
	select {
	case <-h.shutdown:
		return false
	default:
	}
	select {
	case h.register <- registration{id: id, ch: ch}:
		return true
	case <-h.shutdown:
		return false
	}
}

// Unregister removes and closes the client with the given id
func (h *Hub) Unregister(id string) {
	select {
	case h.unregister <- id:
	case <-h.shutdown:
	}
}

// Broadcast queues msg for all clients; dropped when the queue is full
func (h *Hub) Broadcast(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
	}
}

// Write broadcasts a copy of p. It never blocks and never fails, so a slow
// console cannot stall logging.
func (h *Hub) Write(p []byte) (int, error) {
	msg := make([]byte, len(p))
	copy(msg, p)
	h.Broadcast(msg)
	return len(p), nil
}

// Clients returns the number of registered clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many client deliveries were skipped
func (h *Hub) Dropped() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// Stop shuts the hub down and closes all client channels
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.shutdown) })
}
