// Package hub streams surface mutations to connected browser editors over
// server-sent events.
package hub

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"coregraph/internal/surface"
)

// editor is one connected browser view.
type editor struct {
	id     string
	events chan []byte
}

// Hub fans surface mutations out to every connected editor.
type Hub struct {
	mu         sync.RWMutex
	editors    map[*editor]struct{}
	register   chan *editor
	unregister chan *editor
	broadcast  chan surface.Mutation
}

// New creates a Hub.
func New() *Hub {
	return &Hub{
		editors:    make(map[*editor]struct{}),
		register:   make(chan *editor),
		unregister: make(chan *editor),
		broadcast:  make(chan surface.Mutation, 256),
	}
}

// Run starts the hub's event loop.
func (h *Hub) Run() {
	for {
		select {
		case ed := <-h.register:
			h.mu.Lock()
			h.editors[ed] = struct{}{}
			h.mu.Unlock()
			log.Printf("editor connected: %s (total: %d)", ed.id, h.EditorCount())

		case ed := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.editors[ed]; ok {
				delete(h.editors, ed)
				close(ed.events)
			}
			h.mu.Unlock()
			log.Printf("editor disconnected: %s (total: %d)", ed.id, h.EditorCount())

		case m := <-h.broadcast:
			data, err := json.Marshal(m)
			if err != nil {
				log.Printf("marshal mutation: %v", err)
				continue
			}
			msg := fmt.Sprintf("data: %s\n\n", data)

			h.mu.RLock()
			for ed := range h.editors {
				select {
				case ed.events <- []byte(msg):
				default:
					// Slow editor, skip this mutation.
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast queues a mutation for every connected editor.
func (h *Hub) Broadcast(m surface.Mutation) {
	select {
	case h.broadcast <- m:
	default:
		log.Println("broadcast channel full, dropping mutation")
	}
}

// Pump forwards mutations from a subscription channel into the hub.
func (h *Hub) Pump(ch <-chan surface.Mutation) {
	for m := range ch {
		h.Broadcast(m)
	}
}

// EditorCount returns the number of connected editors.
func (h *Hub) EditorCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.editors)
}

// ServeHTTP handles one SSE connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	ed := &editor{
		id:     fmt.Sprintf("%d", time.Now().UnixNano()),
		events: make(chan []byte, 64),
	}
	h.register <- ed
	defer func() {
		h.unregister <- ed
	}()

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ed.events:
			if !ok {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
