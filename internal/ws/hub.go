// Package ws tracks connected WebSocket clients and fans upload
// notifications out to them.
package ws

import (
	"log"
	"sync"
)

// subscriber is one live realtime connection from the hub's point of view.
type subscriber interface {
	sendJSON(v interface{}) error
}

// thumbnailPayload mirrors the view returned by the upload endpoint.
type thumbnailPayload struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// thumbnailEvent is the push message sent after a successful upload.
type thumbnailEvent struct {
	Thumbnail thumbnailPayload `json:"thumbnail"`
}

// messageEvent wraps echoed client text.
type messageEvent struct {
	Message string `json:"message"`
}

// Hub is the process-wide registry of live connections. All access to the
// subscriber set goes through the mutex; connections register on upgrade and
// unregister when their read loop ends.
type Hub struct {
	mu   sync.Mutex
	subs map[subscriber]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[subscriber]struct{})}
}

func (h *Hub) register(s subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[s] = struct{}{}
}

func (h *Hub) unregister(s subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, s)
}

// Len returns the number of registered connections.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// broadcast sends v to every registered connection. A failed send is logged
// and does not stop delivery to the rest, nor does it unregister the
// subscriber: only its own read loop decides that a connection is dead.
func (h *Hub) broadcast(v interface{}) {
	h.mu.Lock()
	targets := make([]subscriber, 0, len(h.subs))
	for s := range h.subs {
		targets = append(targets, s)
	}
	h.mu.Unlock()

	for _, s := range targets {
		if err := s.sendJSON(v); err != nil {
			log.Printf("ws: notification send failed: %v", err)
		}
	}
}

// ThumbnailUploaded pushes an upload event to all connected clients.
// It satisfies the notifier the upload flow depends on.
func (h *Hub) ThumbnailUploaded(id int64, filename, url string) {
	h.broadcast(thumbnailEvent{Thumbnail: thumbnailPayload{
		ID:       id,
		Filename: filename,
		URL:      url,
	}})
}
