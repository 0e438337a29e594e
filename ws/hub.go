package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"civiclens-be/messaging"
)

// Hub fans issue events out to connected admin dashboards. Run owns the client set.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	count      atomic.Int64
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 32),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.count.Store(int64(len(h.clients)))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}
		case payload := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- payload:
				default:
					// Slow consumer.
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.count.Store(int64(len(h.clients)))
}

// Register returns false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Clients reports how many dashboards are connected.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Publish implements messaging.Publisher.
func (h *Hub) Publish(ctx context.Context, event messaging.Event) error {
	raw, err := json.Marshal(map[string]any{
		"type": event.Type,
		"data": event,
	})
	if err != nil {
		return fmt.Errorf("ws: marshal event: %w", err)
	}

	select {
	case h.broadcast <- raw:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close is a no-op; the hub stops with the context passed to Run.
func (h *Hub) Close() error { return nil }
