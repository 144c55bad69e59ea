// Package realtime implements the per-user broadcast groups behind the
// WebSocket endpoint. A Hub is created at startup, shared by reference with
// whatever emits events, and closed at shutdown.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/taskboard/task-manager/internal/api/metrics"
	"github.com/taskboard/task-manager/internal/core/domain"
)

// Hub is the connection registry. Groups are named by user id.
type Hub struct {
	mu      sync.RWMutex
	groups  map[string]map[*Client]struct{}
	clients map[*Client]struct{}
	closed  bool
	log     zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		groups:  make(map[string]map[*Client]struct{}),
		clients: make(map[*Client]struct{}),
		log:     log,
	}
}

// Register tracks a new connection. It returns false once the hub is closed.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	metrics.RealtimeConnections.Inc()
	return true
}

// Join adds a registered connection to group. Joining twice is a no-op.
func (h *Hub) Join(c *Client, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	members, ok := h.groups[group]
	if !ok {
		members = make(map[*Client]struct{})
		h.groups[group] = members
	}
	members[c] = struct{}{}
	c.groups[group] = struct{}{}
}

// Leave removes the connection from every group and closes its send queue.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	for group := range c.groups {
		members := h.groups[group]
		delete(members, c)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
	c.groups = make(map[string]struct{})
	delete(h.clients, c)
	close(c.send)
	metrics.RealtimeConnections.Dec()
}

// Broadcast implements ports.Broadcaster for single-instance deployments.
func (h *Hub) Broadcast(group string, event domain.RealtimeEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Str("event", event.Name).Msg("encode realtime event")
		return
	}
	h.Deliver(group, payload)
}

// Deliver queues an encoded event on every connection of group without
// blocking. A connection whose queue is full misses the event. It returns the
// number of connections the event was queued on.
func (h *Hub) Deliver(group string, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := h.groups[group]
	if len(members) == 0 {
		metrics.RealtimeEventsTotal.WithLabelValues("no_listeners").Inc()
		return 0
	}

	delivered := 0
	for c := range members {
		select {
		case c.send <- payload:
			delivered++
		default:
			metrics.RealtimeEventsTotal.WithLabelValues("dropped").Inc()
			h.log.Warn().Str("client_id", c.ID).Str("group", group).Msg("slow realtime client, event dropped")
		}
	}
	if delivered > 0 {
		metrics.RealtimeEventsTotal.WithLabelValues("delivered").Inc()
	}
	return delivered
}

// Members returns the number of connections currently in group.
func (h *Hub) Members(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

// Close disconnects every client and rejects further registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}
