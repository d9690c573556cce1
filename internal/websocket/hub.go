package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	// ErrClientClosed is returned when sending to a connection that has gone away
	ErrClientClosed = errors.New("client is closed")
	// ErrSlowClient is returned when a connection's send queue is full
	ErrSlowClient = errors.New("client send queue is full")
	// ErrHubClosed is returned when registering after Shutdown
	ErrHubClosed = errors.New("hub is shut down")
)

// Subscriber is one live connection belonging to a user
type Subscriber interface {
	ID() string
	UserID() int32
	Send(data []byte) error
	Close() error
}

// Hub routes events to the connections of the users they concern. A user may
// hold several connections (tabs, devices); each receives every event.
type Hub struct {
	mu     sync.RWMutex
	conns  map[int32]map[string]Subscriber
	closed bool
}

// NewHub creates an empty Hub
func NewHub() *Hub {
	return &Hub{conns: make(map[int32]map[string]Subscriber)}
}

// Register adds s to its user's channel
func (h *Hub) Register(s Subscriber) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}

	byID := h.conns[s.UserID()]
	if byID == nil {
		byID = make(map[string]Subscriber)
		h.conns[s.UserID()] = byID
	}
	byID[s.ID()] = s

	log.Debug().Int32("user_id", s.UserID()).Str("client_id", s.ID()).Msg("WebSocket client registered")
	return nil
}

// Unregister removes s. Removing an unknown subscriber is a no-op.
func (h *Hub) Unregister(s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(s)
}

// remove must be called with h.mu held
func (h *Hub) remove(s Subscriber) bool {
	byID, ok := h.conns[s.UserID()]
	if !ok || byID[s.ID()] != s {
		return false
	}
	delete(byID, s.ID())
	if len(byID) == 0 {
		delete(h.conns, s.UserID())
	}
	log.Debug().Int32("user_id", s.UserID()).Str("client_id", s.ID()).Msg("WebSocket client unregistered")
	return true
}

// recipients snapshots the connections of the listed users, each user once
func (h *Hub) recipients(userIDs []int32) []Subscriber {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[int32]bool, len(userIDs))
	var out []Subscriber
	for _, id := range userIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		for _, s := range h.conns[id] {
			out = append(out, s)
		}
	}
	return out
}

// Publish delivers event to every connection of each listed user. Listing a
// user twice delivers once. Connections that cannot keep up are dropped.
func (h *Hub) Publish(event Event, userIDs ...int32) {
	subscribers := h.recipients(userIDs)
	if len(subscribers) == 0 {
		return
	}

	data, err := event.ToJSON()
	if err != nil {
		log.Error().Err(err).Str("event_type", event.Type).Msg("Failed to serialize event")
		return
	}

	var stale []Subscriber
	for _, s := range subscribers {
		if err := s.Send(data); err != nil {
			log.Warn().
				Err(err).
				Int32("user_id", s.UserID()).
				Str("client_id", s.ID()).
				Str("event_type", event.Type).
				Msg("Dropping WebSocket client")
			stale = append(stale, s)
		}
	}
	h.evict(stale)

	log.Debug().
		Str("event_type", event.Type).
		Int("delivered", len(subscribers)-len(stale)).
		Msg("Event published")
}

func (h *Hub) evict(stale []Subscriber) {
	if len(stale) == 0 {
		return
	}
	h.mu.Lock()
	for _, s := range stale {
		h.remove(s)
	}
	h.mu.Unlock()
	for _, s := range stale {
		_ = s.Close()
	}
}

// ClientCount returns the number of connections held by userID
func (h *Hub) ClientCount(userID int32) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// TotalClientCount returns the number of connections across all users
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, byID := range h.conns {
		total += len(byID)
	}
	return total
}

// Shutdown closes every connection and refuses new ones
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	var all []Subscriber
	for _, byID := range h.conns {
		for _, s := range byID {
			all = append(all, s)
		}
	}
	h.conns = make(map[int32]map[string]Subscriber)
	h.mu.Unlock()

	for _, s := range all {
		if err := s.Close(); err != nil {
			log.Debug().Err(err).Str("client_id", s.ID()).Msg("Error closing WebSocket client")
		}
	}
	log.Info().Int("client_count", len(all)).Msg("WebSocket hub shut down")
}
