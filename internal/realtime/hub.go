// Package realtime pushes state changes to connected clients over WebSocket,
// so dependents observe session and catalog updates instead of polling.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat (seconds).
	PingInterval = 30
	PongWait     = 60
)

// Events pushed to clients.
const (
	EventSessionUpdated = "session.updated" // targeted: your user record changed, refresh it
	EventClubCreated    = "club.created"
	EventClubUpdated    = "club.updated"
	EventClubDeleted    = "club.deleted"
	EventEventCreated   = "event.created"
	EventEventUpdated   = "event.updated"
	EventEventDeleted   = "event.deleted"
)

// Publisher publishes hub messages for cross-instance fan-out.
type Publisher interface {
	Publish(msg Message) error
}

// Subscriber subscribes to hub messages from other instances.
type Subscriber interface {
	Subscribe(handler func(msg Message)) (cancel func(), err error)
}

// Message is the envelope pushed to clients. A nil UserID means broadcast;
// otherwise only that user's connections receive it.
type Message struct {
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data,omitempty"`
	UserID *uuid.UUID      `json:"-"`
}

// Hub maintains the set of connected clients and fans messages out to them.
// Redis pub/sub bridges instances: every publish goes through Redis so each
// instance (including this one) delivers exactly once to its local clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client // clientID -> client
	logger  *zap.Logger
	pub     Publisher
	cancel  func()
}

// NewHub creates a hub and starts listening for cross-instance messages.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	h := &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
		pub:     pub,
	}
	if sub != nil {
		if cancel, err := sub.Subscribe(h.deliver); err == nil {
			h.cancel = cancel
		} else {
			logger.Warn("hub subscription failed, falling back to local-only delivery", zap.Error(err))
		}
	}
	return h
}

// Close stops the cross-instance subscription.
func (h *Hub) Close() {
	if h.cancel != nil {
		h.cancel()
	}
}

// Register adds a connected client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client connected", zap.String("client_id", c.ID), zap.String("user_id", c.UserID.String()))
}

// Unregister removes a client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.ID)
	h.mu.Unlock()
	h.logger.Debug("client disconnected", zap.String("client_id", c.ID))
}

// Broadcast pushes an event to every connected user on every instance.
func (h *Hub) Broadcast(event string, payload interface{}) {
	h.send(Message{Event: event, Data: marshal(payload)})
}

// NotifyUser pushes an event to one user's connections on every instance.
func (h *Hub) NotifyUser(userID uuid.UUID, event string, payload interface{}) {
	h.send(Message{Event: event, Data: marshal(payload), UserID: &userID})
}

func (h *Hub) send(msg Message) {
	if h.pub != nil && h.cancel != nil {
		// Redis echoes the message back to deliver, once, on each instance.
		if err := h.pub.Publish(msg); err == nil {
			return
		}
	}
	h.deliver(msg)
}

// deliver fans a message out to matching local clients.
func (h *Hub) deliver(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if msg.UserID != nil && *msg.UserID != c.UserID {
			continue
		}
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

func marshal(payload interface{}) json.RawMessage {
	switch v := payload.(type) {
	case nil:
		return nil
	case []byte:
		return v
	case json.RawMessage:
		return v
	default:
		data, _ := json.Marshal(payload)
		return data
	}
}
