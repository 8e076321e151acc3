package hub

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Subscriber is one connected push client. Send must fail fast rather than
// block: a subscriber that cannot take a message is dropped, never waited on.
type Subscriber interface {
	ID() string
	Send(b []byte) error
	Close()
}

// Hub tracks active push subscribers and fans composed updates out to them.
// Delivery is best-effort and at-most-once per subscriber per broadcast: a
// failed write removes the subscriber immediately, with no retry and no
// backpressure on the broadcaster.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[Subscriber]bool
	logger      *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subscribers: make(map[Subscriber]bool),
		logger:      logger,
	}
}

// Connect registers a subscriber for all subsequent broadcasts.
func (h *Hub) Connect(sub Subscriber) {
	h.mu.Lock()
	h.subscribers[sub] = true
	total := len(h.subscribers)
	h.mu.Unlock()
	h.logger.Info("Client connected", zap.String("id", sub.ID()), zap.Int("total", total))
}

// Disconnect removes a subscriber and closes it. Safe to call for a
// subscriber that was already removed.
func (h *Hub) Disconnect(sub Subscriber) {
	h.mu.Lock()
	_, present := h.subscribers[sub]
	delete(h.subscribers, sub)
	total := len(h.subscribers)
	h.mu.Unlock()

	if present {
		sub.Close()
		h.logger.Info("Client disconnected", zap.String("id", sub.ID()), zap.Int("total", total))
	}
}

// Count returns the number of active subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Broadcast delivers one update to every current subscriber. It iterates a
// snapshot of the set so concurrent Connect/Disconnect calls are safe, and
// drops any subscriber whose delivery fails.
func (h *Hub) Broadcast(update interface{}) {
	payload, err := json.Marshal(update)
	if err != nil {
		h.logger.Error("Broadcast marshal failed", zap.Error(err))
		return
	}

	h.mu.RLock()
	targets := make([]Subscriber, 0, len(h.subscribers))
	for sub := range h.subscribers {
		targets = append(targets, sub)
	}
	h.mu.RUnlock()

	for _, sub := range targets {
		if err := sub.Send(payload); err != nil {
			h.logger.Debug("Dropping dead subscriber", zap.String("id", sub.ID()), zap.Error(err))
			h.Disconnect(sub)
		}
	}
}
