package stream

import (
	"context"
	"errors"

	"github.com/EuroPitch/Trading-Software/pkg/models"
)

// ErrRateLimited marks a provider-signaled "too many requests" condition,
// which triggers the cooldown window on top of the ordinary backoff.
var ErrRateLimited = errors.New("rate limited by provider")

// Conn is one established upstream streaming connection.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteJSON(v interface{}) error
	Close() error
}

// Dialer opens upstream streaming connections.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// Broadcaster receives one batched update per inbound trade frame.
type Broadcaster interface {
	Broadcast(update interface{})
}

// DeltaSource computes the derived change fields for a traded price, so
// push updates carry the same math as pull snapshots.
type DeltaSource interface {
	Delta(symbol string, price float64) models.PriceDelta
}
