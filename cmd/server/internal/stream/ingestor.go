package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/EuroPitch/Trading-Software/pkg/config"
	"github.com/EuroPitch/Trading-Software/pkg/models"
)

// rateLimitPenalty is how much a provider-signaled rate limit counts
// against the failure ceiling compared to an ordinary disconnect.
const rateLimitPenalty = 3

type livePrice struct {
	price float64
	at    time.Time
}

// Ingestor owns the single upstream streaming connection and the last-price
// map. It drives the reconnect state machine as an explicit loop: no
// recursion, bounded by the context and the consecutive-failure ceiling.
// Once the ceiling is hit the ingestor stops for the process lifetime and
// the service degrades to fundamentals-only pricing.
type Ingestor struct {
	dialer  Dialer
	url     string
	apiKey  string
	symbols []string
	deltas  DeltaSource
	sink    Broadcaster
	logger  *zap.Logger

	backoffBase    time.Duration
	backoffMax     time.Duration
	cooldown       time.Duration
	subscribeDelay time.Duration
	maxFailures    int

	mu            sync.RWMutex
	prices        map[string]livePrice
	state         State
	failures      int
	lastRateLimit time.Time
}

func NewIngestor(dialer Dialer, cfg config.StreamConfig, symbols []string, deltas DeltaSource, sink Broadcaster, logger *zap.Logger) *Ingestor {
	return &Ingestor{
		dialer:         dialer,
		url:            cfg.URL,
		apiKey:         cfg.APIKey,
		symbols:        symbols,
		deltas:         deltas,
		sink:           sink,
		logger:         logger,
		backoffBase:    cfg.BackoffBase,
		backoffMax:     cfg.BackoffMax,
		cooldown:       cfg.RateLimitCooldown,
		subscribeDelay: cfg.SubscribeDelay,
		maxFailures:    cfg.MaxFailures,
		prices:         make(map[string]livePrice),
	}
}

// Price returns the last traded price for a symbol. Hot path: called from
// every Compose, so the critical section is a single map read.
func (i *Ingestor) Price(symbol string) (float64, bool) {
	i.mu.RLock()
	lp, ok := i.prices[symbol]
	i.mu.RUnlock()
	return lp.price, ok
}

// Connected reports whether the ingestor is currently streaming. Consumed
// by health checks.
func (i *Ingestor) Connected() bool {
	return i.State() == StateStreaming
}

// State returns the current connection state.
func (i *Ingestor) State() State {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.state
}

// Run drives connect/subscribe/stream cycles until the context is cancelled
// or the failure ceiling is exceeded.
func (i *Ingestor) Run(ctx context.Context) {
	if i.apiKey == "" {
		i.logger.Warn("No streaming API key configured, live prices disabled")
		return
	}

	for ctx.Err() == nil {
		if i.failureCount() >= i.maxFailures {
			i.setState(StateDisconnected)
			i.logger.Error("Consecutive-failure ceiling reached, live streaming disabled for this process",
				zap.Int("failures", i.failureCount()))
			return
		}

		if d := i.nextDelay(); d > 0 {
			i.logger.Info("Waiting before reconnect", zap.Duration("delay", d), zap.Int("failures", i.failureCount()))
			if !wait(ctx, d) {
				return
			}
		}

		i.runConnection(ctx)
	}
}

// runConnection performs one Connecting -> Subscribing -> Streaming pass and
// returns when the connection is lost or the context is cancelled.
func (i *Ingestor) runConnection(ctx context.Context) {
	i.setState(StateConnecting)
	i.logger.Info("Connecting to streaming provider")

	conn, err := i.dialer.Dial(ctx, fmt.Sprintf("%s?token=%s", i.url, i.apiKey))
	if err != nil {
		i.recordFailure(err)
		return
	}
	defer conn.Close()

	i.setState(StateSubscribing)
	for _, sym := range i.symbols {
		if ctx.Err() != nil {
			return
		}
		if err := conn.WriteJSON(models.SubscribeFrame{Type: "subscribe", Symbol: sym}); err != nil {
			i.recordFailure(err)
			return
		}
		// Spread subscribe frames out so the provider isn't burst at.
		if i.subscribeDelay > 0 && !wait(ctx, i.subscribeDelay) {
			return
		}
	}

	i.enterStreaming()
	i.logger.Info("Streaming connected", zap.Int("symbols", len(i.symbols)))

	for ctx.Err() == nil {
		raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				i.recordFailure(err)
			}
			return
		}
		if err := i.handleFrame(raw); err != nil {
			i.recordFailure(err)
			return
		}
	}
}

// handleFrame processes one inbound frame. A trade frame updates the live
// map for every print it carries and hands the whole batch to the fan-out
// hub as a single broadcast unit. A returned error tears the connection
// down and re-enters the reconnect loop.
func (i *Ingestor) handleFrame(raw []byte) error {
	var frame models.TradeFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return fmt.Errorf("malformed frame: %w", err)
	}

	switch frame.Type {
	case "trade":
		if len(frame.Data) == 0 {
			return nil
		}
		now := time.Now()
		i.mu.Lock()
		for _, tr := range frame.Data {
			i.prices[tr.Symbol] = livePrice{price: tr.Price, at: now}
		}
		i.mu.Unlock()

		batch := make(map[string]models.PriceDelta, len(frame.Data))
		for _, tr := range frame.Data {
			batch[tr.Symbol] = i.deltas.Delta(tr.Symbol, tr.Price)
		}
		i.sink.Broadcast(models.PriceUpdateEvent{Type: "price_update", Data: batch})
		return nil

	case "error":
		if isRateLimitMessage(frame.Msg) {
			return ErrRateLimited
		}
		i.logger.Warn("Provider error frame", zap.String("msg", frame.Msg))
		return nil

	default:
		// ping and anything unrecognized: ignore.
		return nil
	}
}

// nextDelay computes the wait before the next connect attempt: exponential
// backoff on the consecutive-failure count, and never inside the rate-limit
// cooldown window.
func (i *Ingestor) nextDelay() time.Duration {
	i.mu.RLock()
	failures := i.failures
	lastRL := i.lastRateLimit
	i.mu.RUnlock()

	var d time.Duration
	if failures > 0 {
		if failures < 32 && i.backoffBase<<uint(failures) > 0 {
			d = i.backoffBase << uint(failures)
		} else {
			d = i.backoffMax
		}
		if d > i.backoffMax {
			d = i.backoffMax
		}
	}

	if !lastRL.IsZero() {
		if remaining := i.cooldown - time.Since(lastRL); remaining > d {
			d = remaining
		}
	}
	return d
}

func (i *Ingestor) recordFailure(err error) {
	i.mu.Lock()
	if errors.Is(err, ErrRateLimited) {
		i.failures += rateLimitPenalty
		i.lastRateLimit = time.Now()
	} else {
		i.failures++
	}
	i.state = StateDisconnected
	failures := i.failures
	i.mu.Unlock()

	i.logger.Warn("Streaming connection lost", zap.Error(err), zap.Int("failures", failures))
}

func (i *Ingestor) enterStreaming() {
	i.mu.Lock()
	i.state = StateStreaming
	i.failures = 0
	i.mu.Unlock()
}

func (i *Ingestor) setState(s State) {
	i.mu.Lock()
	i.state = s
	i.mu.Unlock()
}

func (i *Ingestor) failureCount() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.failures
}

func isRateLimitMessage(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "429") ||
		strings.Contains(m, "too many") ||
		strings.Contains(m, "rate limit")
}

func wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
