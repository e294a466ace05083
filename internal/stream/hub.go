// Package stream broadcasts import lifecycle transitions to websocket
// subscribers so status displays update without polling.
package stream

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// Event is one import state transition.
type Event struct {
	ExternalID     string    `json:"externalId"`
	Status         string    `json:"status"`
	MatchID        string    `json:"matchId,omitempty"`
	Error          string    `json:"error,omitempty"`
	MarketsCreated int       `json:"marketsCreated,omitempty"`
	Warnings       int       `json:"warnings,omitempty"`
	At             time.Time `json:"at"`
}

const subscriberBuffer = 16

type Hub struct {
	logger *zap.Logger

	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger: logger,
		subs:   make(map[chan Event]struct{}),
	}
}

// Subscribe registers a listener. The returned cancel must be called when the
// listener goes away.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	cancel := func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish fans the event out to all subscribers. A subscriber that cannot
// keep up loses events rather than blocking the publisher; the import
// pipeline never waits on a slow display.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			if h.logger != nil {
				h.logger.Debug("dropping stream event for slow subscriber",
					zap.String("external_id", ev.ExternalID))
			}
		}
	}
}

// SubscriberCount reports the number of live subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Serve writes hub events to one websocket connection until the context ends
// or the peer goes away.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn) error {
	events, cancel := h.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			writeCtx, cancelWrite := context.WithTimeout(ctx, 5*time.Second)
			err = conn.Write(writeCtx, websocket.MessageText, payload)
			cancelWrite()
			if err != nil {
				return err
			}
		}
	}
}
