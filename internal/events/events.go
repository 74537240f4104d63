// Package events carries outbound status events from the core to whatever
// transport adapter drains them (SSE, websocket push). Events are published
// after the owning transaction commits and publishing never blocks business
// logic.
package events

import (
	"time"

	"adspace-backend/internal/logger"
)

type Type string

const (
	TypeUnitStatus   Type = "unit-status"
	TypeDesignStatus Type = "design-status"
	TypeFitterStatus Type = "fitter-status"
)

type Event struct {
	Type           Type      `json:"type"`
	UnitID         string    `json:"unit_id"`
	ClaimID        string    `json:"claim_id,omitempty"`
	Status         string    `json:"status"`
	HasActiveClaim bool      `json:"has_active_claim"`
	At             time.Time `json:"at"`
}

// Bus is a bounded outbound event queue. A nil Bus drops everything, which
// keeps services usable without a transport adapter (tests, batch jobs).
type Bus struct {
	ch chan Event
}

func NewBus(size int) *Bus {
	if size <= 0 {
		size = 64
	}
	return &Bus{ch: make(chan Event, size)}
}

// Publish enqueues the event without blocking. If no consumer keeps up the
// event is dropped with a warning; status events are advisory and the next
// one supersedes the last.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	select {
	case b.ch <- e:
	default:
		logger.Warn("Dropping status event, bus is full", "type", e.Type, "unit_id", e.UnitID)
	}
}

// Events returns the channel a transport adapter drains.
func (b *Bus) Events() <-chan Event {
	return b.ch
}
