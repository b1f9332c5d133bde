// Package events publishes domain events to a message broker.
package events

import (
	"context"
	"sync"

	"resume-matcher/internal/shared/telemetry"
)

const (
	ResumeIngested = "resume.ingested"
	MatchCreated   = "match.created"
)

// Publisher sends a JSON-encodable payload under a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }

// Emit publishes and logs failures. Event delivery never fails the caller.
func Emit(ctx context.Context, p Publisher, routingKey string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, routingKey, payload); err != nil {
		telemetry.Warn("events.publish.failed", map[string]any{
			"routing_key": routingKey,
			"err":         err.Error(),
		})
	}
}

// Event is one recorded publication.
type Event struct {
	RoutingKey string
	Payload    any
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, routingKey string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{RoutingKey: routingKey, Payload: payload})
	return nil
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
