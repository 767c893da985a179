// Package audit describes the events the console emits for every admin
// mutation that the API accepted.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	ProductCreated         = "admin.product.created"
	ProductUpdated         = "admin.product.updated"
	ProductDeleted         = "admin.product.deleted"
	OrderStatusChanged     = "admin.order.status_changed"
	MessageReadToggled     = "admin.message.read_toggled"
	MessageDeleted         = "admin.message.deleted"
	MessageReplied         = "admin.message.replied"
	SettingsPasswordChange = "admin.settings.password_changed"
	SettingsEmailChange    = "admin.settings.email_changed"
	SettingsAccountChange  = "admin.settings.account_changed"
)

// Event is one audit record. Actor is a fingerprint of the admin's
// credential, never the credential itself.
type Event struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Actor      string            `json:"actor"`
	Target     string            `json:"target,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
}

func NewEvent(eventType, actor, target string, attrs map[string]string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Actor:      actor,
		Target:     target,
		Attributes: attrs,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers audit events. Publish must not block on a slow broker
// for longer than the caller's context allows.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event; it is used when no broker is configured
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Recorder keeps published events in memory
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of what was published so far
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the type of every published event, in order
func (r *Recorder) Types() []string {
	var out []string
	for _, e := range r.Events() {
		out = append(out, e.Type)
	}
	return out
}
