// Package events carries domain events between modules so that, for
// example, the capture flow never imports the notification code that
// reacts to a lead changing hands. Contains no business logic itself.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event.
type Event interface {
	// EventName identifies the event type. Subscriptions key on it.
	EventName() string
	// OccurredAt is the instant the event happened.
	OccurredAt() time.Time
}

// BaseEvent holds the timestamp every event carries.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps an event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler reacts to events of one type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function into a Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes domain events to their subscribers.
type Bus interface {
	// Publish fans an event out to its handlers. Handlers run
	// asynchronously; a slow notification must not delay a capture.
	Publish(ctx context.Context, event Event)

	// PublishSync delivers the event and waits for every handler.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler under an event name, which must
	// match the value the event returns from EventName.
	Subscribe(eventName string, handler Handler)
}
