// Package eventbus publishes change events to listeners. Publishing is fire-and-forget
// from the point of view of the services: failures are logged, never returned to callers.
package eventbus

import (
	"context"
	"io"

	"github.com/dukex/pathway/pkg/events"
)

// Event is anything with a routable type. Delivered events are pointers to the
// concrete structs in pkg/events.
type Event interface {
	GetType() events.EventType
}

// Handler processes one delivered event. Returning an error nacks the message.
type Handler func(ctx context.Context, event Event) error

// Publisher sends events keyed by the aggregate they describe, so one workflow or
// account keeps its order on partitioned transports.
type Publisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

// Subscriber routes delivered events to the handler registered for their type.
// Handlers must be registered before Subscribe.
type Subscriber interface {
	Handle(eventType events.EventType, handler Handler) error
	Subscribe(ctx context.Context) error
}

type EventBus interface {
	Publisher
	Subscriber
	io.Closer
}

// On adapts a handler for one concrete event type. Events of any other type are
// skipped without error.
func On[T Event](fn func(ctx context.Context, event T) error) Handler {
	return func(ctx context.Context, event Event) error {
		typed, ok := event.(T)
		if !ok {
			return nil
		}

		return fn(ctx, typed)
	}
}
