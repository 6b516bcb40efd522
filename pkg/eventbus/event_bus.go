// Package eventbus publishes and consumes flow lifecycle events.
package eventbus

import (
	"context"

	"github.com/ana-fx/mail-blast-sub001/pkg/events"
)

// Event is any lifecycle event carrying its type.
type Event interface {
	GetType() events.EventType
}

// EventHandler processes one decoded event.
type EventHandler func(ctx context.Context, event any) error

// EventBus publishes lifecycle events and dispatches subscriptions.
type EventBus interface {
	Publish(ctx context.Context, key string, event Event) error
	Subscribe(ctx context.Context) error
	Handle(eventType events.EventType, handler EventHandler) error
	GenerateID() string
	Close() error
}
