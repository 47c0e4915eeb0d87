// Package eventhandler contains the domain event handlers: side effects that
// follow a committed command without being part of it.
package eventhandler

import (
	"fmt"

	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
)

// Handler reacts to domain events.
type Handler interface {
	Handle(event shared.Event) error

	// EventTypes lists the events to receive. Empty means every event.
	EventTypes() []shared.EventType
}

// Register subscribes every handler to the bus.
func Register(bus shared.EventSubscriber, handlers ...Handler) error {
	for _, h := range handlers {
		types := h.EventTypes()
		if len(types) == 0 {
			if err := bus.SubscribeAll(h.Handle); err != nil {
				return fmt.Errorf("subscribe all: %w", err)
			}
			continue
		}
		for _, t := range types {
			if err := bus.Subscribe(t, h.Handle); err != nil {
				return fmt.Errorf("subscribe %s: %w", t, err)
			}
		}
	}
	return nil
}
