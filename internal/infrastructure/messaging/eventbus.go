// Package messaging implements the in-process event bus that carries domain
// events (level-ups, streak changes, rollovers) from commands to handlers.
package messaging

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
	"github.com/levelup-fitness/levelup-core/pkg/logger"
)

// ErrEventBusClosed is returned by Subscribe and Publish after Close.
var ErrEventBusClosed = errors.New("event bus is closed")

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY EVENT BUS
// ══════════════════════════════════════════════════════════════════════════════

// InMemoryEventBus dispatches events to handlers in the publishing process.
// In sync mode handlers run on the publisher's goroutine in subscription
// order; in async mode each handler runs on a bounded worker pool.
type InMemoryEventBus struct {
	mu          sync.RWMutex
	handlers    map[shared.EventType][]shared.EventHandler
	allHandlers []shared.EventHandler
	asyncMode   bool
	workerPool  chan struct{}
	logger      *slog.Logger
	closed      bool
	closeCh     chan struct{}
	wg          sync.WaitGroup
}

// Config contains configuration for InMemoryEventBus.
type Config struct {
	// AsyncMode enables asynchronous event processing.
	AsyncMode bool

	// WorkerPoolSize bounds concurrent handlers in async mode.
	WorkerPoolSize int

	// Logger for structured logging.
	Logger *slog.Logger
}

// NewInMemoryEventBus creates a new in-memory event bus.
func NewInMemoryEventBus(config Config) *InMemoryEventBus {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = 4
	}

	return &InMemoryEventBus{
		handlers:   make(map[shared.EventType][]shared.EventHandler),
		asyncMode:  config.AsyncMode,
		workerPool: make(chan struct{}, config.WorkerPoolSize),
		logger:     config.Logger.With(logger.Component("eventbus")),
		closeCh:    make(chan struct{}),
	}
}

// Subscribe registers a handler for a specific event type.
func (b *InMemoryEventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}

	b.handlers[eventType] = append(b.handlers[eventType], handler)
	return nil
}

// SubscribeAll registers a handler for all events.
func (b *InMemoryEventBus) SubscribeAll(handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}

	b.allHandlers = append(b.allHandlers, handler)
	return nil
}

// Publish sends an event to all subscribed handlers. Handler failures are
// logged, never returned: the command that produced the event has already
// been persisted.
func (b *InMemoryEventBus) Publish(event shared.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrEventBusClosed
	}
	handlers := make([]shared.EventHandler, 0, len(b.handlers[event.EventType()])+len(b.allHandlers))
	handlers = append(handlers, b.handlers[event.EventType()]...)
	handlers = append(handlers, b.allHandlers...)
	if b.asyncMode {
		b.wg.Add(len(handlers))
	}
	b.mu.RUnlock()

	for _, handler := range handlers {
		if b.asyncMode {
			go b.executeAsync(event, handler)
			continue
		}
		if err := b.execute(event, handler); err != nil {
			b.logger.Error("handler error", slog.String("event_type", string(event.EventType())), logger.Err(err))
		}
	}

	return nil
}

func (b *InMemoryEventBus) executeAsync(event shared.Event, handler shared.EventHandler) {
	defer b.wg.Done()

	select {
	case b.workerPool <- struct{}{}:
		defer func() { <-b.workerPool }()
	case <-b.closeCh:
		return
	}

	if err := b.execute(event, handler); err != nil {
		b.logger.Error("async handler error", slog.String("event_type", string(event.EventType())), logger.Err(err))
	}
}

// execute runs one handler and turns a panic into an error.
func (b *InMemoryEventBus) execute(event shared.Event, handler shared.EventHandler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(event)
}

// Close stops accepting events and waits for pending async handlers. Handlers
// still waiting for a worker slot are dropped.
func (b *InMemoryEventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.closeCh)
	b.mu.Unlock()

	b.wg.Wait()
	return nil
}
