package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// deliveredWindow is how many recent event ids are remembered for de-duplication.
const deliveredWindow = 256

// EventHandler handles a published subscription lifecycle event.
type EventHandler func(context.Context, Event) error

// Dispatcher fans subscription lifecycle events out to handlers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// inMemoryDispatcher delivers synchronously, in subscription order, on the
// publisher's goroutine. An event id is delivered at most once within the
// recent window, so a retried publish of the same orphan does not write twice.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler

	seenMu    sync.Mutex
	seen      map[string]struct{}
	seenOrder []string
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{
		listeners: make(map[EventType][]EventHandler),
		seen:      make(map[string]struct{}, deliveredWindow),
	}
}

// Publish runs every handler for the event type. Handler errors and panics do
// not stop later handlers; they are joined and returned, tagged with the
// handler position and subscription id.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	if event.ID != "" && !d.markDelivered(event.ID) {
		return nil
	}

	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	var errs []error
	for i, handler := range handlers {
		if err := invoke(ctx, handler, event); err != nil {
			errs = append(errs, fmt.Errorf("%s handler %d for %s: %w", event.Type, i, event.SubscriptionID, err))
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers a handler for the given event type.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

// markDelivered reports false when id was already delivered.
func (d *inMemoryDispatcher) markDelivered(id string) bool {
	d.seenMu.Lock()
	defer d.seenMu.Unlock()
	if _, dup := d.seen[id]; dup {
		return false
	}
	if len(d.seenOrder) == deliveredWindow {
		delete(d.seen, d.seenOrder[0])
		d.seenOrder = d.seenOrder[1:]
	}
	d.seen[id] = struct{}{}
	d.seenOrder = append(d.seenOrder, id)
	return true
}

func invoke(ctx context.Context, handler EventHandler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(ctx, event)
}
