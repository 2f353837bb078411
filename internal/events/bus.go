// Package events is a small in-process publish/subscribe bus.
package events

import (
	"context"
	"sync"
)

// Handler receives published events. It runs on the publisher's goroutine.
type Handler[T any] func(ctx context.Context, event T)

// Bus fans events out to every subscriber, in subscription order.
type Bus[T any] struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[uint64]Handler[T]
	order    []uint64
}

func NewBus[T any]() *Bus[T] {
	return &Bus[T]{handlers: make(map[uint64]Handler[T])}
}

// Subscribe registers h and returns a function that removes it.
// Calling the returned function more than once is a no-op.
func (b *Bus[T]) Subscribe(h Handler[T]) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[id] = h
	b.order = append(b.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish delivers event to the current subscribers.
// A nil Bus accepts and drops every event.
func (b *Bus[T]) Publish(ctx context.Context, event T) {
	if b == nil {
		return
	}

	b.mu.RLock()
	handlers := make([]Handler[T], 0, len(b.order))
	for _, id := range b.order {
		handlers = append(handlers, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, event)
	}
}

// Len returns the number of active subscribers.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.order)
}
