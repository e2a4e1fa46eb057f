// Package events is a small named-event bus. Components subscribe to an
// event name and get back a function that removes the subscription.
package events

import (
	"sort"
	"sync"
)

// Handler receives the payload published with an event.
type Handler func(payload any)

// Bus dispatches published payloads to the handlers subscribed to a name.
// The zero value is ready to use.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string]map[uint64]Handler
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers fn for name. The returned function unregisters it and
// may be called any number of times.
func (b *Bus) Subscribe(name string, fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs == nil {
		b.subs = make(map[string]map[uint64]Handler)
	}
	if b.subs[name] == nil {
		b.subs[name] = make(map[uint64]Handler)
	}
	b.nextID++
	id := b.nextID
	b.subs[name][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[name], id)
			if len(b.subs[name]) == 0 {
				delete(b.subs, name)
			}
		})
	}
}

// Publish calls every handler subscribed to name, in subscription order,
// on the caller's goroutine. Handlers may subscribe or unsubscribe.
func (b *Bus) Publish(name string, payload any) {
	b.mu.RLock()
	ids := make([]uint64, 0, len(b.subs[name]))
	handlers := make(map[uint64]Handler, len(b.subs[name]))
	for id, fn := range b.subs[name] {
		ids = append(ids, id)
		handlers[id] = fn
	}
	b.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		handlers[id](payload)
	}
}

// Subscribers returns how many handlers are registered for name.
func (b *Bus) Subscribers(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[name])
}
