// Package notify fans out in-process events: local store changes and
// finished sync passes.
package notify

import (
	"sync"
)

// SyncReport is published after every reconcile pass that ran online.
type SyncReport struct {
	OwnerID   string
	Processed int
	Failed    int
	Deferred  int
}

// Broadcaster delivers published values to every subscriber whose filter
// accepts them. Publishing never blocks: a subscriber that does not keep up
// loses values once its buffer is full.
type Broadcaster[T any] struct {
	subs   map[int]*subscription[T]
	next   int
	buffer int
	closed bool
	mu     sync.Mutex
}

type subscription[T any] struct {
	ch     chan T
	filter func(T) bool
}

// NewBroadcaster creates a broadcaster with the given per-subscriber buffer.
func NewBroadcaster[T any](buffer int) *Broadcaster[T] {
	if buffer < 1 {
		buffer = 1
	}
	return &Broadcaster[T]{
		subs:   make(map[int]*subscription[T]),
		buffer: buffer,
	}
}

// Subscribe registers a subscriber. A nil filter accepts everything.
// The returned cancel func unsubscribes and closes the channel; it is safe to call twice.
func (b *Broadcaster[T]) Subscribe(filter func(T) bool) (<-chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan T, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.next
	b.next++
	b.subs[id] = &subscription[T]{ch: ch, filter: filter}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub.ch)
			}
		})
	}
}

// Publish delivers v to matching subscribers.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		if sub.filter != nil && !sub.filter(v) {
			continue
		}
		select {
		case sub.ch <- v:
		default:
		}
	}
}

// Close closes every subscriber channel. Later subscriptions get a closed channel.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		close(sub.ch)
		delete(b.subs, id)
	}
}
