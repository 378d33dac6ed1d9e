package dev

import "sync"

// subscriberBuffer bounds how many unreceived reload signals a slow
// WebSocket connection can accumulate before further publishes are dropped
// for it; the broadcaster itself never blocks on a subscriber.
const subscriberBuffer = 4

// Broadcaster fans out reload signals to every subscribed connection.
// One producer (the rebuilder), many bounded-buffer consumers (the server's
// WebSocket connections); there is no replay for a subscriber that joins
// after a signal already fired.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan struct{}]struct{})}
}

// Publish notifies every current subscriber exactly once. A subscriber
// whose buffer is full drops the signal rather than blocking the caller.
func (b *Broadcaster) Publish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribe registers a new receiver and returns it along with a function
// that removes it from the subscriber set; callers must call it exactly once.
func (b *Broadcaster) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, subscriberBuffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
	}
	return ch, unsubscribe
}
