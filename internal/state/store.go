package state

import "sync"

const defaultBuffer = 16

// Store coordinates a single writer publishing snapshots to many readers.
type Store[T any] struct {
	mu       sync.RWMutex
	snapshot T
	subs     []*subscriber[T]
	closed   bool
}

// subscriber queues published values without bound and forwards them to out
// from its own goroutine, so a slow reader never stalls Publish and never
// loses a value.
type subscriber[T any] struct {
	out  chan T
	quit chan struct{}

	mu      sync.Mutex
	queue   []T
	wake    chan struct{}
	closing bool
}

func newSubscriber[T any](buffer int) *subscriber[T] {
	sub := &subscriber[T]{
		out:  make(chan T, buffer),
		quit: make(chan struct{}),
		wake: make(chan struct{}, 1),
	}
	go sub.run()
	return sub
}

func (sub *subscriber[T]) push(v T) {
	sub.mu.Lock()
	sub.queue = append(sub.queue, v)
	sub.mu.Unlock()
	sub.signal()
}

// finish lets run deliver what is already queued and then close out.
func (sub *subscriber[T]) finish() {
	sub.mu.Lock()
	sub.closing = true
	sub.mu.Unlock()
	sub.signal()
}

func (sub *subscriber[T]) signal() {
	select {
	case sub.wake <- struct{}{}:
	default:
	}
}

func (sub *subscriber[T]) run() {
	defer close(sub.out)
	for {
		sub.mu.Lock()
		batch := sub.queue
		sub.queue = nil
		closing := sub.closing
		sub.mu.Unlock()

		for _, v := range batch {
			select {
			case sub.out <- v:
			case <-sub.quit:
				return
			}
		}
		if len(batch) > 0 {
			continue
		}
		if closing {
			return
		}
		select {
		case <-sub.wake:
		case <-sub.quit:
			return
		}
	}
}

// NewStore returns a Store holding initial as its first snapshot.
func NewStore[T any](initial T) *Store[T] {
	return &Store[T]{snapshot: initial}
}

// Publish replaces the stored snapshot and queues it for every subscriber.
// It never blocks: each subscriber's backlog grows until its reader catches
// up. Publishing after Close still updates the pull snapshot but notifies no
// one.
func (s *Store[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = v
	if s.closed {
		return
	}
	for _, sub := range s.subs {
		sub.push(v)
	}
}

// Snapshot returns the most recently published value.
func (s *Store[T]) Snapshot() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Subscribe registers a channel that receives every published snapshot from
// now on, in publish order. buffer sizes the channel itself; values beyond it
// wait in an unbounded backlog. The returned function unsubscribes, discards
// the backlog and closes the channel; calling it more than once is safe.
// Subscribing to a closed store yields an already-closed channel.
func (s *Store[T]) Subscribe(buffer int) (<-chan T, func()) {
	if buffer <= 0 {
		buffer = defaultBuffer
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		ch := make(chan T)
		close(ch)
		return ch, func() {}
	}
	sub := newSubscriber[T](buffer)
	s.subs = append(s.subs, sub)

	var once sync.Once
	return sub.out, func() {
		once.Do(func() { s.remove(sub) })
	}
}

func (s *Store[T]) remove(sub *subscriber[T]) {
	s.mu.Lock()
	for i, other := range s.subs {
		if other == sub {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	close(sub.quit)
}

// Close ends every subscription once its backlog has been delivered, so range
// loops see the final snapshot and then terminate. Further subscriptions
// receive a closed channel. Readers that stop early must still call their
// unsubscribe function.
func (s *Store[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for _, sub := range s.subs {
		sub.finish()
	}
	s.subs = nil
}
