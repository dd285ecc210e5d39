package query

import (
	"context"
	"sync/atomic"
)

// Pending tracks a single fetch attempt until its settlement has been applied
// to the query, or discarded because a newer attempt superseded it.
type Pending struct {
	generation uint64
	kind       Kind
	done       chan struct{}
	stale      atomic.Bool
}

func newPending(generation uint64, kind Kind) *Pending {
	return &Pending{generation: generation, kind: kind, done: make(chan struct{})}
}

// settledPending is returned by operations on a closed query.
func settledPending(kind Kind) *Pending {
	p := newPending(0, kind)
	p.stale.Store(true)
	close(p.done)
	return p
}

// Done is closed once the attempt has settled and its transition (if any) is
// visible through Snapshot.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the attempt settles or ctx ends. A failed fetch is not an
// error here; it is reported through the query state.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Generation is the attempt id, zero for operations rejected after Close.
func (p *Pending) Generation() uint64 { return p.generation }

// Kind reports what started the attempt.
func (p *Pending) Kind() Kind { return p.kind }

// Stale reports whether the settlement was discarded. Only meaningful after
// Done is closed.
func (p *Pending) Stale() bool { return p.stale.Load() }
