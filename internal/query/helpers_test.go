package query

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/five82/roster/internal/observability"
)

const waitTimeout = 2 * time.Second

type outcome[R any] struct {
	result R
	err    error
}

// fetchCall is one blocked invocation of a controlledFetcher.
type fetchCall[R any] struct {
	params  Params
	ctx     context.Context
	resolve chan outcome[R]
}

func (c *fetchCall[R]) succeed(r R) { c.resolve <- outcome[R]{result: r} }
func (c *fetchCall[R]) fail(err error) { c.resolve <- outcome[R]{err: err} }

// controlledFetcher blocks every call until the test resolves it, so tests
// decide settlement order.
type controlledFetcher[R any] struct {
	calls chan *fetchCall[R]
	count atomic.Int32
}

func newControlledFetcher[R any]() *controlledFetcher[R] {
	return &controlledFetcher[R]{calls: make(chan *fetchCall[R], 32)}
}

func (f *controlledFetcher[R]) fetch(ctx context.Context, p Params) (R, error) {
	f.count.Add(1)
	c := &fetchCall[R]{params: p, ctx: ctx, resolve: make(chan outcome[R], 1)}
	f.calls <- c
	select {
	case o := <-c.resolve:
		return o.result, o.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

func (f *controlledFetcher[R]) next(t *testing.T) *fetchCall[R] {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for fetch call")
		return nil
	}
}

func (f *controlledFetcher[R]) calledTimes() int { return int(f.count.Load()) }

// scriptedFetcher resolves immediately with queued outcomes, falling back to
// a default once the queue is empty.
type scriptedFetcher[R any] struct {
	mu     sync.Mutex
	queue  []outcome[R]
	def    outcome[R]
	params []Params
}

func (f *scriptedFetcher[R]) once(r R, err error) *scriptedFetcher[R] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, outcome[R]{result: r, err: err})
	return f
}

func (f *scriptedFetcher[R]) fetch(_ context.Context, p Params) (R, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.params = append(f.params, p)
	if len(f.queue) > 0 {
		o := f.queue[0]
		f.queue = f.queue[1:]
		return o.result, o.err
	}
	return f.def.result, f.def.err
}

func (f *scriptedFetcher[R]) calls() []Params {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Params(nil), f.params...)
}

// recorder captures emitted events.
type recorder struct {
	mu     sync.Mutex
	events []observability.Event
}

func (r *recorder) OnEvent(_ context.Context, e observability.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) count(typ observability.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func (r *recorder) all() []observability.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]observability.Event(nil), r.events...)
}

func awaitStatus[R any](t *testing.T, q *Query[R], want Status) State[R] {
	t.Helper()
	require.Eventually(t, func() bool {
		return q.Snapshot().Status == want
	}, waitTimeout, 2*time.Millisecond, "status never reached %s", want)
	return q.Snapshot()
}

func wait(t *testing.T, p *Pending) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	require.NoError(t, p.Wait(ctx))
}
