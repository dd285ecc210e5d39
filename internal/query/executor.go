package query

import (
	"fmt"
	"time"

	"github.com/five82/roster/internal/observability"
)

// generation hands out attempt ids. Guarded by Query.mu.
type generation struct {
	last uint64
}

func (g *generation) next() uint64 {
	g.last++
	return g.last
}

// attempt is one invocation of the fetcher. It lives only until settlement.
type attempt[R any] struct {
	generation uint64
	kind       Kind
	params     Params
	combine    CombineFunc[R]
	pending    *Pending
	started    time.Time
}

// event returns an Event about this attempt.
func (a attempt[R]) event(typ observability.EventType, level observability.Level) observability.Event {
	return observability.Event{Type: typ, Level: level, Generation: a.generation, Kind: a.kind.String()}
}

// execute runs the fetcher outside the lock and applies the outcome only if
// the attempt is still live. The pending handle is released after the state
// change is visible.
func (q *Query[R]) execute(a attempt[R]) {
	defer close(a.pending.done)

	result, err := q.invoke(a.params)

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed || a.generation != q.state.Generation {
		a.pending.stale.Store(true)
		e := a.event(EventFetchStale, observability.LevelVerbose)
		e.Attrs = map[string]any{"live_generation": q.state.Generation}
		q.emit(e)
		return
	}
	q.apply(a, result, err)
}

func (q *Query[R]) invoke(params Params) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetcher panicked: %v", r)
		}
	}()
	return q.fetch(q.ctx, params)
}

// mergeResults runs a caller-supplied merge, turning a panic into an error the
// same way invoke does for fetchers.
func mergeResults[R any](fn CombineFunc[R], prev, next R) (merged R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("merge panicked: %v", r)
		}
	}()
	return fn(prev, next), nil
}
