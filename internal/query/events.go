package query

import (
	"context"

	"github.com/five82/roster/internal/observability"
)

// Event types emitted to Config.Observer.
const (
	EventFetchStart   observability.EventType = "query.fetch.start"
	EventFetchSuccess observability.EventType = "query.fetch.success"
	EventFetchFailure observability.EventType = "query.fetch.failure"
	EventFetchStale   observability.EventType = "query.fetch.stale"
	EventPollStart    observability.EventType = "query.poll.start"
	EventPollStop     observability.EventType = "query.poll.stop"
	EventPollSkip     observability.EventType = "query.poll.skip"
	EventClose        observability.EventType = "query.close"
)

// emit stamps e with this query's identity and hands it to the observer. It
// must be called with q.mu held so events are observed in transition order.
func (q *Query[R]) emit(e observability.Event) {
	e.Time = q.clock.Now()
	e.Query = q.name
	e.QueryID = q.id
	q.observer.OnEvent(context.Background(), e)
}

// event returns an Event about the live generation.
func (q *Query[R]) event(typ observability.EventType, level observability.Level) observability.Event {
	return observability.Event{Type: typ, Level: level, Generation: q.state.Generation}
}
