package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"k8s.io/utils/clock"

	"github.com/five82/roster/internal/observability"
	"github.com/five82/roster/internal/state"
)

// Fetcher is the caller-supplied asynchronous data source. ctx is cancelled
// when the query is closed; superseded attempts keep running and their
// outcome is ignored.
type Fetcher[R any] func(ctx context.Context, params Params) (R, error)

// Config configures a Query. Only Fetch is required.
type Config[R any] struct {
	Fetch Fetcher[R]
	// InitialParams are used for the first fetch, refetches and poll ticks,
	// and form the base of fetch-more params.
	InitialParams Params
	// PollInterval > 0 starts polling after the first successful fetch.
	PollInterval time.Duration
	UpdateParams ParamsFunc[R]
	UpdateResult CombineFunc[R]

	// Name labels events; defaults to "query".
	Name     string
	Observer observability.Observer
	// Clock drives poll ticks; defaults to the real clock.
	Clock clock.WithTicker
	// SubscriberBuffer is the default channel size for Subscribe.
	SubscriberBuffer int
}

// MoreOptions override the fetch-more behaviour for a single call.
type MoreOptions[R any] struct {
	// Params are overlaid on the derived params; their keys win.
	Params       Params
	UpdateParams ParamsFunc[R]
	UpdateResult CombineFunc[R]
}

// Query is one independently owned query lifecycle. All mutation happens
// under mu; readers only ever see published snapshots.
type Query[R any] struct {
	id        string
	name      string
	fetch     Fetcher[R]
	initial   Params
	merge     merger[R]
	observer  observability.Observer
	clock     clock.WithTicker
	subBuffer int

	ctx    context.Context
	cancel context.CancelFunc
	store  *state.Store[State[R]]

	mu           sync.Mutex
	gen          generation
	state        State[R]
	inFlight     bool
	closed       bool
	poll         *pollLoop
	pollInterval time.Duration
	autoPoll     bool
}

// New validates cfg and starts the initial fetch before returning, so the
// first Snapshot already reports StatusFirstFetch.
func New[R any](cfg Config[R]) (*Query[R], error) {
	if cfg.Fetch == nil {
		return nil, ErrNoFetcher
	}
	if cfg.PollInterval < 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPollInterval, cfg.PollInterval)
	}

	name := cfg.Name
	if name == "" {
		name = "query"
	}
	observer := cfg.Observer
	if observer == nil {
		observer = observability.NoOpObserver{}
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &Query[R]{
		id:           uuid.NewString(),
		name:         name,
		fetch:        cfg.Fetch,
		initial:      cfg.InitialParams.Clone(),
		merge:        newMerger(cfg.UpdateParams, cfg.UpdateResult),
		observer:     observer,
		clock:        clk,
		subBuffer:    cfg.SubscriberBuffer,
		ctx:          ctx,
		cancel:       cancel,
		store:        state.NewStore(State[R]{Status: StatusFirstFetch}),
		pollInterval: cfg.PollInterval,
		autoPoll:     cfg.PollInterval > 0,
	}

	q.mu.Lock()
	q.begin(KindInitial, q.initial.Clone(), nil)
	q.mu.Unlock()
	return q, nil
}

// ID uniquely identifies this instance in logs and metrics.
func (q *Query[R]) ID() string { return q.id }

// Name returns the configured label.
func (q *Query[R]) Name() string { return q.name }

// Snapshot returns the latest published state.
func (q *Query[R]) Snapshot() State[R] {
	return q.store.Snapshot()
}

// Subscribe returns a channel receiving every published state from now on,
// plus a function that ends the subscription. buffer <= 0 uses
// Config.SubscriberBuffer. Close ends the subscription once every state
// already published has been delivered.
func (q *Query[R]) Subscribe(buffer int) (<-chan State[R], func()) {
	if buffer <= 0 {
		buffer = q.subBuffer
	}
	return q.store.Subscribe(buffer)
}

// Refetch supersedes any pending attempt and re-runs the fetch with the
// initial params. The result replaces the current one.
func (q *Query[R]) Refetch() *Pending {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return settledPending(KindRefetch)
	}
	return q.begin(KindRefetch, q.initial.Clone(), nil)
}

// FetchMore fetches the next page using the configured merge functions.
func (q *Query[R]) FetchMore() *Pending {
	return q.FetchMoreWith(MoreOptions[R]{})
}

// FetchMoreWith fetches the next page. Params are the initial params overlaid
// by the derived params overlaid by opts.Params; on success the page is merged
// into the current result.
func (q *Query[R]) FetchMoreWith(opts MoreOptions[R]) *Pending {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return settledPending(KindFetchMore)
	}
	derive, combine := q.merge.resolve(opts)
	params := q.initial.Merge(derive(q.state)).Merge(opts.Params)
	return q.begin(KindFetchMore, params, combine)
}

// Close stops polling and makes every in-flight attempt inert. Subscriptions
// are closed; Snapshot keeps returning the last state.
func (q *Query[R]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.autoPoll = false
	if q.poll != nil {
		q.stopPollingLocked()
	}
	q.state.Generation = q.gen.next()
	q.state.PollActive = false
	q.emit(q.event(EventClose, observability.LevelInfo))

	q.cancel()
	q.store.Close()
	q.store.Publish(q.state)
}

// begin allocates the next generation and moves to the kind's loading
// status. Caller holds q.mu.
func (q *Query[R]) begin(kind Kind, params Params, combine CombineFunc[R]) *Pending {
	a := attempt[R]{
		generation: q.gen.next(),
		kind:       kind,
		params:     params,
		combine:    combine,
		started:    q.clock.Now(),
	}
	a.pending = newPending(a.generation, kind)

	q.state.Status = kind.status()
	q.state.Err = nil
	q.state.Generation = a.generation
	q.inFlight = true
	q.publish()
	q.emit(a.event(EventFetchStart, observability.LevelVerbose))

	go q.execute(a)
	return a.pending
}

// apply records the settlement of the live attempt. Caller holds q.mu and has
// already checked that a is live.
func (q *Query[R]) apply(a attempt[R], result R, err error) {
	q.inFlight = false
	q.state.UpdatedAt = q.clock.Now()

	merged := result
	if err == nil && a.kind == KindFetchMore && q.state.HasResult {
		merged, err = mergeResults(a.combine, q.state.Result, result)
	}
	if err != nil {
		q.state.Status = StatusError
		q.state.Err = &FetchError{Kind: a.kind, Generation: a.generation, Err: err}
		q.state.ConsecutiveFailures++
		q.publish()

		e := a.event(EventFetchFailure, observability.LevelWarning)
		e.Duration = q.clock.Since(a.started)
		e.Attrs = map[string]any{"error": err.Error()}
		q.emit(e)
		return
	}

	q.state.Result = merged
	q.state.HasResult = true
	q.state.Status = StatusReady
	q.state.Err = nil
	q.state.ConsecutiveFailures = 0
	q.publish()

	e := a.event(EventFetchSuccess, observability.LevelInfo)
	e.Duration = q.clock.Since(a.started)
	q.emit(e)

	if q.autoPoll {
		q.autoPoll = false
		q.startPollingLocked(q.pollInterval)
	}
}

// publish hands a copy of the state to readers. Caller holds q.mu.
func (q *Query[R]) publish() {
	q.state.PollActive = q.poll != nil
	q.store.Publish(q.state)
}
