// Package query manages the lifecycle of an asynchronous data fetch: the
// initial load, manual refetch, incremental "fetch more" pagination, and
// interval polling.
//
// # Overview
//
// A Query wraps a caller-supplied Fetcher and owns a single State value. Every
// operation goes through the same pipeline:
//
//	operation ──> begin()            allocate generation, enter loading status,
//	                │                publish snapshot, start fetcher goroutine
//	                ▼
//	          fetcher(ctx, params)   runs without holding any lock
//	                │
//	                ▼
//	          generation check       stale? drop silently
//	                │ live
//	                ▼
//	          apply()                READY or ERROR, publish snapshot
//
// Only the result of the most recently started attempt is ever surfaced.
//
// # Generations
//
// Each attempt is tagged with a strictly increasing generation. The State
// records the live generation; a settlement carrying any other value is a stale
// completion and is discarded without touching the state, including the
// loading flags. Refetch and FetchMore never queue behind a pending attempt:
// they start a new generation and the older attempt becomes inert. Fetches may
// settle in any order; the guard alone prevents an older response from
// flickering over a newer one.
//
// Superseded fetchers are not cancelled. Their context is cancelled only when
// the whole query is closed.
//
// # States
//
//	(new)          ─────────────> FIRST_FETCH
//	READY/ERROR    Refetch()   ─> REFETCHING
//	READY/ERROR    FetchMore() ─> FETCHING_MORE
//	READY/ERROR    poll tick   ─> POLLING
//	any loading    success     ─> READY   (result replaced, or merged for FETCHING_MORE)
//	any loading    failure     ─> ERROR   (result kept, Err set)
//
// Err is cleared whenever a new attempt starts. A failure is never returned
// from an operation; it is only visible through State.Err as a *FetchError.
//
// # Pagination
//
// FetchMore derives params from the current state and merges the new page
// into the current result. Both functions resolve with precedence call site
// (MoreOptions) over construction (Config) over defaults. The defaults handle
// sequence-shaped results: DefaultParams returns {"start": len} and
// DefaultCombine concatenates into a fresh value. Page[T] is the stock
// sequence-shaped result. Cursor-based sources supply their own ParamsFunc.
//
// # Polling
//
// A query holds at most one poll timer. With Config.PollInterval set it starts
// after the first successful fetch. StartPolling and StopPolling are
// idempotent, and StopPolling guarantees no tick fires after it returns. A
// tick that finds an attempt in flight is skipped rather than queued, and the
// next tick follows the previous fire time, not the completion time. Poll
// failures move to ERROR but polling continues.
//
// # Observing
//
// Snapshot returns the latest State. Subscribe delivers every State published
// after the call, in order; a slow reader builds a backlog instead of losing
// intermediate transitions. See package state for the delivery rules. Each operation also returns a *Pending that closes once the
// attempt's transition has been applied.
//
// # Teardown
//
// Close stops the poll timer, bumps the generation so every in-flight attempt
// settles as stale, cancels the fetch context, and closes subscriptions.
// Operations on a closed query return an already settled, stale Pending.
//
// # Usage Example
//
//	q, err := query.New(query.Config[query.Page[int]]{
//		Fetch: func(ctx context.Context, p query.Params) (query.Page[int], error) {
//			return client.List(ctx, p.Int("start", 0), 3)
//		},
//		PollInterval: 30 * time.Second,
//	})
//	if err != nil {
//		return err
//	}
//	defer q.Close()
//
//	updates, stop := q.Subscribe(16)
//	defer stop()
//
//	_ = q.FetchMore().Wait(ctx)
//	render(q.Snapshot())
package query
