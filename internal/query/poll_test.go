package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

const pollEvery = 500 * time.Millisecond

func newPolledQuery(t *testing.T, interval time.Duration) (*Query[Page[int]], *controlledFetcher[Page[int]], *testingclock.FakeClock, *recorder) {
	t.Helper()
	f := newControlledFetcher[Page[int]]()
	clk := testingclock.NewFakeClock(time.Unix(1_700_000_000, 0))
	rec := &recorder{}
	q, err := New(Config[Page[int]]{
		Fetch:        f.fetch,
		PollInterval: interval,
		Clock:        clk,
		Observer:     rec,
	})
	require.NoError(t, err)
	t.Cleanup(q.Close)
	return q, f, clk, rec
}

func awaitPollActive(t *testing.T, q *Query[Page[int]], want bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		return q.Snapshot().PollActive == want
	}, waitTimeout, 2*time.Millisecond)
}

func TestPolling_StartsAfterFirstSuccess(t *testing.T) {
	q, f, clk, _ := newPolledQuery(t, pollEvery)

	assert.False(t, clk.HasWaiters(), "no timer before the first fetch settles")
	f.next(t).succeed(okPage())
	awaitPollActive(t, q, true)
	assert.True(t, clk.HasWaiters())

	clk.Step(pollEvery)
	poll := f.next(t)
	snap := awaitStatus(t, q, StatusPolling)
	assert.True(t, snap.IsPolling())
	assert.False(t, snap.IsReloading())
	assert.NoError(t, snap.Err)
	assert.Equal(t, okPage(), snap.Result)

	poll.succeed(Page[int]{Data: []int{99, 2, 3}})
	snap = awaitStatus(t, q, StatusReady)
	assert.Equal(t, Page[int]{Data: []int{99, 2, 3}}, snap.Result)

	clk.Step(pollEvery)
	f.next(t)
	assert.Equal(t, 3, f.calledTimes())
}

func TestPolling_DoesNotStartAfterFailedFirstFetch(t *testing.T) {
	q, f, clk, _ := newPolledQuery(t, pollEvery)

	f.next(t).fail(errNel)
	awaitStatus(t, q, StatusError)
	assert.False(t, clk.HasWaiters())

	p := q.Refetch()
	f.next(t).succeed(okPage())
	wait(t, p)
	awaitPollActive(t, q, true)
}

func TestPolling_SkipsTickWhileFetchInFlight(t *testing.T) {
	q, f, clk, rec := newPolledQuery(t, pollEvery)
	f.next(t).succeed(okPage())
	awaitPollActive(t, q, true)

	q.Refetch()
	refetch := f.next(t)

	clk.Step(pollEvery)
	require.Eventually(t, func() bool { return rec.count(EventPollSkip) == 1 }, waitTimeout, 2*time.Millisecond)
	assert.Equal(t, 2, f.calledTimes(), "skipped tick must not fetch")
	assert.Equal(t, StatusRefetching, q.Snapshot().Status)

	refetch.succeed(okPage())
	awaitStatus(t, q, StatusReady)

	clk.Step(pollEvery)
	f.next(t)
	assert.Equal(t, 3, f.calledTimes())
}

func TestPolling_ManualFetchSupersedesInFlightPoll(t *testing.T) {
	for _, tc := range []struct {
		name   string
		start  func(q *Query[Page[int]]) *Pending
		status Status
		want   Page[int]
	}{
		{"refetch", (*Query[Page[int]]).Refetch, StatusRefetching, Page[int]{Data: []int{7}}},
		{"fetch more", (*Query[Page[int]]).FetchMore, StatusFetchingMore, Page[int]{Data: []int{1, 2, 3, 7}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			q, f, clk, rec := newPolledQuery(t, pollEvery)
			f.next(t).succeed(okPage())
			awaitPollActive(t, q, true)

			clk.Step(pollEvery)
			poll := f.next(t)
			awaitStatus(t, q, StatusPolling)

			p := tc.start(q)
			manual := f.next(t)
			assert.Equal(t, tc.status, q.Snapshot().Status)

			poll.succeed(Page[int]{Data: []int{99}})
			require.Eventually(t, func() bool { return rec.count(EventFetchStale) == 1 }, waitTimeout, 2*time.Millisecond)
			snap := q.Snapshot()
			assert.Equal(t, tc.status, snap.Status, "late poll must not settle the live attempt")
			assert.Equal(t, okPage(), snap.Result)

			manual.succeed(Page[int]{Data: []int{7}})
			wait(t, p)
			assert.False(t, p.Stale())
			snap = q.Snapshot()
			assert.Equal(t, StatusReady, snap.Status)
			assert.Equal(t, tc.want, snap.Result)
			assert.True(t, snap.PollActive)

			clk.Step(pollEvery)
			f.next(t)
			assert.Equal(t, 4, f.calledTimes())
			assert.Zero(t, rec.count(EventPollSkip))
		})
	}
}

func TestPolling_ContinuesAfterFailure(t *testing.T) {
	q, f, clk, _ := newPolledQuery(t, pollEvery)
	f.next(t).succeed(okPage())
	awaitPollActive(t, q, true)

	clk.Step(pollEvery)
	f.next(t).fail(errNel)
	snap := awaitStatus(t, q, StatusError)
	assert.Equal(t, okPage(), snap.Result)
	assert.True(t, snap.PollActive)

	clk.Step(pollEvery)
	f.next(t).succeed(okPage())
	snap = awaitStatus(t, q, StatusReady)
	assert.NoError(t, snap.Err)
}

func TestPolling_StartAndStopAreIdempotent(t *testing.T) {
	q, f, clk, rec := newPolledQuery(t, 0)
	f.next(t).succeed(okPage())
	awaitStatus(t, q, StatusReady)

	q.StopPolling()
	assert.False(t, clk.HasWaiters())
	assert.Zero(t, rec.count(EventPollStop))

	q.StartPolling(pollEvery)
	q.StartPolling(pollEvery)
	assert.Equal(t, 1, rec.count(EventPollStart))
	assert.True(t, q.Snapshot().PollActive)

	q.StopPolling()
	assert.False(t, clk.HasWaiters(), "a second timer would survive a single stop")
	assert.False(t, q.Snapshot().PollActive)

	q.StopPolling()
	assert.Equal(t, 1, rec.count(EventPollStop))

	clk.Step(5 * pollEvery)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, f.calledTimes())
}

func TestPolling_RestartWithNewIntervalKeepsSingleTimer(t *testing.T) {
	q, f, clk, _ := newPolledQuery(t, pollEvery)
	f.next(t).succeed(okPage())
	awaitPollActive(t, q, true)

	q.StartPolling(2 * pollEvery)

	clk.Step(pollEvery)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, f.calledTimes(), "old interval must be retired")

	clk.Step(pollEvery)
	f.next(t)

	q.StopPolling()
	assert.False(t, clk.HasWaiters())
}

func TestPolling_StartWithoutIntervalIsNoOp(t *testing.T) {
	q, f, clk, rec := newPolledQuery(t, 0)
	f.next(t).succeed(okPage())
	awaitStatus(t, q, StatusReady)

	q.StartPolling(0)

	assert.False(t, clk.HasWaiters())
	assert.False(t, q.Snapshot().PollActive)
	assert.Equal(t, 1, rec.count(EventPollSkip))
}

func TestPolling_StartUsesConfiguredInterval(t *testing.T) {
	q, f, clk, _ := newPolledQuery(t, pollEvery)
	q.StopPolling()
	f.next(t).succeed(okPage())
	awaitStatus(t, q, StatusReady)
	assert.False(t, clk.HasWaiters(), "stop before first success disarms auto start")

	q.StartPolling(0)
	assert.True(t, clk.HasWaiters())

	clk.Step(pollEvery)
	f.next(t)
}

func TestPolling_CloseStopsTimer(t *testing.T) {
	q, f, clk, _ := newPolledQuery(t, pollEvery)
	f.next(t).succeed(okPage())
	awaitPollActive(t, q, true)

	q.Close()
	assert.False(t, clk.HasWaiters())

	q.StartPolling(pollEvery)
	assert.False(t, clk.HasWaiters(), "closed query must not restart polling")

	clk.Step(pollEvery)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, f.calledTimes())
}
