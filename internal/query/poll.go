package query

import (
	"time"

	"k8s.io/utils/clock"

	"github.com/five82/roster/internal/observability"
)

// pollLoop is the single repeating timer of a query. A loop is retired by
// closing stop; a tick from a retired loop is ignored even if it was already
// queued on the ticker channel.
type pollLoop struct {
	interval time.Duration
	ticker   clock.Ticker
	stop     chan struct{}
}

// StartPolling starts the poll timer. interval <= 0 uses Config.PollInterval;
// without any interval the call is a no-op. Starting again with the active
// interval is a no-op; a different interval replaces the timer.
func (q *Query[R]) StartPolling(interval time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	if interval <= 0 {
		interval = q.pollInterval
	}
	if interval <= 0 {
		e := q.event(EventPollSkip, observability.LevelWarning)
		e.Attrs = map[string]any{"reason": "no poll interval configured"}
		q.emit(e)
		return
	}
	q.autoPoll = false
	q.startPollingLocked(interval)
}

// StopPolling stops the poll timer synchronously: no tick fires after it
// returns. It also cancels a pending auto-start.
func (q *Query[R]) StopPolling() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.autoPoll = false
	if q.closed || q.poll == nil {
		return
	}
	q.stopPollingLocked()
	q.publish()
}

func (q *Query[R]) startPollingLocked(interval time.Duration) {
	if q.poll != nil {
		if q.poll.interval == interval {
			return
		}
		q.stopPollingLocked()
	}

	loop := &pollLoop{
		interval: interval,
		ticker:   q.clock.NewTicker(interval),
		stop:     make(chan struct{}),
	}
	q.poll = loop
	go q.runPoll(loop)

	q.publish()
	e := q.event(EventPollStart, observability.LevelInfo)
	e.Attrs = map[string]any{"interval": interval}
	q.emit(e)
}

func (q *Query[R]) stopPollingLocked() {
	loop := q.poll
	loop.ticker.Stop()
	close(loop.stop)
	q.poll = nil
	e := q.event(EventPollStop, observability.LevelInfo)
	e.Attrs = map[string]any{"interval": loop.interval}
	q.emit(e)
}

func (q *Query[R]) runPoll(loop *pollLoop) {
	for {
		select {
		case <-loop.stop:
			return
		case <-loop.ticker.C():
			q.tick(loop)
		}
	}
}

// tick starts a poll attempt unless another attempt is in flight, in which
// case the cycle is skipped. The ticker keeps the cadence anchored to fire
// times, not completions.
func (q *Query[R]) tick(loop *pollLoop) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed || q.poll != loop {
		return
	}
	if q.inFlight {
		e := q.event(EventPollSkip, observability.LevelVerbose)
		e.Attrs = map[string]any{"reason": "fetch in flight"}
		q.emit(e)
		return
	}
	q.begin(KindPoll, q.initial.Clone(), nil)
}
