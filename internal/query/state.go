package query

import "time"

// State is an immutable snapshot of a query, published after every
// transition.
type State[R any] struct {
	Status Status `json:"status" yaml:"status"`
	// Result is the accumulated result; meaningful only when HasResult.
	Result    R     `json:"result" yaml:"result"`
	HasResult bool  `json:"has_result" yaml:"has_result"`
	Err       error `json:"-" yaml:"-"`
	// Generation is the live attempt id; completions of other ids are ignored.
	Generation          uint64    `json:"generation" yaml:"generation"`
	UpdatedAt           time.Time `json:"updated_at" yaml:"updated_at"`
	ConsecutiveFailures int       `json:"consecutive_failures" yaml:"consecutive_failures"`
	// PollActive reports whether the poll scheduler holds a timer.
	PollActive bool `json:"poll_active" yaml:"poll_active"`
}

// IsLoading is true during the first fetch.
func (s State[R]) IsLoading() bool { return s.Status == StatusFirstFetch }

// IsReloading is true during a manual refetch.
func (s State[R]) IsReloading() bool { return s.Status == StatusRefetching }

// IsLoadingMore is true while a fetch-more page is pending.
func (s State[R]) IsLoadingMore() bool { return s.Status == StatusFetchingMore }

// IsPolling is true while a poll-triggered fetch is pending.
func (s State[R]) IsPolling() bool { return s.Status == StatusPolling }

// IsOffline returns true once several live attempts in a row have failed.
func (s State[R]) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}
