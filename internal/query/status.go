package query

import "fmt"

// Status is the mutually exclusive loading phase of a query.
type Status int

const (
	StatusFirstFetch Status = iota
	StatusRefetching
	StatusFetchingMore
	StatusPolling
	StatusReady
	StatusError
)

var statusNames = [...]string{
	StatusFirstFetch:   "FIRST_FETCH",
	StatusRefetching:   "REFETCHING",
	StatusFetchingMore: "FETCHING_MORE",
	StatusPolling:      "POLLING",
	StatusReady:        "READY",
	StatusError:        "ERROR",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// MarshalText renders the status name so JSON and YAML output stay readable.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// InFlight reports whether the status implies a live attempt is pending.
func (s Status) InFlight() bool {
	switch s {
	case StatusFirstFetch, StatusRefetching, StatusFetchingMore, StatusPolling:
		return true
	default:
		return false
	}
}

// Kind tags why a fetch attempt was started.
type Kind int

const (
	KindInitial Kind = iota
	KindRefetch
	KindFetchMore
	KindPoll
)

func (k Kind) String() string {
	switch k {
	case KindInitial:
		return "initial"
	case KindRefetch:
		return "refetch"
	case KindFetchMore:
		return "fetch_more"
	case KindPoll:
		return "poll"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// status is the loading phase entered when an attempt of this kind starts.
func (k Kind) status() Status {
	switch k {
	case KindRefetch:
		return StatusRefetching
	case KindFetchMore:
		return StatusFetchingMore
	case KindPoll:
		return StatusPolling
	default:
		return StatusFirstFetch
	}
}
