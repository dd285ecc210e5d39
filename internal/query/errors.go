package query

import (
	"errors"
	"fmt"
)

var (
	// ErrNoFetcher is returned by New when Config.Fetch is nil.
	ErrNoFetcher = errors.New("query: fetch operation is required")

	// ErrInvalidPollInterval is returned by New for a negative PollInterval.
	ErrInvalidPollInterval = errors.New("query: poll interval must not be negative")
)

// FetchError is stored in State.Err when the live attempt fails.
type FetchError struct {
	Kind       Kind
	Generation uint64
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s fetch (generation %d): %v", e.Kind, e.Generation, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
