// Package observability carries query lifecycle events to loggers and metrics.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// Level is the severity of an event. The query core emits only these three.
type Level int

const (
	LevelVerbose Level = iota
	LevelInfo
	LevelWarning
)

func (l Level) String() string {
	switch l {
	case LevelVerbose:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	default:
		return "WARN"
	}
}

// SlogLevel maps this level to the corresponding slog.Level.
func (l Level) SlogLevel() slog.Level {
	switch l {
	case LevelVerbose:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

// EventType identifies the kind of event, e.g. "query.fetch.start".
type EventType string

// Event describes one step in a query's lifecycle. Query and QueryID identify
// the emitting instance. Generation is the attempt the event concerns, or the
// live generation for events not tied to an attempt. Kind and Duration are
// set only on fetch events, Duration only once the fetch has settled. Attrs
// holds anything else worth logging.
type Event struct {
	Type       EventType
	Level      Level
	Time       time.Time
	Query      string
	QueryID    string
	Generation uint64
	Kind       string
	Duration   time.Duration
	Attrs      map[string]any
}

// Observer receives events for logging or metrics. OnEvent is called while
// the query holds its lock, so implementations must not call back into it.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}
