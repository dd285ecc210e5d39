package observability

import (
	"context"
	"log/slog"
)

// SlogObserver writes each event as one log record whose message is the
// event type.
type SlogObserver struct {
	logger *slog.Logger
}

// NewSlogObserver creates a SlogObserver that emits to the given logger. A nil
// logger falls back to slog.Default().
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogObserver{logger: logger}
}

func (o *SlogObserver) OnEvent(ctx context.Context, event Event) {
	level := event.Level.SlogLevel()
	if !o.logger.Enabled(ctx, level) {
		return
	}
	attrs := make([]slog.Attr, 0, len(event.Attrs)+5)
	attrs = append(attrs,
		slog.String("query", event.Query),
		slog.String("query_id", event.QueryID),
		slog.Uint64("generation", event.Generation),
	)
	if event.Kind != "" {
		attrs = append(attrs, slog.String("kind", event.Kind))
	}
	if event.Duration > 0 {
		attrs = append(attrs, slog.Duration("duration", event.Duration))
	}
	for k, v := range event.Attrs {
		attrs = append(attrs, slog.Any(k, v))
	}
	o.logger.LogAttrs(ctx, level, string(event.Type), attrs...)
}
