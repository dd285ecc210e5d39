package observability

import "context"

// NoOpObserver discards events. New queries use it when Config.Observer is
// nil.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(context.Context, Event) {}
