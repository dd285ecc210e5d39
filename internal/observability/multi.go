package observability

import "context"

// MultiObserver forwards each event to several observers in order, so one
// query can feed both the log and the metrics registry.
type MultiObserver []Observer

// NewMultiObserver drops nil observers and returns the rest as one Observer.
func NewMultiObserver(observers ...Observer) MultiObserver {
	m := make(MultiObserver, 0, len(observers))
	for _, obs := range observers {
		if obs != nil {
			m = append(m, obs)
		}
	}
	return m
}

func (m MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, obs := range m {
		obs.OnEvent(ctx, event)
	}
}
