package observability

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

// registry maps the names accepted by --observer to observers. "slog" is
// replaced by the file-backed logger once logging is set up.
var (
	registryMu sync.RWMutex
	registry   = map[string]Observer{
		"noop": NoOpObserver{},
		"slog": NewSlogObserver(slog.Default()),
	}
)

// GetObserver returns the observer registered under name.
func GetObserver(name string) (Observer, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	obs, ok := registry[name]
	if !ok {
		names := make([]string, 0, len(registry))
		for n := range registry {
			names = append(names, n)
		}
		slices.Sort(names)
		return nil, fmt.Errorf("unknown observer %q (have %s)", name, strings.Join(names, ", "))
	}
	return obs, nil
}

// RegisterObserver adds or replaces a named observer.
func RegisterObserver(name string, observer Observer) {
	registryMu.Lock()
	defer registryMu.Unlock()

	registry[name] = observer
}
