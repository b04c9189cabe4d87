package rules

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry = make(map[string]Strategy)
	mu       sync.RWMutex
)

// Register adds a strategy under its audit-type discriminator. Strategy
// packages call this from init; the entrypoint blank-imports them.
func Register(s Strategy) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[s.ID()]; exists {
		panic(fmt.Sprintf("strategy %s already registered", s.ID()))
	}
	registry[s.ID()] = s
}

// List returns all registered strategies sorted by discriminator.
func List() []Strategy {
	mu.RLock()
	defer mu.RUnlock()
	var out []Strategy
	for _, s := range registry {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID() < out[j].ID()
	})
	return out
}

// Lookup resolves an audit-type discriminator to its strategy. An unrecognized
// discriminator (including "none") returns false; the driver fails such rules
// closed rather than erroring.
func Lookup(auditType string) (Strategy, bool) {
	mu.RLock()
	defer mu.RUnlock()
	s, ok := registry[auditType]
	return s, ok
}
