package engine

import (
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownEngine is returned by Open for a name nothing registered.
var ErrUnknownEngine = fmt.Errorf("engine: unknown engine")

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Engine)
)

// Register makes an engine available to Open under the given name,
// in the manner of database/sql drivers. Registering a duplicate name
// or a nil engine panics.
func Register(name string, eng Engine) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if eng == nil {
		panic("engine: Register engine is nil")
	}
	if _, dup := registry[name]; dup {
		panic("engine: Register called twice for engine " + name)
	}
	registry[name] = eng
}

// Open returns the engine registered under name.
func Open(name string) (Engine, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	eng, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrUnknownEngine, name, engineNames())
	}
	return eng, nil
}

// Engines lists the registered engine names, sorted.
func Engines() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return engineNames()
}

func engineNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
