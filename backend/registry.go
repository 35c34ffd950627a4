package backend

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// BackendFactory creates a new backend instance.
type BackendFactory func() Backend

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]BackendFactory)
	// Priority order for backend selection (first that opens wins).
	// Real hardware first, the no-op device last.
	backendPriority = []string{BackendVulkan, BackendNoop}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory BackendFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the registered backend names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Get returns a backend instance by name.
// Returns nil if the backend is not registered.
func Get(name string) Backend {
	registryMu.RLock()
	defer registryMu.RUnlock()

	factory, ok := backends[name]
	if !ok {
		return nil
	}
	return factory()
}

// candidates returns backends in selection order: priority names first,
// then the rest sorted by name.
func candidates() []Backend {
	registryMu.RLock()
	defer registryMu.RUnlock()

	seen := make(map[string]bool, len(backends))
	var out []Backend
	for _, name := range backendPriority {
		if factory, ok := backends[name]; ok {
			seen[name] = true
			if b := factory(); b != nil {
				out = append(out, b)
			}
		}
	}

	rest := make([]string, 0, len(backends))
	for name := range backends {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		if b := backends[name](); b != nil {
			out = append(out, b)
		}
	}
	return out
}

// Default returns the best available backend based on priority.
// Priority order: vulkan > noop > others by name.
// Returns nil if no backends are registered.
func Default() Backend {
	if c := candidates(); len(c) > 0 {
		return c[0]
	}
	return nil
}

// Open opens a device on the named backend. An empty name tries every
// registered backend in priority order and returns the first device that
// opens.
func Open(name string, opts Options) (Device, error) {
	if name != "" {
		b := Get(name)
		if b == nil {
			return nil, fmt.Errorf("%w: %q (registered: %v)", ErrBackendNotAvailable, name, Available())
		}
		dev, err := b.Open(opts)
		if err != nil {
			return nil, fmt.Errorf("backend %s: %w", name, err)
		}
		return dev, nil
	}

	var errs []error
	for _, b := range candidates() {
		dev, err := b.Open(opts)
		if err == nil {
			return dev, nil
		}
		if opts.Logger != nil {
			opts.Logger.Debug("backend: open failed, trying next", "backend", b.Name(), "err", err)
		}
		errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
	}
	if len(errs) == 0 {
		return nil, ErrBackendNotAvailable
	}
	return nil, fmt.Errorf("%w: %w", ErrBackendNotAvailable, errors.Join(errs...))
}
