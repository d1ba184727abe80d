// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xrt

import (
	"errors"
	"sync"
)

// RuntimeFactory creates a new runtime instance.
type RuntimeFactory func() Runtime

// ErrRuntimeNotAvailable is returned when no requested runtime is
// registered.
var ErrRuntimeNotAvailable = errors.New("xrt: runtime not available")

var (
	registryMu sync.RWMutex
	runtimes   = make(map[string]RuntimeFactory)
	// Priority order for runtime selection (first available wins).
	runtimePriority = []string{"openxr", "fakext"}
)

// Register registers a runtime factory with the given name.
// This is typically called from init() functions in runtime packages.
// If a runtime with the same name is already registered, it is replaced.
func Register(name string, factory RuntimeFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	runtimes[name] = factory
}

// Unregister removes a runtime from the registry. Useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(runtimes, name)
}

// Available returns the registered runtime names.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(runtimes))
	for name := range runtimes {
		names = append(names, name)
	}
	return names
}

// Get returns a runtime by name, or nil if it is not registered.
func Get(name string) Runtime {
	registryMu.RLock()
	defer registryMu.RUnlock()

	factory, ok := runtimes[name]
	if !ok {
		return nil
	}
	return factory()
}

// Default returns the best available runtime based on priority, or nil
// when none are registered.
func Default() Runtime {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, name := range runtimePriority {
		if factory, ok := runtimes[name]; ok {
			if r := factory(); r != nil {
				return r
			}
		}
	}

	// Fallback: first available.
	for _, factory := range runtimes {
		if r := factory(); r != nil {
			return r
		}
	}

	return nil
}
