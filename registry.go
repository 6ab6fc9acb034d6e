package arbor

import (
	"context"
	"sync"
)

// ConverterFactory lazily produces converters for types matching a pattern,
// avoiding upfront registration of one converter per concrete type. A
// factory either returns a converter for the requested type or declines.
type ConverterFactory interface {
	// Name identifies the factory for registration conflict checks.
	Name() string

	// New returns a converter for id, or false to decline.
	New(id TypeID) (Converter, bool)
}

var (
	factoryMu sync.RWMutex
	factories []ConverterFactory
	resolved  = make(map[TypeID][]Converter)
)

// AddConverterFactory appends a factory to the process-wide list shared by
// every Engine. Factories run on demand the first time an unseen TypeID is
// requested; the produced converters are cached for that TypeID for the
// remaining process lifetime. Registering a second factory with the same
// name fails with a ConfigError wrapping ErrConflict.
func AddConverterFactory(f ConverterFactory) error {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	for _, existing := range factories {
		if existing.Name() == f.Name() {
			return newConfigError(ErrConflict, "", "factory "+f.Name()+" already registered")
		}
	}
	factories = append(factories, f)
	return nil
}

// factoryConvertersFor returns the factory-produced converters for id,
// resolving them exactly once per TypeID even under concurrent first use.
func factoryConvertersFor(id TypeID) []Converter {
	// Fast path: read-lock cache check
	factoryMu.RLock()
	if cached, ok := resolved[id]; ok {
		factoryMu.RUnlock()
		return cached
	}
	factoryMu.RUnlock()

	// Slow path: resolve and cache with write-lock
	factoryMu.Lock()
	defer factoryMu.Unlock()

	// Double-check pattern
	if cached, ok := resolved[id]; ok {
		return cached
	}

	var cs []Converter
	for _, f := range factories {
		if c, ok := f.New(id); ok {
			cs = append(cs, c)
		}
	}
	resolved[id] = cs

	emitFactoryResolved(context.Background(), id, len(cs))
	return cs
}
