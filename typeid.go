package arbor

import (
	"reflect"
	"sync"
)

// TypeID is an opaque, stable handle naming a concrete runtime type.
// Extractors and converters are keyed by exact TypeID match; no structural
// subtyping is ever inferred from it.
type TypeID string

var (
	typeTableMu sync.RWMutex
	typeTable   = make(map[TypeID]reflect.Type)
)

// TypeOf derives the TypeID for T and records T's runtime type so the
// engine can later construct zero values and resolve runtime types for it.
func TypeOf[T any]() TypeID {
	return typeIDFor(reflect.TypeFor[T]())
}

func typeIDFor(rt reflect.Type) TypeID {
	id := TypeID(rt.String())

	typeTableMu.RLock()
	_, known := typeTable[id]
	typeTableMu.RUnlock()
	if known {
		return id
	}

	typeTableMu.Lock()
	typeTable[id] = rt
	typeTableMu.Unlock()
	return id
}

// goTypeFor returns the runtime type recorded for id, if any.
func goTypeFor(id TypeID) (reflect.Type, bool) {
	typeTableMu.RLock()
	defer typeTableMu.RUnlock()
	rt, ok := typeTable[id]
	return rt, ok
}

// runtimeTypeID returns the TypeID of v's dynamic type.
func runtimeTypeID(v any) (TypeID, bool) {
	rt := reflect.TypeOf(v)
	if rt == nil {
		return "", false
	}
	return typeIDFor(rt), true
}

// zeroValueFor returns the default-constructed value for id.
func zeroValueFor(id TypeID) (any, bool) {
	rt, ok := goTypeFor(id)
	if !ok {
		return nil, false
	}
	return reflect.Zero(rt).Interface(), true
}
