package arbor

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
)

// assertAs narrows an extractor payload with a typed error on mismatch.
func assertAs[T any](v any) (T, error) {
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: expected %T, got %T", ErrTypeMismatch, zero, v)
	}
	return t, nil
}

// sliceExtractor decomposes []E.
type sliceExtractor[E any] struct {
	elem TypeID
}

// SliceExtractor returns a SequenceExtractor for []E.
func SliceExtractor[E any]() SequenceExtractor {
	return sliceExtractor[E]{elem: TypeOf[E]()}
}

func (sliceExtractor[E]) Capability() Capability { return SequentialKind }
func (e sliceExtractor[E]) Elem() TypeID         { return e.elem }

func (sliceExtractor[E]) Visit(v any, fn func(elem any) error) error {
	s, err := assertAs[[]E](v)
	if err != nil {
		return err
	}
	for _, el := range s {
		if err := fn(el); err != nil {
			return err
		}
	}
	return nil
}

func (sliceExtractor[E]) Build(elems []any) (any, error) {
	out := make([]E, 0, len(elems))
	for _, el := range elems {
		e, err := assertAs[E](el)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// RegisterSequence registers the []E extractor under TypeOf[[]E]().
func RegisterSequence[E any]() error {
	return RegisterExtractor(TypeOf[[]E](), SliceExtractor[E]())
}

// mapExtractor decomposes map[K]V. Visitation is in ascending key order so
// serialized output is reproducible; Go's map iteration order is not.
type mapExtractor[K cmp.Ordered, V any] struct {
	key TypeID
	val TypeID
}

// MapExtractor returns an AssociativeExtractor for map[K]V.
func MapExtractor[K cmp.Ordered, V any]() AssociativeExtractor {
	return mapExtractor[K, V]{key: TypeOf[K](), val: TypeOf[V]()}
}

func (mapExtractor[K, V]) Capability() Capability { return AssociativeKind }
func (e mapExtractor[K, V]) Key() TypeID          { return e.key }
func (e mapExtractor[K, V]) Value() TypeID        { return e.val }
func (mapExtractor[K, V]) MultiValued() bool      { return false }

func (mapExtractor[K, V]) Visit(v any, fn func(key, value any) error) error {
	m, err := assertAs[map[K]V](v)
	if err != nil {
		return err
	}
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if err := fn(k, m[k]); err != nil {
			return err
		}
	}
	return nil
}

func (mapExtractor[K, V]) Build(entries []AssocEntry) (any, error) {
	out := make(map[K]V, len(entries))
	for _, e := range entries {
		k, err := assertAs[K](e.Key)
		if err != nil {
			return nil, err
		}
		v, err := assertAs[V](e.Value)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// RegisterMap registers the map[K]V extractor under TypeOf[map[K]V]().
func RegisterMap[K cmp.Ordered, V any]() error {
	return RegisterExtractor(TypeOf[map[K]V](), MapExtractor[K, V]())
}
