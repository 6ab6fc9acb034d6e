package arbor

import (
	"cmp"
	"reflect"
)

// MultiMapEntry is one stored (key, value) pair of a MultiMap.
type MultiMapEntry[K comparable, V any] struct {
	Key   K
	Value V
}

// MultiMap is an associative container permitting more than one value per
// key. It preserves exact insertion order, including interleaved keys, which
// the list encoding depends on.
type MultiMap[K comparable, V any] struct {
	entries []MultiMapEntry[K, V]
}

// Add appends a (key, value) pair.
func (m *MultiMap[K, V]) Add(key K, value V) {
	m.entries = append(m.entries, MultiMapEntry[K, V]{Key: key, Value: value})
}

// Len returns the number of stored entries.
func (m MultiMap[K, V]) Len() int { return len(m.entries) }

// Values returns all values stored under key, in insertion order.
func (m MultiMap[K, V]) Values(key K) []V {
	var out []V
	for _, e := range m.entries {
		if e.Key == key {
			out = append(out, e.Value)
		}
	}
	return out
}

// Keys returns the distinct keys in first-seen order.
func (m MultiMap[K, V]) Keys() []K {
	seen := make(map[K]bool, len(m.entries))
	var out []K
	for _, e := range m.entries {
		if !seen[e.Key] {
			seen[e.Key] = true
			out = append(out, e.Key)
		}
	}
	return out
}

// Entries returns a copy of the stored entries in insertion order.
func (m MultiMap[K, V]) Entries() []MultiMapEntry[K, V] {
	cp := make([]MultiMapEntry[K, V], len(m.entries))
	copy(cp, m.entries)
	return cp
}

// Equal reports whether both containers hold the same entries in the same
// insertion order.
func (m MultiMap[K, V]) Equal(other MultiMap[K, V]) bool {
	if len(m.entries) != len(other.entries) {
		return false
	}
	for i := range m.entries {
		if m.entries[i].Key != other.entries[i].Key {
			return false
		}
		if !reflect.DeepEqual(m.entries[i].Value, other.entries[i].Value) {
			return false
		}
	}
	return true
}

// multiMapExtractor decomposes MultiMap[K,V] in insertion order.
type multiMapExtractor[K cmp.Ordered, V any] struct {
	key TypeID
	val TypeID
}

// MultiMapExtractor returns an AssociativeExtractor for MultiMap[K,V].
func MultiMapExtractor[K cmp.Ordered, V any]() AssociativeExtractor {
	return multiMapExtractor[K, V]{key: TypeOf[K](), val: TypeOf[V]()}
}

func (multiMapExtractor[K, V]) Capability() Capability { return AssociativeKind }
func (e multiMapExtractor[K, V]) Key() TypeID          { return e.key }
func (e multiMapExtractor[K, V]) Value() TypeID        { return e.val }
func (multiMapExtractor[K, V]) MultiValued() bool      { return true }

func (multiMapExtractor[K, V]) Visit(v any, fn func(key, value any) error) error {
	m, err := assertAs[MultiMap[K, V]](v)
	if err != nil {
		return err
	}
	for _, e := range m.entries {
		if err := fn(e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}

func (multiMapExtractor[K, V]) Build(entries []AssocEntry) (any, error) {
	var out MultiMap[K, V]
	for _, e := range entries {
		k, err := assertAs[K](e.Key)
		if err != nil {
			return nil, err
		}
		v, err := assertAs[V](e.Value)
		if err != nil {
			return nil, err
		}
		out.Add(k, v)
	}
	return out, nil
}

// RegisterMultiMap registers the MultiMap[K,V] extractor under
// TypeOf[MultiMap[K,V]]().
func RegisterMultiMap[K cmp.Ordered, V any]() error {
	return RegisterExtractor(TypeOf[MultiMap[K, V]](), MultiMapExtractor[K, V]())
}
