package arbor

import (
	"fmt"
	"strings"
	"sync"
)

// Capability names the structural family an extractor decomposes.
type Capability int

const (
	SequentialKind Capability = iota
	AssociativeKind
	PairKind
	TupleKind
	OptionalKind
	VariantKind
	PointerKind
)

// String returns the lowercase name of the capability.
func (c Capability) String() string {
	switch c {
	case SequentialKind:
		return "sequential"
	case AssociativeKind:
		return "associative"
	case PairKind:
		return "pair"
	case TupleKind:
		return "tuple"
	case OptionalKind:
		return "optional"
	case VariantKind:
		return "variant"
	case PointerKind:
		return "pointer"
	default:
		return fmt.Sprintf("capability(%d)", int(c))
	}
}

// Extractor exposes a container or composite type's internal shape for
// generic decomposition and recomposition. Concrete extractors implement one
// of the capability interfaces below. Extractors are registered once per
// TypeID and shared read-only for the process lifetime.
type Extractor interface {
	Capability() Capability
}

// SequenceExtractor decomposes sequential containers.
type SequenceExtractor interface {
	Extractor

	// Elem returns the element type identifier.
	Elem() TypeID

	// Visit calls fn for each element in storage order.
	Visit(v any, fn func(elem any) error) error

	// Build constructs a new container appending elements in the given order.
	Build(elems []any) (any, error)
}

// AssocEntry is one key/value pair visited or rebuilt by an
// AssociativeExtractor.
type AssocEntry struct {
	Key   any
	Value any
}

// AssociativeExtractor decomposes associative containers, single- or
// multi-valued.
type AssociativeExtractor interface {
	Extractor

	// Key and Value return the component type identifiers.
	Key() TypeID
	Value() TypeID

	// MultiValued reports whether the container permits more than one value
	// per key.
	MultiValued() bool

	// Visit calls fn for each entry. Multi-valued containers visit in
	// insertion order; single-valued containers visit in a deterministic
	// order of their choosing.
	Visit(v any, fn func(key, value any) error) error

	// Build constructs a new container from entries in the given order.
	Build(entries []AssocEntry) (any, error)
}

// TupleExtractor decomposes fixed-arity heterogeneous composites. Pair
// extractors implement this interface with Capability() == PairKind.
type TupleExtractor interface {
	Extractor

	// Slots returns the slot type identifiers in order. Order is
	// significant: (T1,T2) does not imply (T2,T1).
	Slots() []TypeID

	// Unpack returns the slot values in order.
	Unpack(v any) ([]any, error)

	// Pack constructs a new composite from slot values in order.
	Pack(slots []any) (any, error)
}

// OptionalExtractor decomposes optional wrappers.
type OptionalExtractor interface {
	Extractor

	// Elem returns the payload type identifier.
	Elem() TypeID

	// Get returns the payload and true, or false when absent.
	Get(v any) (any, bool)

	// Some wraps a present payload.
	Some(elem any) (any, error)

	// None returns the absent wrapper value.
	None() any
}

// VariantExtractor decomposes variant wrappers. Alternative order is a
// contract: deserialization commits to the first alternative that succeeds.
type VariantExtractor interface {
	Extractor

	// Alternatives returns the candidate type identifiers in declared order.
	Alternatives() []TypeID

	// Active returns the active alternative's type identifier and payload.
	Active(v any) (TypeID, any, error)

	// Build constructs the wrapper holding payload under alternative alt.
	Build(alt TypeID, payload any) (any, error)
}

// PointerExtractor decomposes ownership wrappers. Reconstruction always
// allocates a new owned instance and never aliases an existing one.
type PointerExtractor interface {
	Extractor

	// Elem returns the pointee type identifier.
	Elem() TypeID

	// Deref returns the pointee and true, or false for the null wrapper.
	Deref(v any) (any, bool)

	// Wrap allocates a new owned instance holding the payload.
	Wrap(payload any) (any, error)

	// Nil returns the null wrapper value.
	Nil() any
}

// extractorSignature renders an extractor's capability and component types
// so equivalent re-registrations can be detected as no-ops.
func extractorSignature(ex Extractor) string {
	var b strings.Builder
	b.WriteString(ex.Capability().String())
	switch e := ex.(type) {
	case SequenceExtractor:
		fmt.Fprintf(&b, "[%s]", e.Elem())
	case AssociativeExtractor:
		fmt.Fprintf(&b, "[%s,%s,multi=%t]", e.Key(), e.Value(), e.MultiValued())
	case TupleExtractor:
		b.WriteByte('[')
		for i, s := range e.Slots() {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(string(s))
		}
		b.WriteByte(']')
	case OptionalExtractor:
		fmt.Fprintf(&b, "[%s]", e.Elem())
	case VariantExtractor:
		b.WriteByte('[')
		for i, s := range e.Alternatives() {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(string(s))
		}
		b.WriteByte(']')
	case PointerExtractor:
		fmt.Fprintf(&b, "[%s]", e.Elem())
	}
	return b.String()
}

var (
	extractorMu sync.RWMutex
	extractors  = make(map[TypeID]Extractor)
)

// RegisterExtractor stores the extractor for id in the process-wide
// registry. Re-registering an equivalent extractor is a no-op; registering
// an incompatible one fails with a ConfigError wrapping ErrConflict. A
// TypeID maps to at most one extractor; no inheritance-based fallback is
// ever applied on lookup.
func RegisterExtractor(id TypeID, ex Extractor) error {
	sig := extractorSignature(ex)

	extractorMu.Lock()
	defer extractorMu.Unlock()

	if existing, ok := extractors[id]; ok {
		if extractorSignature(existing) == sig {
			return nil
		}
		return newConfigError(ErrConflict, id,
			fmt.Sprintf("extractor %s already registered, refusing %s",
				extractorSignature(existing), sig))
	}

	extractors[id] = ex
	return nil
}

// LookupExtractor returns the extractor registered for id, by exact match.
func LookupExtractor(id TypeID) (Extractor, bool) {
	extractorMu.RLock()
	defer extractorMu.RUnlock()
	ex, ok := extractors[id]
	return ex, ok
}
