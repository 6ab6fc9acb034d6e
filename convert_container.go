package arbor

import (
	"fmt"
	"reflect"
	"strconv"
)

// baseConverter supplies the default priority and name for builtins.
type baseConverter struct {
	name string
}

func (b baseConverter) Name() string  { return b.name }
func (b baseConverter) Priority() int { return 0 }

// extractorOfKind returns the extractor for id when it has the wanted
// capability.
func extractorOfKind(id TypeID, cap Capability) (Extractor, bool) {
	ex, ok := LookupExtractor(id)
	if !ok || ex.Capability() != cap {
		return nil, false
	}
	return ex, true
}

// --- sequential ---

type sequenceConverter struct{ baseConverter }

func newSequenceConverter() Converter {
	return sequenceConverter{baseConverter{name: "arbor.sequence"}}
}

func (sequenceConverter) CanSerialize(id TypeID, _ any) bool {
	_, ok := extractorOfKind(id, SequentialKind)
	return ok
}

func (sequenceConverter) CanDeserialize(id TypeID, kind Kind) bool {
	_, ok := extractorOfKind(id, SequentialKind)
	return ok && kind == KindArray
}

func (sequenceConverter) Serialize(s *State, id TypeID, v any) (Node, error) {
	ex := mustSequence(id)
	var items []Node
	i := 0
	err := ex.Visit(v, func(elem any) error {
		n, err := s.Index(i).Serialize(elem, ex.Elem())
		if err != nil {
			return err
		}
		items = append(items, n)
		i++
		return nil
	})
	if err != nil {
		return Node{}, s.wrapSerialize(err, id)
	}
	return Array(items...), nil
}

func (sequenceConverter) Deserialize(s *State, id TypeID, n Node) (any, error) {
	ex := mustSequence(id)
	items := n.Items()
	elems := make([]any, 0, len(items))
	for i, item := range items {
		elem, err := s.Index(i).Deserialize(item, ex.Elem())
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
	}
	out, err := ex.Build(elems)
	if err != nil {
		return nil, s.wrapDeserialize(err, id)
	}
	return out, nil
}

func mustSequence(id TypeID) SequenceExtractor {
	ex, _ := LookupExtractor(id)
	return ex.(SequenceExtractor)
}

// --- associative ---

type associativeConverter struct{ baseConverter }

func newAssociativeConverter() Converter {
	return associativeConverter{baseConverter{name: "arbor.associative"}}
}

func (associativeConverter) CanSerialize(id TypeID, _ any) bool {
	_, ok := extractorOfKind(id, AssociativeKind)
	return ok
}

func (associativeConverter) CanDeserialize(id TypeID, kind Kind) bool {
	ex, ok := extractorOfKind(id, AssociativeKind)
	if !ok {
		return false
	}
	if kind == KindMap {
		return true
	}
	// The list encoding is an array of [key, value] pairs; only
	// multi-valued containers are ever encoded that way.
	return kind == KindArray && ex.(AssociativeExtractor).MultiValued()
}

func (c associativeConverter) Serialize(s *State, id TypeID, v any) (Node, error) {
	ex := mustAssociative(id)
	if !ex.MultiValued() {
		return c.serializeSingle(s, id, ex, v)
	}

	switch s.Options().MultiMap {
	case MultiMapAsList:
		return c.serializeList(s, id, ex, v)
	case MultiMapAsDenseMap:
		return c.serializeGrouped(s, id, ex, v, true)
	default:
		return c.serializeGrouped(s, id, ex, v, false)
	}
}

func (associativeConverter) serializeSingle(s *State, id TypeID, ex AssociativeExtractor, v any) (Node, error) {
	var entries []Entry
	err := ex.Visit(v, func(key, value any) error {
		ks, err := keyToString(s, key, ex.Key())
		if err != nil {
			return err
		}
		n, err := s.Field(ks).Serialize(value, ex.Value())
		if err != nil {
			return err
		}
		entries = append(entries, E(ks, n))
		return nil
	})
	if err != nil {
		return Node{}, s.wrapSerialize(err, id)
	}
	return Map(entries...), nil
}

// serializeList emits one [key, value] pair per stored entry, preserving
// exact insertion order including interleaved keys.
func (associativeConverter) serializeList(s *State, id TypeID, ex AssociativeExtractor, v any) (Node, error) {
	var items []Node
	i := 0
	err := ex.Visit(v, func(key, value any) error {
		kn, err := s.Index(i).Serialize(key, ex.Key())
		if err != nil {
			return err
		}
		vn, err := s.Index(i).Serialize(value, ex.Value())
		if err != nil {
			return err
		}
		items = append(items, Array(kn, vn))
		i++
		return nil
	})
	if err != nil {
		return Node{}, s.wrapSerialize(err, id)
	}
	return Array(items...), nil
}

// serializeGrouped emits a map keyed by stringified key; each value is an
// array of that key's values in insertion order, or the bare value for
// single-entry keys when dense is set. Array-valued entries never collapse:
// a bare array would be indistinguishable from a group of values on decode.
func (associativeConverter) serializeGrouped(s *State, id TypeID, ex AssociativeExtractor, v any, dense bool) (Node, error) {
	var order []string
	groups := make(map[string][]Node)
	err := ex.Visit(v, func(key, value any) error {
		ks, err := keyToString(s, key, ex.Key())
		if err != nil {
			return err
		}
		n, err := s.Field(ks).Serialize(value, ex.Value())
		if err != nil {
			return err
		}
		if _, seen := groups[ks]; !seen {
			order = append(order, ks)
		}
		groups[ks] = append(groups[ks], n)
		return nil
	})
	if err != nil {
		return Node{}, s.wrapSerialize(err, id)
	}

	entries := make([]Entry, 0, len(order))
	for _, ks := range order {
		vals := groups[ks]
		if dense && len(vals) == 1 && vals[0].Kind() != KindArray {
			entries = append(entries, E(ks, vals[0]))
			continue
		}
		entries = append(entries, E(ks, Array(vals...)))
	}
	return Map(entries...), nil
}

// Deserialize detects the encoding by node shape and reconstructs the
// container preserving the per-key insertion order found in the node.
func (c associativeConverter) Deserialize(s *State, id TypeID, n Node) (any, error) {
	ex := mustAssociative(id)

	var entries []AssocEntry
	switch n.Kind() {
	case KindArray:
		for i, item := range n.Items() {
			if item.Kind() != KindArray || item.Len() != 2 {
				return nil, s.Index(i).deserializeError(ErrTypeMismatch, id,
					fmt.Errorf("list-encoded entry must be a [key, value] pair"))
			}
			pair := item.Items()
			key, err := s.Index(i).Deserialize(pair[0], ex.Key())
			if err != nil {
				return nil, err
			}
			value, err := s.Index(i).Deserialize(pair[1], ex.Value())
			if err != nil {
				return nil, err
			}
			entries = append(entries, AssocEntry{Key: key, Value: value})
		}

	case KindMap:
		for _, entry := range n.Entries() {
			key, err := keyFromString(s, entry.Key, ex.Key())
			if err != nil {
				return nil, s.Field(entry.Key).wrapDeserialize(err, id)
			}
			child := s.Field(entry.Key)
			if ex.MultiValued() && entry.Value.Kind() == KindArray {
				for _, item := range entry.Value.Items() {
					value, err := child.Deserialize(item, ex.Value())
					if err != nil {
						return nil, err
					}
					entries = append(entries, AssocEntry{Key: key, Value: value})
				}
				continue
			}
			value, err := child.Deserialize(entry.Value, ex.Value())
			if err != nil {
				return nil, err
			}
			entries = append(entries, AssocEntry{Key: key, Value: value})
		}
	}

	out, err := ex.Build(entries)
	if err != nil {
		return nil, s.wrapDeserialize(err, id)
	}
	return out, nil
}

func mustAssociative(id TypeID) AssociativeExtractor {
	ex, _ := LookupExtractor(id)
	return ex.(AssociativeExtractor)
}

// keyToString renders a map key as the string a map node requires. Keys
// must serialize to a scalar node.
func keyToString(s *State, key any, id TypeID) (string, error) {
	if ks, ok := key.(string); ok {
		return ks, nil
	}
	n, err := s.Serialize(key, id)
	if err != nil {
		return "", err
	}
	switch n.Kind() {
	case KindString:
		return n.StringValue(), nil
	case KindNumber:
		return strconv.FormatFloat(n.NumberValue(), 'g', -1, 64), nil
	case KindBool:
		return strconv.FormatBool(n.BoolValue()), nil
	default:
		return "", fmt.Errorf("%w: map key of type %q does not serialize to a scalar", ErrTypeMismatch, id)
	}
}

// keyFromString parses a map node key back into the key type.
func keyFromString(s *State, ks string, id TypeID) (any, error) {
	rt, ok := goTypeFor(id)
	if !ok {
		return s.Deserialize(String(ks), id)
	}
	switch rt.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(ks)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a bool key", ErrTypeMismatch, ks)
		}
		return s.Deserialize(Bool(b), id)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(ks, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a numeric key", ErrTypeMismatch, ks)
		}
		return s.Deserialize(Number(f), id)
	default:
		return s.Deserialize(String(ks), id)
	}
}

// --- pair/tuple ---

type tupleConverter struct{ baseConverter }

func newTupleConverter() Converter {
	return tupleConverter{baseConverter{name: "arbor.tuple"}}
}

func tupleExtractorFor(id TypeID) (TupleExtractor, bool) {
	ex, ok := LookupExtractor(id)
	if !ok {
		return nil, false
	}
	if ex.Capability() != PairKind && ex.Capability() != TupleKind {
		return nil, false
	}
	return ex.(TupleExtractor), true
}

func (tupleConverter) CanSerialize(id TypeID, _ any) bool {
	_, ok := tupleExtractorFor(id)
	return ok
}

func (tupleConverter) CanDeserialize(id TypeID, kind Kind) bool {
	_, ok := tupleExtractorFor(id)
	return ok && kind == KindArray
}

func (tupleConverter) Serialize(s *State, id TypeID, v any) (Node, error) {
	ex, _ := tupleExtractorFor(id)
	slots, err := ex.Unpack(v)
	if err != nil {
		return Node{}, s.wrapSerialize(err, id)
	}
	types := ex.Slots()
	items := make([]Node, 0, len(slots))
	for i, slot := range slots {
		n, err := s.Index(i).Serialize(slot, types[i])
		if err != nil {
			return Node{}, err
		}
		items = append(items, n)
	}
	return Array(items...), nil
}

func (tupleConverter) Deserialize(s *State, id TypeID, n Node) (any, error) {
	ex, _ := tupleExtractorFor(id)
	types := ex.Slots()
	if n.Len() != len(types) {
		return nil, s.deserializeError(ErrTypeMismatch, id,
			fmt.Errorf("need %d slots, node has %d", len(types), n.Len()))
	}
	items := n.Items()
	slots := make([]any, 0, len(types))
	for i, item := range items {
		slot, err := s.Index(i).Deserialize(item, types[i])
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	out, err := ex.Pack(slots)
	if err != nil {
		return nil, s.wrapDeserialize(err, id)
	}
	return out, nil
}

// --- optional ---

type optionalConverter struct{ baseConverter }

func newOptionalConverter() Converter {
	return optionalConverter{baseConverter{name: "arbor.optional"}}
}

func (optionalConverter) CanSerialize(id TypeID, _ any) bool {
	_, ok := extractorOfKind(id, OptionalKind)
	return ok
}

func (optionalConverter) CanDeserialize(id TypeID, _ Kind) bool {
	_, ok := extractorOfKind(id, OptionalKind)
	return ok
}

func (optionalConverter) Serialize(s *State, id TypeID, v any) (Node, error) {
	ex, _ := LookupExtractor(id)
	oe := ex.(OptionalExtractor)
	payload, present := oe.Get(v)
	if !present {
		return Null(), nil
	}
	return s.Serialize(payload, oe.Elem())
}

func (optionalConverter) Deserialize(s *State, id TypeID, n Node) (any, error) {
	ex, _ := LookupExtractor(id)
	oe := ex.(OptionalExtractor)
	if n.IsNull() {
		if s.Options().Validation.Has(ValidateNoNullOptional) {
			return nil, s.deserializeError(ErrValidation, id,
				fmt.Errorf("null forbidden by validation flags"))
		}
		return oe.None(), nil
	}
	payload, err := s.Deserialize(n, oe.Elem())
	if err != nil {
		return nil, err
	}
	out, err := oe.Some(payload)
	if err != nil {
		return nil, s.wrapDeserialize(err, id)
	}
	return out, nil
}

// --- pointer ---

type pointerConverter struct{ baseConverter }

func newPointerConverter() Converter {
	return pointerConverter{baseConverter{name: "arbor.pointer"}}
}

func (pointerConverter) CanSerialize(id TypeID, _ any) bool {
	_, ok := extractorOfKind(id, PointerKind)
	return ok
}

func (pointerConverter) CanDeserialize(id TypeID, _ Kind) bool {
	_, ok := extractorOfKind(id, PointerKind)
	return ok
}

func (pointerConverter) Serialize(s *State, id TypeID, v any) (Node, error) {
	ex, _ := LookupExtractor(id)
	pe := ex.(PointerExtractor)
	payload, ok := pe.Deref(v)
	if !ok {
		return Null(), nil
	}
	return s.Serialize(payload, pe.Elem())
}

func (pointerConverter) Deserialize(s *State, id TypeID, n Node) (any, error) {
	ex, _ := LookupExtractor(id)
	pe := ex.(PointerExtractor)
	if n.IsNull() {
		if s.Options().Validation.Has(ValidateNoNullOptional) {
			return nil, s.deserializeError(ErrValidation, id,
				fmt.Errorf("null forbidden by validation flags"))
		}
		return pe.Nil(), nil
	}
	payload, err := s.Deserialize(n, pe.Elem())
	if err != nil {
		return nil, err
	}
	out, err := pe.Wrap(payload)
	if err != nil {
		return nil, s.wrapDeserialize(err, id)
	}
	return out, nil
}

// --- variant ---

type variantConverter struct{ baseConverter }

func newVariantConverter() Converter {
	return variantConverter{baseConverter{name: "arbor.variant"}}
}

func (variantConverter) CanSerialize(id TypeID, _ any) bool {
	_, ok := extractorOfKind(id, VariantKind)
	return ok
}

func (variantConverter) CanDeserialize(id TypeID, _ Kind) bool {
	_, ok := extractorOfKind(id, VariantKind)
	return ok
}

func (variantConverter) Serialize(s *State, id TypeID, v any) (Node, error) {
	ex, _ := LookupExtractor(id)
	ve := ex.(VariantExtractor)
	alt, payload, err := ve.Active(v)
	if err != nil {
		return Node{}, s.wrapSerialize(err, id)
	}
	return s.Serialize(payload, alt)
}

// Deserialize tries alternatives in declared order and commits to the first
// that succeeds. The tie-break is part of the contract: a node matching two
// alternatives' encodings decodes as the earlier one.
func (variantConverter) Deserialize(s *State, id TypeID, n Node) (any, error) {
	ex, _ := LookupExtractor(id)
	ve := ex.(VariantExtractor)
	for _, alt := range ve.Alternatives() {
		payload, err := s.Deserialize(n, alt)
		if err != nil {
			continue
		}
		out, err := ve.Build(alt, payload)
		if err != nil {
			continue
		}
		return out, nil
	}
	return nil, s.deserializeError(ErrTypeMismatch, id,
		fmt.Errorf("no variant alternative accepts a %s node", n.Kind()))
}
