package arbor

import (
	"errors"
	"reflect"
	"strconv"
)

// Converter maps between Nodes and concrete values for the types and shapes
// it declares support for. Converters are stateless apart from the Options
// they read from the engine at call time.
//
// Applicability is declared through CanSerialize/CanDeserialize; a converter
// that accepted a pair but then finds it cannot handle the concrete value
// may return ErrNotApplicable, which silently advances candidate selection.
// Any other error aborts the entire top-level call.
type Converter interface {
	// Name identifies the converter for registration conflict checks.
	Name() string

	// Priority breaks ties between converters with identical applicability.
	// Higher wins; equal priorities keep registration order.
	Priority() int

	// CanSerialize reports whether the converter accepts (type, value).
	CanSerialize(id TypeID, v any) bool

	// CanDeserialize reports whether the converter accepts (type, node kind).
	CanDeserialize(id TypeID, kind Kind) bool

	Serialize(s *State, id TypeID, v any) (Node, error)
	Deserialize(s *State, id TypeID, n Node) (any, error)
}

// State is the per-call recursion handle passed through converters. It
// carries the engine, and the path of the value being processed so nested
// failures can name where they occurred.
type State struct {
	eng  *Engine
	path string
}

// Engine returns the engine running this call.
func (s *State) Engine() *Engine { return s.eng }

// Options returns the engine configuration.
func (s *State) Options() Options { return s.eng.opts }

// Path returns the location within the top-level value, JSON-pointer style.
func (s *State) Path() string { return s.path }

// Field descends into a named property or map key.
func (s *State) Field(name string) *State {
	return &State{eng: s.eng, path: s.path + "/" + name}
}

// Index descends into an array element.
func (s *State) Index(i int) *State {
	return &State{eng: s.eng, path: s.path + "/" + strconv.Itoa(i)}
}

// Serialize runs candidate selection for (v, id) at this position. The
// first accepting converter wins; ErrNotApplicable advances selection; any
// other failure propagates immediately.
func (s *State) Serialize(v any, id TypeID) (Node, error) {
	if sv, ok := v.(Serializable); ok {
		return sv.SerializeNode(s)
	}

	for _, c := range s.eng.candidates(id) {
		if !c.CanSerialize(id, v) {
			continue
		}
		n, err := c.Serialize(s, id, v)
		if err != nil {
			if errors.Is(err, ErrNotApplicable) {
				continue
			}
			return Node{}, err
		}
		return n, nil
	}
	return Node{}, s.serializeError(noConverterSentinel(id), id, nil)
}

// Deserialize runs candidate selection for (n, id) at this position. Null
// nodes are resolved centrally: optional and pointer targets handle null
// themselves, any other target fails under the strict policy or yields the
// default-constructed value under the lenient one.
func (s *State) Deserialize(n Node, id TypeID) (any, error) {
	if n.IsNull() && !nullNativeTarget(id) {
		if !s.Options().LenientNull {
			return nil, s.deserializeError(ErrNullNotAllowed, id, nil)
		}
		zero, ok := zeroValueFor(id)
		if !ok {
			return nil, s.deserializeError(ErrNullNotAllowed, id, nil)
		}
		return zero, nil
	}

	if v, handled, err := deserializeOverride(s, n, id); handled {
		return v, err
	}

	for _, c := range s.eng.candidates(id) {
		if !c.CanDeserialize(id, n.Kind()) {
			continue
		}
		v, err := c.Deserialize(s, id, n)
		if err != nil {
			if errors.Is(err, ErrNotApplicable) {
				continue
			}
			return nil, err
		}
		return v, nil
	}
	return nil, s.deserializeError(noConverterSentinel(id), id, nil)
}

// noConverterSentinel distinguishes the container-without-extractor failure
// from plain converter exhaustion.
func noConverterSentinel(id TypeID) error {
	if _, ok := LookupExtractor(id); ok {
		return ErrNoConverter
	}
	if rt, ok := goTypeFor(id); ok {
		switch rt.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map:
			return ErrUnregisteredExtractor
		}
	}
	return ErrNoConverter
}

// nullNativeTarget reports whether id's extractor represents absence itself.
func nullNativeTarget(id TypeID) bool {
	ex, ok := LookupExtractor(id)
	if !ok {
		return false
	}
	cap := ex.Capability()
	return cap == OptionalKind || cap == PointerKind
}

func (s *State) serializeError(sentinel error, id TypeID, cause error) error {
	return &SerializationError{Err: sentinel, Type: id, Path: s.path, Cause: cause}
}

func (s *State) deserializeError(sentinel error, id TypeID, cause error) error {
	return &DeserializationError{Err: sentinel, Type: id, Path: s.path, Cause: cause}
}

// isTerminal reports whether err is already a path-annotated call failure;
// such errors propagate unchanged to the top.
func isTerminal(err error) bool {
	var se *SerializationError
	var de *DeserializationError
	return errors.As(err, &se) || errors.As(err, &de)
}

// wrapSerialize annotates a nested failure once with the current path.
func (s *State) wrapSerialize(err error, id TypeID) error {
	if isTerminal(err) {
		return err
	}
	sentinel := ErrPropertyAccess
	for _, known := range []error{ErrTypeMismatch, ErrUnregisteredExtractor, ErrNoConverter, ErrPropertyAccess} {
		if errors.Is(err, known) {
			sentinel = known
			break
		}
	}
	return &SerializationError{Err: sentinel, Type: id, Path: s.path, Cause: err}
}

// wrapDeserialize annotates a nested failure once with the current path.
func (s *State) wrapDeserialize(err error, id TypeID) error {
	if isTerminal(err) {
		return err
	}
	sentinel := ErrTypeMismatch
	for _, known := range []error{ErrTypeMismatch, ErrValidation, ErrNullNotAllowed,
		ErrMissingDiscriminator, ErrUnknownTypeName, ErrUnregisteredExtractor, ErrNoConverter} {
		if errors.Is(err, known) {
			sentinel = known
			break
		}
	}
	return &DeserializationError{Err: sentinel, Type: id, Path: s.path, Cause: err}
}
