package arbor

import "reflect"

// Override interfaces let types bypass the generic converter pipeline.
// When a type implements one of these, the engine calls the interface
// method instead of running candidate selection for that value.

// Serializable bypasses converter selection for serialization.
type Serializable interface {
	// SerializeNode produces the node for the receiver. Nested values go
	// back through s.Serialize.
	SerializeNode(s *State) (Node, error)
}

// Deserializable bypasses converter selection for deserialization.
// Implement it on *T; the engine constructs a fresh T and populates it.
type Deserializable interface {
	// DeserializeNode populates the receiver from n. Nested values go back
	// through s.Deserialize.
	DeserializeNode(s *State, n Node) error
}

// PolymorphicFlagger is the instance-level polymorphism override. It takes
// precedence over the type-level declaration and its ancestors.
type PolymorphicFlagger interface {
	PolymorphicInstance() bool
}

var deserializableType = reflect.TypeFor[Deserializable]()

// deserializeOverride constructs and populates id via its Deserializable
// implementation when one exists. handled is false when the type carries no
// override.
func deserializeOverride(s *State, n Node, id TypeID) (v any, handled bool, err error) {
	rt, ok := goTypeFor(id)
	if !ok || !reflect.PointerTo(rt).Implements(deserializableType) {
		return nil, false, nil
	}
	ptr := reflect.New(rt)
	if err := ptr.Interface().(Deserializable).DeserializeNode(s, n); err != nil {
		return nil, true, s.wrapDeserialize(err, id)
	}
	return ptr.Elem().Interface(), true, nil
}
