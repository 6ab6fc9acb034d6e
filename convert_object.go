package arbor

import (
	"fmt"
	"reflect"
)

// objectConverter maps registered object types to map nodes using their
// registered property sets, including inherited properties and polymorphic
// substitution.
type objectConverter struct{ baseConverter }

func newObjectConverter() Converter {
	return objectConverter{baseConverter{name: "arbor.object"}}
}

func (objectConverter) CanSerialize(id TypeID, _ any) bool {
	_, ok := typeSpecFor(id)
	return ok
}

func (objectConverter) CanDeserialize(id TypeID, kind Kind) bool {
	_, ok := typeSpecFor(id)
	return ok && kind == KindMap
}

func (objectConverter) Serialize(s *State, id TypeID, v any) (Node, error) {
	static, _ := typeSpecFor(id)
	target, discriminate, err := resolveSerializeTarget(s.Options(), static, v)
	if err != nil {
		return Node{}, s.wrapSerialize(err, id)
	}

	var entries []Entry
	if discriminate || s.Options().IncludeObjectName {
		entries = append(entries, E(DiscriminatorKey, String(target.name)))
	}

	props, _ := enumerate(target.id)
	for _, prop := range props {
		raw, err := prop.Get(v)
		if err != nil {
			return Node{}, s.Field(prop.Name).wrapSerialize(err, id)
		}
		n, err := s.Field(prop.Name).Serialize(raw, prop.Type)
		if err != nil {
			return Node{}, err
		}
		entries = append(entries, E(prop.Name, n))
	}
	return Map(entries...), nil
}

func (objectConverter) Deserialize(s *State, id TypeID, n Node) (any, error) {
	static, _ := typeSpecFor(id)
	target, err := resolveDeserializeTarget(s.Options(), static, n)
	if err != nil {
		return nil, s.wrapDeserialize(err, id)
	}
	if target != static && !isInstanceOf(target.id, static.id) {
		return nil, s.deserializeError(ErrTypeMismatch, id,
			fmt.Errorf("%q is not a descendant of %q", target.id, static.id))
	}

	props, _ := enumerate(target.id)
	byName := make(map[string]Property, len(props))
	for _, prop := range props {
		byName[prop.Name] = prop
	}

	ptr := reflect.New(target.rt)
	obj := ptr.Interface()
	for _, entry := range n.Entries() {
		if entry.Key == DiscriminatorKey {
			continue
		}
		prop, ok := byName[entry.Key]
		if !ok {
			if s.Options().Validation.Has(ValidateNoExtra) {
				return nil, s.Field(entry.Key).deserializeError(ErrValidation, target.id,
					fmt.Errorf("no property %q on %q", entry.Key, target.name))
			}
			continue
		}
		value, err := s.Field(entry.Key).Deserialize(entry.Value, prop.Type)
		if err != nil {
			return nil, err
		}
		if err := prop.Set(obj, value); err != nil {
			return nil, s.Field(entry.Key).wrapDeserialize(err, target.id)
		}
	}

	if s.Options().Validation.Has(ValidateAllProperties) {
		for _, prop := range props {
			if _, present := n.Get(prop.Name); !present {
				return nil, s.Field(prop.Name).deserializeError(ErrValidation, target.id,
					fmt.Errorf("property %q missing from node", prop.Name))
			}
		}
	}

	return ptr.Elem().Interface(), nil
}
