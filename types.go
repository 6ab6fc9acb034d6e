package arbor

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/zoobzio/sentinel"
)

func init() {
	// Register the property tag with sentinel
	sentinel.Tag("arbor")
}

// Property describes one serializable property of a registered object type.
// Get reads the property from an instance (value or pointer); Set writes it
// through a pointer to an instance.
type Property struct {
	Name string
	Type TypeID
	Get  func(obj any) (any, error)
	Set  func(obj any, value any) error
}

// typeSpec is the registry record for an object or enum type.
type typeSpec struct {
	id    TypeID
	rt    reflect.Type
	name  string // canonical registered name
	base  TypeID // "" for hierarchy roots
	poly  *bool  // type-level polymorphic declaration; nil when undeclared
	props []Property
}

var (
	typesMu    sync.RWMutex
	typeSpecs  = make(map[TypeID]*typeSpec)
	typeByName = make(map[string]TypeID)
	enumSpecs  = make(map[TypeID]*enumSpec)
)

// TypeOption customizes type registration.
type TypeOption func(*typeSpec)

// WithName overrides the canonical type name used by the discriminator.
func WithName(name string) TypeOption {
	return func(s *typeSpec) { s.name = name }
}

// WithBase links the type under base B in the hierarchy. B must be a
// registered type embedded in the registering type.
func WithBase[B any]() TypeOption {
	return func(s *typeSpec) { s.base = TypeOf[B]() }
}

// WithPolymorphic declares the type polymorphic (or explicitly not, which
// overrides an inherited declaration).
func WithPolymorphic(on bool) TypeOption {
	return func(s *typeSpec) { s.poly = &on }
}

// RegisterType scans T's struct metadata and registers its property set,
// canonical name, and hierarchy position in the process-wide type registry.
// Re-registering the identical type is a no-op; a canonical-name clash with
// a different type fails with a ConfigError wrapping ErrConflict.
//
// Field names can be renamed with the `arbor:"name"` tag; `arbor:"-"` skips
// the field. An embedded field of the declared base type is skipped: its
// properties are inherited through the hierarchy instead.
func RegisterType[T any](opts ...TypeOption) error {
	rt := reflect.TypeFor[T]()
	if rt.Kind() != reflect.Struct {
		return newConfigError(ErrConflict, typeIDFor(rt), "only struct types can be registered")
	}
	id := TypeOf[T]()
	meta := sentinel.Scan[T]()

	spec := &typeSpec{id: id, rt: rt, name: meta.TypeName}
	for _, o := range opts {
		o(spec)
	}

	typesMu.Lock()
	defer typesMu.Unlock()

	if existing, ok := typeSpecs[id]; ok {
		if existing.name == spec.name && existing.base == spec.base {
			return nil
		}
		return newConfigError(ErrConflict, id, "type already registered with a different shape")
	}
	if other, ok := typeByName[spec.name]; ok && other != id {
		return newConfigError(ErrConflict, id,
			fmt.Sprintf("canonical name %q already names %q", spec.name, other))
	}
	if spec.base != "" {
		baseSpec, ok := typeSpecs[spec.base]
		if !ok {
			return newConfigError(ErrConflict, id,
				fmt.Sprintf("base type %q must be registered first", spec.base))
		}
		if _, embeds := rt.FieldByName(baseSpec.rt.Name()); !embeds {
			return newConfigError(ErrConflict, id,
				fmt.Sprintf("type does not embed base %q", spec.base))
		}
	}

	for _, field := range meta.Fields {
		sf, ok := rt.FieldByName(field.Name)
		if !ok || !sf.IsExported() {
			continue
		}
		if sf.Anonymous && spec.base != "" && typeIDFor(sf.Type) == spec.base {
			continue
		}

		name := field.Name
		if tag, ok := field.Tags["arbor"]; ok {
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}

		spec.props = append(spec.props, newProperty(name, sf.Name, sf.Type))
	}

	typeSpecs[id] = spec
	typeByName[spec.name] = id
	return nil
}

// newProperty builds the get/set closures for a struct field. Access goes
// through FieldByName so embedded-base promotion works in both directions.
func newProperty(name, fieldName string, ft reflect.Type) Property {
	ftID := typeIDFor(ft)
	return Property{
		Name: name,
		Type: ftID,
		Get: func(obj any) (any, error) {
			rv := reflect.ValueOf(obj)
			for rv.Kind() == reflect.Pointer {
				if rv.IsNil() {
					return nil, fmt.Errorf("%w: nil instance reading %s", ErrPropertyAccess, name)
				}
				rv = rv.Elem()
			}
			if rv.Kind() != reflect.Struct {
				return nil, fmt.Errorf("%w: %s is not an object", ErrPropertyAccess, rv.Kind())
			}
			f := rv.FieldByName(fieldName)
			if !f.IsValid() {
				return nil, fmt.Errorf("%w: no field %s on %s", ErrPropertyAccess, fieldName, rv.Type())
			}
			return f.Interface(), nil
		},
		Set: func(obj any, value any) error {
			rv := reflect.ValueOf(obj)
			if rv.Kind() != reflect.Pointer || rv.IsNil() {
				return fmt.Errorf("%w: setting %s requires a non-nil pointer", ErrPropertyAccess, name)
			}
			f := rv.Elem().FieldByName(fieldName)
			if !f.IsValid() || !f.CanSet() {
				return fmt.Errorf("%w: field %s is not settable on %s", ErrPropertyAccess, fieldName, rv.Type())
			}
			if value == nil {
				f.Set(reflect.Zero(f.Type()))
				return nil
			}
			vv := reflect.ValueOf(value)
			switch {
			case vv.Type().AssignableTo(f.Type()):
				f.Set(vv)
			case vv.Type().ConvertibleTo(f.Type()):
				f.Set(vv.Convert(f.Type()))
			default:
				return fmt.Errorf("%w: cannot store %s into field %s (%s)",
					ErrPropertyAccess, vv.Type(), fieldName, f.Type())
			}
			return nil
		},
	}
}

func typeSpecFor(id TypeID) (*typeSpec, bool) {
	typesMu.RLock()
	defer typesMu.RUnlock()
	s, ok := typeSpecs[id]
	return s, ok
}

// enumerate returns the full ordered property set for id: inherited
// properties first (root-most base first), then the type's own.
func enumerate(id TypeID) ([]Property, bool) {
	typesMu.RLock()
	defer typesMu.RUnlock()

	spec, ok := typeSpecs[id]
	if !ok {
		return nil, false
	}
	var chain []*typeSpec
	for s := spec; s != nil; {
		chain = append([]*typeSpec{s}, chain...)
		if s.base == "" {
			break
		}
		s = typeSpecs[s.base]
	}
	var props []Property
	for _, s := range chain {
		props = append(props, s.props...)
	}
	return props, true
}

// isInstanceOf reports whether id is candidate or a descendant of it.
func isInstanceOf(id, candidate TypeID) bool {
	typesMu.RLock()
	defer typesMu.RUnlock()
	for cur := id; cur != ""; {
		if cur == candidate {
			return true
		}
		s, ok := typeSpecs[cur]
		if !ok {
			return false
		}
		cur = s.base
	}
	return false
}

// registeredTypeName returns the canonical name for id.
func registeredTypeName(id TypeID) (string, bool) {
	typesMu.RLock()
	defer typesMu.RUnlock()
	s, ok := typeSpecs[id]
	if !ok {
		return "", false
	}
	return s.name, true
}

// lookupTypeByName resolves a canonical name back to its TypeID.
func lookupTypeByName(name string) (TypeID, bool) {
	typesMu.RLock()
	defer typesMu.RUnlock()
	id, ok := typeByName[name]
	return id, ok
}

// enumValue constrains enum registration to integer-kinded named types.
type enumValue interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

type enumSpec struct {
	names  map[int64]string
	values map[string]int64
}

// RegisterEnum records a value/name table for the enum type T, used when the
// enum-as-string option is set. Decoding always accepts both forms.
func RegisterEnum[T enumValue](names map[T]string) error {
	id := TypeOf[T]()
	spec := &enumSpec{
		names:  make(map[int64]string, len(names)),
		values: make(map[string]int64, len(names)),
	}
	for v, name := range names {
		n := enumOrdinal(reflect.ValueOf(v))
		spec.names[n] = name
		spec.values[name] = n
	}

	typesMu.Lock()
	defer typesMu.Unlock()
	if _, ok := enumSpecs[id]; ok {
		return newConfigError(ErrConflict, id, "enum already registered")
	}
	enumSpecs[id] = spec
	return nil
}

func enumOrdinal(rv reflect.Value) int64 {
	if rv.CanUint() {
		return int64(rv.Uint())
	}
	return rv.Int()
}

func enumSpecFor(id TypeID) (*enumSpec, bool) {
	typesMu.RLock()
	defer typesMu.RUnlock()
	s, ok := enumSpecs[id]
	return s, ok
}

// Reset clears every process-wide registry: extractors, types, enums,
// factories, and the factory resolution cache. This is primarily useful for
// test isolation.
func Reset() {
	extractorMu.Lock()
	extractors = make(map[TypeID]Extractor)
	extractorMu.Unlock()

	typesMu.Lock()
	typeSpecs = make(map[TypeID]*typeSpec)
	typeByName = make(map[string]TypeID)
	enumSpecs = make(map[TypeID]*enumSpec)
	typesMu.Unlock()

	factoryMu.Lock()
	factories = nil
	resolved = make(map[TypeID][]Converter)
	factoryMu.Unlock()
}
