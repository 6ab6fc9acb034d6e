package arbor

import (
	"fmt"
	"reflect"
	"time"
)

// primitiveClass partitions the leaf types the builtin primitive converter
// understands.
type primitiveClass int

const (
	classNone primitiveClass = iota
	classBool
	classNumber
	classString
	classTime
	classVersion
	classEnum
)

var (
	timeType    = reflect.TypeFor[time.Time]()
	versionType = reflect.TypeFor[Version]()
)

func classify(id TypeID) primitiveClass {
	if _, ok := enumSpecFor(id); ok {
		return classEnum
	}
	rt, ok := goTypeFor(id)
	if !ok {
		return classNone
	}
	switch {
	case rt == timeType:
		return classTime
	case rt == versionType:
		return classVersion
	}
	switch rt.Kind() {
	case reflect.Bool:
		return classBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return classNumber
	case reflect.String:
		return classString
	default:
		return classNone
	}
}

type primitiveConverter struct{ baseConverter }

func newPrimitiveConverter() Converter {
	return primitiveConverter{baseConverter{name: "arbor.primitive"}}
}

func (primitiveConverter) CanSerialize(id TypeID, _ any) bool {
	return classify(id) != classNone
}

func (primitiveConverter) CanDeserialize(id TypeID, kind Kind) bool {
	switch classify(id) {
	case classBool:
		return kind == KindBool
	case classNumber:
		return kind == KindNumber
	case classString:
		return kind == KindString
	case classTime, classEnum:
		return kind == KindString || kind == KindNumber
	case classVersion:
		return kind == KindString || kind == KindArray
	default:
		return false
	}
}

func (primitiveConverter) Serialize(s *State, id TypeID, v any) (Node, error) {
	opts := s.Options()

	switch classify(id) {
	case classEnum:
		spec, _ := enumSpecFor(id)
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Invalid || (!rv.CanInt() && !rv.CanUint()) {
			return Node{}, s.serializeError(ErrTypeMismatch, id,
				fmt.Errorf("value %T is not an enum", v))
		}
		ordinal := enumOrdinal(rv)
		if opts.EnumAsString {
			if name, ok := spec.names[ordinal]; ok {
				return String(name), nil
			}
		}
		return Number(float64(ordinal)), nil

	case classTime:
		t, err := assertAs[time.Time](v)
		if err != nil {
			return Node{}, s.wrapSerialize(err, id)
		}
		if opts.DateAsTimestamp {
			return Number(float64(t.Unix())), nil
		}
		if opts.Formatter != nil {
			return String(opts.Formatter.FormatDate(t)), nil
		}
		return String(t.Format(time.RFC3339Nano)), nil

	case classVersion:
		ver, err := assertAs[Version](v)
		if err != nil {
			return Node{}, s.wrapSerialize(err, id)
		}
		if opts.VersionAsString {
			return String(ver.String()), nil
		}
		return Array(
			Number(float64(ver.Major)),
			Number(float64(ver.Minor)),
			Number(float64(ver.Patch)),
		), nil

	case classBool:
		rv, err := valueAs(v, id)
		if err != nil {
			return Node{}, s.wrapSerialize(err, id)
		}
		return Bool(rv.Bool()), nil

	case classString:
		rv, err := valueAs(v, id)
		if err != nil {
			return Node{}, s.wrapSerialize(err, id)
		}
		return String(rv.String()), nil

	case classNumber:
		rv, err := valueAs(v, id)
		if err != nil {
			return Node{}, s.wrapSerialize(err, id)
		}
		return Number(rv.Convert(reflect.TypeFor[float64]()).Float()), nil

	default:
		return Node{}, ErrNotApplicable
	}
}

func (primitiveConverter) Deserialize(s *State, id TypeID, n Node) (any, error) {
	opts := s.Options()

	switch classify(id) {
	case classEnum:
		spec, _ := enumSpecFor(id)
		var ordinal int64
		if n.Kind() == KindString {
			val, ok := spec.values[n.StringValue()]
			if !ok {
				return nil, s.deserializeError(ErrParse, id,
					fmt.Errorf("unknown enum name %q", n.StringValue()))
			}
			ordinal = val
		} else {
			ordinal = int64(n.NumberValue())
		}
		rt, _ := goTypeFor(id)
		out := reflect.New(rt).Elem()
		if out.CanUint() {
			out.SetUint(uint64(ordinal))
		} else {
			out.SetInt(ordinal)
		}
		return out.Interface(), nil

	case classTime:
		if n.Kind() == KindNumber {
			return time.Unix(int64(n.NumberValue()), 0).UTC(), nil
		}
		if opts.Formatter != nil {
			t, err := opts.Formatter.ParseDate(n.StringValue())
			if err != nil {
				return nil, s.deserializeError(ErrParse, id, err)
			}
			return t, nil
		}
		t, err := time.Parse(time.RFC3339Nano, n.StringValue())
		if err != nil {
			return nil, s.deserializeError(ErrParse, id, err)
		}
		return t, nil

	case classVersion:
		if n.Kind() == KindString {
			ver, err := ParseVersion(n.StringValue())
			if err != nil {
				return nil, s.deserializeError(ErrParse, id, err)
			}
			return ver, nil
		}
		items := n.Items()
		if len(items) == 0 || len(items) > 3 {
			return nil, s.deserializeError(ErrTypeMismatch, id,
				fmt.Errorf("version array needs 1 to 3 components, got %d", len(items)))
		}
		var nums [3]int
		for i, item := range items {
			if item.Kind() != KindNumber {
				return nil, s.Index(i).deserializeError(ErrTypeMismatch, id,
					fmt.Errorf("version component must be a number, got %s", item.Kind()))
			}
			nums[i] = int(item.NumberValue())
		}
		return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil

	case classBool:
		return convertScalar(s, id, reflect.ValueOf(n.BoolValue()))

	case classString:
		return convertScalar(s, id, reflect.ValueOf(n.StringValue()))

	case classNumber:
		return convertScalar(s, id, reflect.ValueOf(n.NumberValue()))

	default:
		return nil, ErrNotApplicable
	}
}

// valueAs resolves v reflectively, requiring its type to convert to id's.
func valueAs(v any, id TypeID) (reflect.Value, error) {
	rt, _ := goTypeFor(id)
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Invalid {
		return reflect.Value{}, fmt.Errorf("%w: nil value for %q", ErrTypeMismatch, id)
	}
	if rv.Type() == rt {
		return rv, nil
	}
	if !rv.Type().ConvertibleTo(rt) {
		return reflect.Value{}, fmt.Errorf("%w: %s is not a %q", ErrTypeMismatch, rv.Type(), id)
	}
	return rv.Convert(rt), nil
}

// convertScalar converts a raw scalar into id's possibly-named type.
func convertScalar(s *State, id TypeID, raw reflect.Value) (any, error) {
	rt, _ := goTypeFor(id)
	if !raw.Type().ConvertibleTo(rt) {
		return nil, s.deserializeError(ErrTypeMismatch, id,
			fmt.Errorf("%s does not convert to %q", raw.Type(), id))
	}
	return raw.Convert(rt).Interface(), nil
}
