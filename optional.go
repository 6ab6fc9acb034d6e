package arbor

// Optional wraps a value that may be absent. Absence serializes to null and
// null deserializes back to absence.
type Optional[T any] struct {
	value   T
	present bool
}

// Some returns a present Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, present: true}
}

// None returns an absent Optional. The zero Optional is absent.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the payload and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.present
}

// Present reports whether a payload is held.
func (o Optional[T]) Present() bool { return o.present }

type optionalExtractor[T any] struct {
	elem TypeID
}

// OptionalExtractorFor returns an OptionalExtractor for Optional[T].
func OptionalExtractorFor[T any]() OptionalExtractor {
	return optionalExtractor[T]{elem: TypeOf[T]()}
}

func (optionalExtractor[T]) Capability() Capability { return OptionalKind }
func (e optionalExtractor[T]) Elem() TypeID         { return e.elem }

func (optionalExtractor[T]) Get(v any) (any, bool) {
	o, ok := v.(Optional[T])
	if !ok {
		return nil, false
	}
	payload, present := o.Get()
	if !present {
		return nil, false
	}
	return payload, true
}

func (optionalExtractor[T]) Some(elem any) (any, error) {
	t, err := assertAs[T](elem)
	if err != nil {
		return nil, err
	}
	return Some(t), nil
}

func (optionalExtractor[T]) None() any {
	return None[T]()
}

// RegisterOptional registers the Optional[T] extractor under
// TypeOf[Optional[T]]().
func RegisterOptional[T any]() error {
	return RegisterExtractor(TypeOf[Optional[T]](), OptionalExtractorFor[T]())
}

// pointerExtractor decomposes *T into a pointee plus a null marker.
type pointerExtractor[T any] struct {
	elem TypeID
}

// PointerExtractorFor returns a PointerExtractor for *T.
func PointerExtractorFor[T any]() PointerExtractor {
	return pointerExtractor[T]{elem: TypeOf[T]()}
}

func (pointerExtractor[T]) Capability() Capability { return PointerKind }
func (e pointerExtractor[T]) Elem() TypeID         { return e.elem }

func (pointerExtractor[T]) Deref(v any) (any, bool) {
	p, ok := v.(*T)
	if !ok || p == nil {
		return nil, false
	}
	return *p, true
}

// Wrap allocates a fresh instance; the result never aliases caller memory.
func (pointerExtractor[T]) Wrap(payload any) (any, error) {
	t, err := assertAs[T](payload)
	if err != nil {
		return nil, err
	}
	p := new(T)
	*p = t
	return p, nil
}

func (pointerExtractor[T]) Nil() any {
	return (*T)(nil)
}

// RegisterPointer registers the *T extractor under TypeOf[*T]().
func RegisterPointer[T any]() error {
	return RegisterExtractor(TypeOf[*T](), PointerExtractorFor[T]())
}
