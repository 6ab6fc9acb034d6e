package arbor

import "fmt"

// Variant2 holds exactly one of two alternatives. Alternative order is part
// of the type: deserialization tries A before B and commits to the first
// that succeeds, so a payload matching both encodings decodes as A.
type Variant2[A, B any] struct {
	value any
	index int // 1-based; 0 means unset
}

// FirstOf2 returns a Variant2 holding the first alternative.
func FirstOf2[A, B any](v A) Variant2[A, B] {
	return Variant2[A, B]{value: v, index: 1}
}

// SecondOf2 returns a Variant2 holding the second alternative.
func SecondOf2[A, B any](v B) Variant2[A, B] {
	return Variant2[A, B]{value: v, index: 2}
}

// Index returns the zero-based active alternative, or -1 when unset.
func (v Variant2[A, B]) Index() int { return v.index - 1 }

// Value returns the active payload.
func (v Variant2[A, B]) Value() any { return v.value }

// First returns the payload when the first alternative is active.
func (v Variant2[A, B]) First() (A, bool) {
	if v.index != 1 {
		var zero A
		return zero, false
	}
	return v.value.(A), true
}

// Second returns the payload when the second alternative is active.
func (v Variant2[A, B]) Second() (B, bool) {
	if v.index != 2 {
		var zero B
		return zero, false
	}
	return v.value.(B), true
}

type variant2Extractor[A, B any] struct {
	alts []TypeID
}

// Variant2Extractor returns a VariantExtractor for Variant2[A,B].
func Variant2Extractor[A, B any]() VariantExtractor {
	return variant2Extractor[A, B]{alts: []TypeID{TypeOf[A](), TypeOf[B]()}}
}

func (variant2Extractor[A, B]) Capability() Capability { return VariantKind }
func (e variant2Extractor[A, B]) Alternatives() []TypeID {
	return e.alts
}

func (e variant2Extractor[A, B]) Active(v any) (TypeID, any, error) {
	va, err := assertAs[Variant2[A, B]](v)
	if err != nil {
		return "", nil, err
	}
	idx := va.Index()
	if idx < 0 || idx >= len(e.alts) {
		return "", nil, fmt.Errorf("%w: variant holds no alternative", ErrTypeMismatch)
	}
	return e.alts[idx], va.Value(), nil
}

func (e variant2Extractor[A, B]) Build(alt TypeID, payload any) (any, error) {
	switch alt {
	case e.alts[0]:
		a, err := assertAs[A](payload)
		if err != nil {
			return nil, err
		}
		return FirstOf2[A, B](a), nil
	case e.alts[1]:
		b, err := assertAs[B](payload)
		if err != nil {
			return nil, err
		}
		return SecondOf2[A, B](b), nil
	default:
		return nil, fmt.Errorf("%w: %q is not an alternative of this variant", ErrTypeMismatch, alt)
	}
}

// RegisterVariant2 registers the Variant2[A,B] extractor under
// TypeOf[Variant2[A,B]]().
func RegisterVariant2[A, B any]() error {
	return RegisterExtractor(TypeOf[Variant2[A, B]](), Variant2Extractor[A, B]())
}

// Variant3 holds exactly one of three alternatives, tried in declared order
// on deserialization.
type Variant3[A, B, C any] struct {
	value any
	index int
}

// FirstOf3 returns a Variant3 holding the first alternative.
func FirstOf3[A, B, C any](v A) Variant3[A, B, C] {
	return Variant3[A, B, C]{value: v, index: 1}
}

// SecondOf3 returns a Variant3 holding the second alternative.
func SecondOf3[A, B, C any](v B) Variant3[A, B, C] {
	return Variant3[A, B, C]{value: v, index: 2}
}

// ThirdOf3 returns a Variant3 holding the third alternative.
func ThirdOf3[A, B, C any](v C) Variant3[A, B, C] {
	return Variant3[A, B, C]{value: v, index: 3}
}

// Index returns the zero-based active alternative, or -1 when unset.
func (v Variant3[A, B, C]) Index() int { return v.index - 1 }

// Value returns the active payload.
func (v Variant3[A, B, C]) Value() any { return v.value }

type variant3Extractor[A, B, C any] struct {
	alts []TypeID
}

// Variant3Extractor returns a VariantExtractor for Variant3[A,B,C].
func Variant3Extractor[A, B, C any]() VariantExtractor {
	return variant3Extractor[A, B, C]{alts: []TypeID{TypeOf[A](), TypeOf[B](), TypeOf[C]()}}
}

func (variant3Extractor[A, B, C]) Capability() Capability { return VariantKind }
func (e variant3Extractor[A, B, C]) Alternatives() []TypeID {
	return e.alts
}

func (e variant3Extractor[A, B, C]) Active(v any) (TypeID, any, error) {
	va, err := assertAs[Variant3[A, B, C]](v)
	if err != nil {
		return "", nil, err
	}
	idx := va.Index()
	if idx < 0 || idx >= len(e.alts) {
		return "", nil, fmt.Errorf("%w: variant holds no alternative", ErrTypeMismatch)
	}
	return e.alts[idx], va.Value(), nil
}

func (e variant3Extractor[A, B, C]) Build(alt TypeID, payload any) (any, error) {
	switch alt {
	case e.alts[0]:
		a, err := assertAs[A](payload)
		if err != nil {
			return nil, err
		}
		return FirstOf3[A, B, C](a), nil
	case e.alts[1]:
		b, err := assertAs[B](payload)
		if err != nil {
			return nil, err
		}
		return SecondOf3[A, B, C](b), nil
	case e.alts[2]:
		c, err := assertAs[C](payload)
		if err != nil {
			return nil, err
		}
		return ThirdOf3[A, B, C](c), nil
	default:
		return nil, fmt.Errorf("%w: %q is not an alternative of this variant", ErrTypeMismatch, alt)
	}
}

// RegisterVariant3 registers the Variant3[A,B,C] extractor under
// TypeOf[Variant3[A,B,C]]().
func RegisterVariant3[A, B, C any]() error {
	return RegisterExtractor(TypeOf[Variant3[A, B, C]](), Variant3Extractor[A, B, C]())
}
