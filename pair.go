package arbor

import "fmt"

// Pair is a fixed two-slot heterogeneous composite.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Tuple3 is a fixed three-slot heterogeneous composite.
type Tuple3[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

type pairExtractor[A, B any] struct {
	slots []TypeID
}

// PairExtractor returns a TupleExtractor for Pair[A,B]. Slot order is
// significant: the extractor for Pair[A,B] does not serve Pair[B,A].
func PairExtractor[A, B any]() TupleExtractor {
	return pairExtractor[A, B]{slots: []TypeID{TypeOf[A](), TypeOf[B]()}}
}

func (pairExtractor[A, B]) Capability() Capability { return PairKind }
func (e pairExtractor[A, B]) Slots() []TypeID      { return e.slots }

func (pairExtractor[A, B]) Unpack(v any) ([]any, error) {
	p, err := assertAs[Pair[A, B]](v)
	if err != nil {
		return nil, err
	}
	return []any{p.First, p.Second}, nil
}

func (pairExtractor[A, B]) Pack(slots []any) (any, error) {
	if len(slots) != 2 {
		return nil, fmt.Errorf("%w: pair needs 2 slots, got %d", ErrTypeMismatch, len(slots))
	}
	a, err := assertAs[A](slots[0])
	if err != nil {
		return nil, err
	}
	b, err := assertAs[B](slots[1])
	if err != nil {
		return nil, err
	}
	return Pair[A, B]{First: a, Second: b}, nil
}

// RegisterPair registers the Pair[A,B] extractor under TypeOf[Pair[A,B]]().
func RegisterPair[A, B any]() error {
	return RegisterExtractor(TypeOf[Pair[A, B]](), PairExtractor[A, B]())
}

type tuple3Extractor[A, B, C any] struct {
	slots []TypeID
}

// Tuple3Extractor returns a TupleExtractor for Tuple3[A,B,C].
func Tuple3Extractor[A, B, C any]() TupleExtractor {
	return tuple3Extractor[A, B, C]{slots: []TypeID{TypeOf[A](), TypeOf[B](), TypeOf[C]()}}
}

func (tuple3Extractor[A, B, C]) Capability() Capability { return TupleKind }
func (e tuple3Extractor[A, B, C]) Slots() []TypeID      { return e.slots }

func (tuple3Extractor[A, B, C]) Unpack(v any) ([]any, error) {
	t, err := assertAs[Tuple3[A, B, C]](v)
	if err != nil {
		return nil, err
	}
	return []any{t.First, t.Second, t.Third}, nil
}

func (tuple3Extractor[A, B, C]) Pack(slots []any) (any, error) {
	if len(slots) != 3 {
		return nil, fmt.Errorf("%w: tuple needs 3 slots, got %d", ErrTypeMismatch, len(slots))
	}
	a, err := assertAs[A](slots[0])
	if err != nil {
		return nil, err
	}
	b, err := assertAs[B](slots[1])
	if err != nil {
		return nil, err
	}
	c, err := assertAs[C](slots[2])
	if err != nil {
		return nil, err
	}
	return Tuple3[A, B, C]{First: a, Second: b, Third: c}, nil
}

// RegisterTuple3 registers the Tuple3[A,B,C] extractor under
// TypeOf[Tuple3[A,B,C]]().
func RegisterTuple3[A, B, C any]() error {
	return RegisterExtractor(TypeOf[Tuple3[A, B, C]](), Tuple3Extractor[A, B, C]())
}
