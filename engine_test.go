package arbor_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/zoobzio/arbor"
)

func TestEngine_SliceRoundTrip(t *testing.T) {
	arbor.Reset()
	if err := arbor.RegisterSequence[int](); err != nil {
		t.Fatalf("RegisterSequence() error: %v", err)
	}
	eng := arbor.New()

	n, err := arbor.SerializeValue(context.Background(), eng, []int{1, 2, 3})
	if err != nil {
		t.Fatalf("SerializeValue() error: %v", err)
	}
	want := arbor.Array(arbor.Number(1), arbor.Number(2), arbor.Number(3))
	if !n.Equal(want) {
		t.Errorf("SerializeValue() = %s, want %s", n, want)
	}

	back, err := arbor.DeserializeValue[[]int](context.Background(), eng, n)
	if err != nil {
		t.Fatalf("DeserializeValue() error: %v", err)
	}
	if !reflect.DeepEqual(back, []int{1, 2, 3}) {
		t.Errorf("round trip = %v, want [1 2 3]", back)
	}
}

func TestEngine_NestedSliceRoundTrip(t *testing.T) {
	arbor.Reset()
	if err := arbor.RegisterSequence[string](); err != nil {
		t.Fatalf("RegisterSequence() error: %v", err)
	}
	if err := arbor.RegisterSequence[[]string](); err != nil {
		t.Fatalf("RegisterSequence() error: %v", err)
	}
	eng := arbor.New()

	in := [][]string{{"a"}, {"b", "c"}}
	n, err := arbor.SerializeValue(context.Background(), eng, in)
	if err != nil {
		t.Fatalf("SerializeValue() error: %v", err)
	}
	back, err := arbor.DeserializeValue[[][]string](context.Background(), eng, n)
	if err != nil {
		t.Fatalf("DeserializeValue() error: %v", err)
	}
	if !reflect.DeepEqual(back, in) {
		t.Errorf("round trip = %v, want %v", back, in)
	}
}

func TestEngine_EmptyContainers(t *testing.T) {
	arbor.Reset()
	if err := arbor.RegisterSequence[int](); err != nil {
		t.Fatalf("RegisterSequence() error: %v", err)
	}
	if err := arbor.RegisterMap[string, int](); err != nil {
		t.Fatalf("RegisterMap() error: %v", err)
	}
	eng := arbor.New()

	n, err := arbor.SerializeValue(context.Background(), eng, []int{})
	if err != nil {
		t.Fatalf("SerializeValue() error: %v", err)
	}
	if !n.Equal(arbor.Array()) {
		t.Errorf("empty slice = %s, want []", n)
	}
	back, err := arbor.DeserializeValue[[]int](context.Background(), eng, n)
	if err != nil || len(back) != 0 {
		t.Errorf("round trip = %v, %v", back, err)
	}

	mn, err := arbor.SerializeValue(context.Background(), eng, map[string]int{})
	if err != nil {
		t.Fatalf("SerializeValue() error: %v", err)
	}
	if !mn.Equal(arbor.Map()) {
		t.Errorf("empty map = %s, want {}", mn)
	}
}

func TestEngine_Deterministic(t *testing.T) {
	arbor.Reset()
	if err := arbor.RegisterMap[string, int](); err != nil {
		t.Fatalf("RegisterMap() error: %v", err)
	}
	eng := arbor.New()

	in := map[string]int{"x": 1, "y": 2, "z": 3, "w": 4}
	first, err := arbor.SerializeValue(context.Background(), eng, in)
	if err != nil {
		t.Fatalf("SerializeValue() error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := arbor.SerializeValue(context.Background(), eng, in)
		if err != nil {
			t.Fatalf("SerializeValue() error: %v", err)
		}
		if !again.Equal(first) {
			t.Fatalf("run %d differs: %s vs %s", i, again, first)
		}
	}
}

func TestEngine_MapSerializesSortedKeys(t *testing.T) {
	arbor.Reset()
	if err := arbor.RegisterMap[string, int](); err != nil {
		t.Fatalf("RegisterMap() error: %v", err)
	}
	eng := arbor.New()

	n, err := arbor.SerializeValue(context.Background(), eng, map[string]int{"b": 2, "a": 1})
	if err != nil {
		t.Fatalf("SerializeValue() error: %v", err)
	}
	want := arbor.Map(arbor.E("a", arbor.Number(1)), arbor.E("b", arbor.Number(2)))
	if !n.Equal(want) {
		t.Errorf("SerializeValue() = %s, want sorted %s", n, want)
	}

	back, err := arbor.DeserializeValue[map[string]int](context.Background(), eng, n)
	if err != nil {
		t.Fatalf("DeserializeValue() error: %v", err)
	}
	if !reflect.DeepEqual(back, map[string]int{"a": 1, "b": 2}) {
		t.Errorf("round trip = %v", back)
	}
}

func TestEngine_MapNonStringKeys(t *testing.T) {
	arbor.Reset()
	if err := arbor.RegisterMap[int, string](); err != nil {
		t.Fatalf("RegisterMap() error: %v", err)
	}
	eng := arbor.New()

	n, err := arbor.SerializeValue(context.Background(), eng, map[int]string{2: "b", 1: "a"})
	if err != nil {
		t.Fatalf("SerializeValue() error: %v", err)
	}
	want := arbor.Map(arbor.E("1", arbor.String("a")), arbor.E("2", arbor.String("b")))
	if !n.Equal(want) {
		t.Errorf("SerializeValue() = %s, want %s", n, want)
	}

	back, err := arbor.DeserializeValue[map[int]string](context.Background(), eng, n)
	if err != nil {
		t.Fatalf("DeserializeValue() error: %v", err)
	}
	if !reflect.DeepEqual(back, map[int]string{1: "a", 2: "b"}) {
		t.Errorf("round trip = %v", back)
	}
}

func sampleMultiMap() arbor.MultiMap[string, int] {
	var m arbor.MultiMap[string, int]
	m.Add("a", 1)
	m.Add("a", 2)
	m.Add("b", 3)
	return m
}

func TestEngine_MultiMapModes(t *testing.T) {
	arbor.Reset()
	if err := arbor.RegisterMultiMap[string, int](); err != nil {
		t.Fatalf("RegisterMultiMap() error: %v", err)
	}

	tests := []struct {
		name string
		mode arbor.MultiMapMode
		want arbor.Node
	}{
		{
			"map", arbor.MultiMapAsMap,
			arbor.Map(
				arbor.E("a", arbor.Array(arbor.Number(1), arbor.Number(2))),
				arbor.E("b", arbor.Array(arbor.Number(3))),
			),
		},
		{
			"list", arbor.MultiMapAsList,
			arbor.Array(
				arbor.Array(arbor.String("a"), arbor.Number(1)),
				arbor.Array(arbor.String("a"), arbor.Number(2)),
				arbor.Array(arbor.String("b"), arbor.Number(3)),
			),
		},
		{
			"dense", arbor.MultiMapAsDenseMap,
			arbor.Map(
				arbor.E("a", arbor.Array(arbor.Number(1), arbor.Number(2))),
				arbor.E("b", arbor.Number(3)),
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := arbor.New(arbor.WithMultiMapMode(tt.mode))
			n, err := arbor.SerializeValue(context.Background(), eng, sampleMultiMap())
			if err != nil {
				t.Fatalf("SerializeValue() error: %v", err)
			}
			if !n.Equal(tt.want) {
				t.Errorf("SerializeValue() = %s, want %s", n, tt.want)
			}

			back, err := arbor.DeserializeValue[arbor.MultiMap[string, int]](context.Background(), eng, n)
			if err != nil {
				t.Fatalf("DeserializeValue() error: %v", err)
			}
			if !back.Equal(sampleMultiMap()) {
				t.Errorf("round trip lost entries or order: %v", back.Entries())
			}
		})
	}
}

func TestEngine_MultiMapDenseKeepsArrayValuesGrouped(t *testing.T) {
	arbor.Reset()
	if err := arbor.RegisterSequence[int](); err != nil {
		t.Fatalf("RegisterSequence() error: %v", err)
	}
	if err := arbor.RegisterMultiMap[string, []int](); err != nil {
		t.Fatalf("RegisterMultiMap() error: %v", err)
	}
	eng := arbor.New(arbor.WithMultiMapMode(arbor.MultiMapAsDenseMap))

	var m arbor.MultiMap[string, []int]
	m.Add("a", []int{1, 2})
	m.Add("b", []int{3})
	m.Add("b", []int{4, 5})

	n, err := arbor.SerializeValue(context.Background(), eng, m)
	if err != nil {
		t.Fatalf("SerializeValue() error: %v", err)
	}
	// Single-entry keys with array values stay wrapped so the decoder can
	// tell one array value from a group of values.
	want := arbor.Map(
		arbor.E("a", arbor.Array(arbor.Array(arbor.Number(1), arbor.Number(2)))),
		arbor.E("b", arbor.Array(
			arbor.Array(arbor.Number(3)),
			arbor.Array(arbor.Number(4), arbor.Number(5)),
		)),
	)
	if !n.Equal(want) {
		t.Errorf("SerializeValue() = %s, want %s", n, want)
	}

	back, err := arbor.DeserializeValue[arbor.MultiMap[string, []int]](context.Background(), eng, n)
	if err != nil {
		t.Fatalf("DeserializeValue() error: %v", err)
	}
	if !back.Equal(m) {
		t.Errorf("round trip = %v, want %v", back.Entries(), m.Entries())
	}
}

func TestEngine_MultiMapDenseStillCollapsesScalars(t *testing.T) {
	arbor.Reset()
	if err := arbor.RegisterMultiMap[string, int](); err != nil {
		t.Fatalf("RegisterMultiMap() error: %v", err)
	}
	eng := arbor.New(arbor.WithMultiMapMode(arbor.MultiMapAsDenseMap))

	var m arbor.MultiMap[string, int]
	m.Add("a", 1)
	n, err := arbor.SerializeValue(context.Background(), eng, m)
	if err != nil {
		t.Fatalf("SerializeValue() error: %v", err)
	}
	if !n.Equal(arbor.Map(arbor.E("a", arbor.Number(1)))) {
		t.Errorf("SerializeValue() = %s, want bare scalar", n)
	}
}

func TestEngine_MultiMapDecodesAnyEncoding(t *testing.T) {
	arbor.Reset()
	if err := arbor.RegisterMultiMap[string, int](); err != nil {
		t.Fatalf("RegisterMultiMap() error: %v", err)
	}

	listEncoded := arbor.Array(
		arbor.Array(arbor.String("a"), arbor.Number(1)),
		arbor.Array(arbor.String("a"), arbor.Number(2)),
		arbor.Array(arbor.String("b"), arbor.Number(3)),
	)

	// An engine configured for the map encoding still accepts the list one.
	eng := arbor.New(arbor.WithMultiMapMode(arbor.MultiMapAsMap))
	back, err := arbor.DeserializeValue[arbor.MultiMap[string, int]](context.Background(), eng, listEncoded)
	if err != nil {
		t.Fatalf("DeserializeValue() error: %v", err)
	}
	if !back.Equal(sampleMultiMap()) {
		t.Errorf("cross-encoding decode = %v", back.Entries())
	}
}

func TestEngine_PairAndTupleRoundTrip(t *testing.T) {
	arbor.Reset()
	if err := arbor.RegisterPair[string, int](); err != nil {
		t.Fatalf("RegisterPair() error: %v", err)
	}
	if err := arbor.RegisterTuple3[string, int, bool](); err != nil {
		t.Fatalf("RegisterTuple3() error: %v", err)
	}
	eng := arbor.New()

	pn, err := arbor.SerializeValue(context.Background(), eng, arbor.Pair[string, int]{First: "a", Second: 1})
	if err != nil {
		t.Fatalf("SerializeValue(pair) error: %v", err)
	}
	if !pn.Equal(arbor.Array(arbor.String("a"), arbor.Number(1))) {
		t.Errorf("pair node = %s", pn)
	}
	pair, err := arbor.DeserializeValue[arbor.Pair[string, int]](context.Background(), eng, pn)
	if err != nil {
		t.Fatalf("DeserializeValue(pair) error: %v", err)
	}
	if pair.First != "a" || pair.Second != 1 {
		t.Errorf("pair round trip = %+v", pair)
	}

	tn, err := arbor.SerializeValue(context.Background(), eng,
		arbor.Tuple3[string, int, bool]{First: "x", Second: 2, Third: true})
	if err != nil {
		t.Fatalf("SerializeValue(tuple) error: %v", err)
	}
	tup, err := arbor.DeserializeValue[arbor.Tuple3[string, int, bool]](context.Background(), eng, tn)
	if err != nil {
		t.Fatalf("DeserializeValue(tuple) error: %v", err)
	}
	if tup.First != "x" || tup.Second != 2 || !tup.Third {
		t.Errorf("tuple round trip = %+v", tup)
	}
}

func TestEngine_TupleArityMismatch(t *testing.T) {
	arbor.Reset()
	if err := arbor.RegisterPair[string, int](); err != nil {
		t.Fatalf("RegisterPair() error: %v", err)
	}
	eng := arbor.New()

	_, err := arbor.DeserializeValue[arbor.Pair[string, int]](context.Background(), eng,
		arbor.Array(arbor.String("only")))
	if !errors.Is(err, arbor.ErrTypeMismatch) {
		t.Errorf("arity mismatch should wrap ErrTypeMismatch, got: %v", err)
	}
}

func TestEngine_OptionalRoundTrip(t *testing.T) {
	arbor.Reset()
	if err := arbor.RegisterOptional[int](); err != nil {
		t.Fatalf("RegisterOptional() error: %v", err)
	}
	eng := arbor.New()

	n, err := arbor.SerializeValue(context.Background(), eng, arbor.Some(5))
	if err != nil {
		t.Fatalf("SerializeValue(some) error: %v", err)
	}
	if !n.Equal(arbor.Number(5)) {
		t.Errorf("some node = %s, want 5", n)
	}

	nn, err := arbor.SerializeValue(context.Background(), eng, arbor.None[int]())
	if err != nil {
		t.Fatalf("SerializeValue(none) error: %v", err)
	}
	if !nn.IsNull() {
		t.Errorf("none node = %s, want null", nn)
	}

	back, err := arbor.DeserializeValue[arbor.Optional[int]](context.Background(), eng, arbor.Null())
	if err != nil {
		t.Fatalf("DeserializeValue(null) error: %v", err)
	}
	if back.Present() {
		t.Error("null should decode to absent optional")
	}

	some, err := arbor.DeserializeValue[arbor.Optional[int]](context.Background(), eng, arbor.Number(7))
	if err != nil {
		t.Fatalf("DeserializeValue(7) error: %v", err)
	}
	if v, ok := some.Get(); !ok || v != 7 {
		t.Errorf("decoded optional = %v, %v; want 7, true", v, ok)
	}
}

func TestEngine_PointerRoundTrip(t *testing.T) {
	arbor.Reset()
	if err := arbor.RegisterPointer[int](); err != nil {
		t.Fatalf("RegisterPointer() error: %v", err)
	}
	eng := arbor.New()

	v := 9
	n, err := arbor.SerializeValue(context.Background(), eng, &v)
	if err != nil {
		t.Fatalf("SerializeValue() error: %v", err)
	}
	back, err := arbor.DeserializeValue[*int](context.Background(), eng, n)
	if err != nil {
		t.Fatalf("DeserializeValue() error: %v", err)
	}
	if back == nil || *back != 9 {
		t.Errorf("round trip = %v", back)
	}
	if back == &v {
		t.Error("deserialized pointer must not alias the source")
	}

	nilBack, err := arbor.DeserializeValue[*int](context.Background(), eng, arbor.Null())
	if err != nil {
		t.Fatalf("DeserializeValue(null) error: %v", err)
	}
	if nilBack != nil {
		t.Errorf("null should decode to nil pointer, got %v", nilBack)
	}
}

func TestEngine_VariantRoundTrip(t *testing.T) {
	arbor.Reset()
	if err := arbor.RegisterVariant2[string, int](); err != nil {
		t.Fatalf("RegisterVariant2() error: %v", err)
	}
	eng := arbor.New()

	n, err := arbor.SerializeValue(context.Background(), eng, arbor.SecondOf2[string, int](42))
	if err != nil {
		t.Fatalf("SerializeValue() error: %v", err)
	}
	if !n.Equal(arbor.Number(42)) {
		t.Errorf("variant node = %s, want bare 42", n)
	}

	back, err := arbor.DeserializeValue[arbor.Variant2[string, int]](context.Background(), eng, n)
	if err != nil {
		t.Fatalf("DeserializeValue() error: %v", err)
	}
	if v, ok := back.Second(); !ok || v != 42 {
		t.Errorf("decoded variant = %v, %v; want 42, true", v, ok)
	}
}

func TestEngine_VariantAmbiguityFirstDeclaredWins(t *testing.T) {
	arbor.Reset()
	if err := arbor.RegisterVariant2[float64, int](); err != nil {
		t.Fatalf("RegisterVariant2() error: %v", err)
	}
	eng := arbor.New()

	// A number node matches both alternatives; the first declared wins.
	back, err := arbor.DeserializeValue[arbor.Variant2[float64, int]](context.Background(), eng, arbor.Number(7))
	if err != nil {
		t.Fatalf("DeserializeValue() error: %v", err)
	}
	if back.Index() != 0 {
		t.Errorf("ambiguous node decoded as alternative %d, want 0", back.Index())
	}
}

func TestEngine_VariantNoAlternativeMatches(t *testing.T) {
	arbor.Reset()
	if err := arbor.RegisterVariant2[string, int](); err != nil {
		t.Fatalf("RegisterVariant2() error: %v", err)
	}
	eng := arbor.New()

	_, err := arbor.DeserializeValue[arbor.Variant2[string, int]](context.Background(), eng, arbor.Bool(true))
	if !errors.Is(err, arbor.ErrTypeMismatch) {
		t.Errorf("exhausted alternatives should wrap ErrTypeMismatch, got: %v", err)
	}
}

func TestEngine_NullPolicyStrict(t *testing.T) {
	arbor.Reset()
	eng := arbor.New()

	_, err := arbor.DeserializeValue[int](context.Background(), eng, arbor.Null())
	if !errors.Is(err, arbor.ErrNullNotAllowed) {
		t.Errorf("strict null should wrap ErrNullNotAllowed, got: %v", err)
	}
}

func TestEngine_NullPolicyLenient(t *testing.T) {
	arbor.Reset()
	eng := arbor.New(arbor.WithLenientNull())

	back, err := arbor.DeserializeValue[int](context.Background(), eng, arbor.Null())
	if err != nil {
		t.Fatalf("DeserializeValue() error: %v", err)
	}
	if back != 0 {
		t.Errorf("lenient null = %d, want default-constructed 0", back)
	}
}

func TestEngine_ValidateNoNullOptional(t *testing.T) {
	arbor.Reset()
	if err := arbor.RegisterOptional[int](); err != nil {
		t.Fatalf("RegisterOptional() error: %v", err)
	}
	eng := arbor.New(arbor.WithValidation(arbor.ValidateNoNullOptional))

	_, err := arbor.DeserializeValue[arbor.Optional[int]](context.Background(), eng, arbor.Null())
	if !errors.Is(err, arbor.ErrValidation) {
		t.Errorf("null optional under validation should wrap ErrValidation, got: %v", err)
	}
}

func TestEngine_UnregisteredExtractor(t *testing.T) {
	arbor.Reset()
	eng := arbor.New()

	_, err := arbor.SerializeValue(context.Background(), eng, []float32{1})
	if !errors.Is(err, arbor.ErrUnregisteredExtractor) {
		t.Errorf("container without extractor should wrap ErrUnregisteredExtractor, got: %v", err)
	}
}

func TestEngine_NoConverter(t *testing.T) {
	arbor.Reset()
	eng := arbor.New()

	type opaque struct{ c chan int }
	_, err := arbor.SerializeValue(context.Background(), eng, opaque{})
	if !errors.Is(err, arbor.ErrNoConverter) {
		t.Errorf("unhandled type should wrap ErrNoConverter, got: %v", err)
	}
}

func TestEngine_ErrorCarriesPath(t *testing.T) {
	arbor.Reset()
	if err := arbor.RegisterSequence[arbor.Pair[string, int]](); err != nil {
		t.Fatalf("RegisterSequence() error: %v", err)
	}
	if err := arbor.RegisterPair[string, int](); err != nil {
		t.Fatalf("RegisterPair() error: %v", err)
	}
	eng := arbor.New()

	bad := arbor.Array(
		arbor.Array(arbor.String("ok"), arbor.Number(1)),
		arbor.Array(arbor.String("short")),
	)
	_, err := arbor.DeserializeValue[[]arbor.Pair[string, int]](context.Background(), eng, bad)
	if err == nil {
		t.Fatal("expected failure")
	}
	var de *arbor.DeserializationError
	if !errors.As(err, &de) {
		t.Fatalf("error should be a DeserializationError, got: %T", err)
	}
	if de.Path != "/1" {
		t.Errorf("Path = %q, want /1", de.Path)
	}
}
