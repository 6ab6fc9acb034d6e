package arbor_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/zoobzio/arbor"
)

type Address struct {
	City string
	Zip  string `arbor:"zip"`
}

type Customer struct {
	Name   string `arbor:"name"`
	Age    int
	Secret string `arbor:"-"`
	Home   Address
}

func registerCustomer(t *testing.T) {
	t.Helper()
	arbor.Reset()
	if err := arbor.RegisterType[Address](); err != nil {
		t.Fatalf("RegisterType[Address]() error: %v", err)
	}
	if err := arbor.RegisterType[Customer](); err != nil {
		t.Fatalf("RegisterType[Customer]() error: %v", err)
	}
}

func TestObject_RoundTrip(t *testing.T) {
	registerCustomer(t)
	eng := arbor.New()

	in := Customer{Name: "Ada", Age: 36, Secret: "hidden", Home: Address{City: "London", Zip: "N1"}}
	n, err := arbor.SerializeValue(context.Background(), eng, in)
	if err != nil {
		t.Fatalf("SerializeValue() error: %v", err)
	}

	want := arbor.Map(
		arbor.E("name", arbor.String("Ada")),
		arbor.E("Age", arbor.Number(36)),
		arbor.E("Home", arbor.Map(
			arbor.E("City", arbor.String("London")),
			arbor.E("zip", arbor.String("N1")),
		)),
	)
	if !n.Equal(want) {
		t.Errorf("SerializeValue() = %s, want %s", n, want)
	}

	back, err := arbor.DeserializeValue[Customer](context.Background(), eng, n)
	if err != nil {
		t.Fatalf("DeserializeValue() error: %v", err)
	}
	if back.Name != "Ada" || back.Age != 36 || back.Home.City != "London" || back.Home.Zip != "N1" {
		t.Errorf("round trip = %+v", back)
	}
	if back.Secret != "" {
		t.Error("skipped property must not round trip")
	}
}

func TestObject_UnknownKeysIgnoredByDefault(t *testing.T) {
	registerCustomer(t)
	eng := arbor.New()

	n := arbor.Map(
		arbor.E("name", arbor.String("Ada")),
		arbor.E("extra", arbor.Number(1)),
	)
	back, err := arbor.DeserializeValue[Customer](context.Background(), eng, n)
	if err != nil {
		t.Fatalf("DeserializeValue() error: %v", err)
	}
	if back.Name != "Ada" {
		t.Errorf("round trip = %+v", back)
	}
}

func TestObject_ValidateNoExtra(t *testing.T) {
	registerCustomer(t)
	eng := arbor.New(arbor.WithValidation(arbor.ValidateNoExtra))

	n := arbor.Map(
		arbor.E("name", arbor.String("Ada")),
		arbor.E("extra", arbor.Number(1)),
	)
	_, err := arbor.DeserializeValue[Customer](context.Background(), eng, n)
	if !errors.Is(err, arbor.ErrValidation) {
		t.Errorf("unknown key should wrap ErrValidation, got: %v", err)
	}
}

func TestObject_ValidateAllProperties(t *testing.T) {
	registerCustomer(t)
	eng := arbor.New(arbor.WithValidation(arbor.ValidateAllProperties))

	n := arbor.Map(arbor.E("name", arbor.String("Ada")))
	_, err := arbor.DeserializeValue[Customer](context.Background(), eng, n)
	if !errors.Is(err, arbor.ErrValidation) {
		t.Errorf("missing property should wrap ErrValidation, got: %v", err)
	}
}

func TestObject_ValidateAllPropertiesWithDuplicateKeys(t *testing.T) {
	registerCustomer(t)
	eng := arbor.New(arbor.WithValidation(arbor.ValidateAllProperties))

	// Three entries, but only two distinct properties are covered; the
	// duplicate "name" entry must not stand in for the missing ones.
	n := arbor.Map(
		arbor.E("name", arbor.String("Ada")),
		arbor.E("name", arbor.String("Grace")),
		arbor.E("Age", arbor.Number(36)),
	)
	_, err := arbor.DeserializeValue[Customer](context.Background(), eng, n)
	if !errors.Is(err, arbor.ErrValidation) {
		t.Errorf("missing property should wrap ErrValidation, got: %v", err)
	}
}

func TestObject_WrongShapeFails(t *testing.T) {
	registerCustomer(t)
	eng := arbor.New()

	_, err := arbor.DeserializeValue[Customer](context.Background(), eng, arbor.Array())
	if !errors.Is(err, arbor.ErrNoConverter) {
		t.Errorf("array into object should wrap ErrNoConverter, got: %v", err)
	}
}

func TestRegisterType_NameClash(t *testing.T) {
	arbor.Reset()
	if err := arbor.RegisterType[Customer](arbor.WithName("customer")); err != nil {
		t.Fatalf("RegisterType() error: %v", err)
	}
	err := arbor.RegisterType[Address](arbor.WithName("customer"))
	if !errors.Is(err, arbor.ErrConflict) {
		t.Errorf("name clash should wrap ErrConflict, got: %v", err)
	}
}

func TestRegisterType_BaseMustBeRegisteredFirst(t *testing.T) {
	arbor.Reset()
	err := arbor.RegisterType[Customer](arbor.WithBase[Address]())
	if !errors.Is(err, arbor.ErrConflict) {
		t.Errorf("unregistered base should wrap ErrConflict, got: %v", err)
	}
}

// Celsius exercises the serialize/deserialize override interfaces: it maps
// to a suffixed string instead of its property set.
type Celsius struct {
	Degrees float64
}

func (c Celsius) SerializeNode(_ *arbor.State) (arbor.Node, error) {
	return arbor.String(fmt.Sprintf("%gC", c.Degrees)), nil
}

func (c *Celsius) DeserializeNode(_ *arbor.State, n arbor.Node) error {
	if n.Kind() != arbor.KindString || !strings.HasSuffix(n.StringValue(), "C") {
		return fmt.Errorf("%w: want a temperature string", arbor.ErrTypeMismatch)
	}
	deg, err := strconv.ParseFloat(strings.TrimSuffix(n.StringValue(), "C"), 64)
	if err != nil {
		return fmt.Errorf("%w: %v", arbor.ErrParse, err)
	}
	c.Degrees = deg
	return nil
}

func TestObject_OverridesBypassConverters(t *testing.T) {
	arbor.Reset()
	eng := arbor.New()

	n, err := arbor.SerializeValue(context.Background(), eng, Celsius{Degrees: 21.5})
	if err != nil {
		t.Fatalf("SerializeValue() error: %v", err)
	}
	if !n.Equal(arbor.String("21.5C")) {
		t.Errorf("override node = %s, want \"21.5C\"", n)
	}

	back, err := arbor.DeserializeValue[Celsius](context.Background(), eng, n)
	if err != nil {
		t.Fatalf("DeserializeValue() error: %v", err)
	}
	if back.Degrees != 21.5 {
		t.Errorf("round trip = %+v", back)
	}
}

func TestObject_DeserializeOverrideErrorPropagates(t *testing.T) {
	arbor.Reset()
	eng := arbor.New()

	_, err := arbor.DeserializeValue[Celsius](context.Background(), eng, arbor.String("nope"))
	if !errors.Is(err, arbor.ErrTypeMismatch) {
		t.Errorf("override failure should wrap ErrTypeMismatch, got: %v", err)
	}
}
