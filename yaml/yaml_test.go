package yaml_test

import (
	"errors"
	"testing"

	"github.com/zoobzio/arbor"
	"github.com/zoobzio/arbor/yaml"
)

func TestContentType(t *testing.T) {
	if got := yaml.New().ContentType(); got != "application/yaml" {
		t.Errorf("ContentType() = %q", got)
	}
}

func TestRoundTrip(t *testing.T) {
	c := yaml.New()

	n := arbor.Map(
		arbor.E("name", arbor.String("Ada")),
		arbor.E("age", arbor.Number(36)),
		arbor.E("score", arbor.Number(2.5)),
		arbor.E("tags", arbor.Array(arbor.String("a"), arbor.Bool(true))),
		arbor.E("note", arbor.Null()),
	)
	data, err := c.Encode(n)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	back, err := c.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !back.Equal(n) {
		t.Errorf("round trip = %s, want %s", back, n)
	}
}

func TestRoundTrip_EntryOrder(t *testing.T) {
	c := yaml.New()

	n := arbor.Map(
		arbor.E("z", arbor.Number(1)),
		arbor.E("a", arbor.Number(2)),
	)
	data, err := c.Encode(n)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	back, err := c.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	entries := back.Entries()
	if len(entries) != 2 || entries[0].Key != "z" || entries[1].Key != "a" {
		t.Errorf("entry order lost: %s", back)
	}
}

func TestDecode_AmbiguousStringsStayStrings(t *testing.T) {
	c := yaml.New()

	data, err := c.Encode(arbor.String("true"))
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	back, err := c.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if back.Kind() != arbor.KindString || back.StringValue() != "true" {
		t.Errorf("Decode() = %s, want the string \"true\"", back)
	}
}

func TestDecode_PlainYAML(t *testing.T) {
	c := yaml.New()

	in := []byte("name: Ada\nitems:\n  - 1\n  - 2\nflag: true\n")
	back, err := c.Decode(in)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	want := arbor.Map(
		arbor.E("name", arbor.String("Ada")),
		arbor.E("items", arbor.Array(arbor.Number(1), arbor.Number(2))),
		arbor.E("flag", arbor.Bool(true)),
	)
	if !back.Equal(want) {
		t.Errorf("Decode() = %s, want %s", back, want)
	}
}

func TestDecode_EmptyDocumentIsNull(t *testing.T) {
	c := yaml.New()

	back, err := c.Decode(nil)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !back.IsNull() {
		t.Errorf("Decode(empty) = %s, want null", back)
	}
}

func TestDecode_Malformed(t *testing.T) {
	c := yaml.New()

	if _, err := c.Decode([]byte("a: [1, 2\nb: }")); !errors.Is(err, arbor.ErrParse) {
		t.Errorf("malformed yaml should wrap ErrParse, got: %v", err)
	}
}
