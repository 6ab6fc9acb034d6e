package arbor_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/zoobzio/arbor"
)

func TestConfigError_MessageAndUnwrap(t *testing.T) {
	err := &arbor.ConfigError{
		Err:    arbor.ErrConflict,
		Type:   arbor.TypeOf[int](),
		Detail: "already registered",
	}
	if !errors.Is(err, arbor.ErrConflict) {
		t.Error("ConfigError should unwrap to its sentinel")
	}
	msg := err.Error()
	if !strings.Contains(msg, "int") || !strings.Contains(msg, "already registered") {
		t.Errorf("Error() = %q, want type and detail", msg)
	}
}

func TestSerializationError_MessageIncludesPath(t *testing.T) {
	err := &arbor.SerializationError{
		Err:  arbor.ErrNoConverter,
		Type: arbor.TypeOf[string](),
		Path: "/items/2",
	}
	if !errors.Is(err, arbor.ErrNoConverter) {
		t.Error("SerializationError should unwrap to its sentinel")
	}
	if !strings.Contains(err.Error(), "/items/2") {
		t.Errorf("Error() = %q, want path", err.Error())
	}
}

func TestDeserializationError_RootPath(t *testing.T) {
	err := &arbor.DeserializationError{
		Err:  arbor.ErrNullNotAllowed,
		Type: arbor.TypeOf[int](),
	}
	if !strings.Contains(err.Error(), "/") {
		t.Errorf("Error() = %q, want root path placeholder", err.Error())
	}
}

func TestDeserializationError_CauseInMessage(t *testing.T) {
	cause := errors.New("bad digit")
	err := &arbor.DeserializationError{
		Err:   arbor.ErrParse,
		Type:  arbor.TypeOf[int](),
		Path:  "/n",
		Cause: cause,
	}
	if !strings.Contains(err.Error(), "bad digit") {
		t.Errorf("Error() = %q, want cause text", err.Error())
	}
	if !errors.Is(err, arbor.ErrParse) {
		t.Error("should unwrap to ErrParse")
	}
}
