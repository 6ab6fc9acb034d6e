package arbor

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrNoConverter indicates no converter accepted the (type, shape) pair.
	ErrNoConverter = errors.New("no converter found")

	// ErrUnregisteredExtractor indicates a container conversion required an
	// extractor that was never registered.
	ErrUnregisteredExtractor = errors.New("unregistered extractor")

	// ErrPropertyAccess indicates reading or writing an object property failed.
	ErrPropertyAccess = errors.New("property access failed")

	// ErrTypeMismatch indicates a node's shape does not fit the target type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrMissingDiscriminator indicates forced polymorphic decoding found no
	// discriminator entry in an object node.
	ErrMissingDiscriminator = errors.New("missing discriminator")

	// ErrUnknownTypeName indicates a discriminator named a type that was
	// never registered.
	ErrUnknownTypeName = errors.New("unregistered type name")

	// ErrValidation indicates a configured validation flag rejected an
	// otherwise convertible node.
	ErrValidation = errors.New("validation failed")

	// ErrNullNotAllowed indicates a null node was deserialized into a value
	// slot under the strict null policy.
	ErrNullNotAllowed = errors.New("null not allowed")

	// ErrConflict indicates a conflicting re-registration of an extractor,
	// converter, factory, or type.
	ErrConflict = errors.New("conflicting registration")

	// ErrParse indicates a codec failed to decode wire bytes into a Node.
	ErrParse = errors.New("parse failed")

	// ErrNotApplicable is the recoverable signal a converter returns when it
	// declines a value it nominally accepted. It only advances candidate
	// selection and never surfaces to the caller.
	ErrNotApplicable = errors.New("converter not applicable")
)

// ConfigError represents a registration error, resolved at setup time.
type ConfigError struct {
	Err    error  // Underlying sentinel error (usually ErrConflict)
	Type   TypeID // Type identifier involved, if any
	Detail string // Human-readable context
}

func (e *ConfigError) Error() string {
	switch {
	case e.Type != "" && e.Detail != "":
		return fmt.Sprintf("%s for type %q: %s", e.Err.Error(), e.Type, e.Detail)
	case e.Type != "":
		return fmt.Sprintf("%s for type %q", e.Err.Error(), e.Type)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Detail)
	default:
		return e.Err.Error()
	}
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// SerializationError represents a failure of a top-level serialize call.
// Path locates the nested value at which the failure occurred, rendered as
// a JSON-pointer-like string (for example /items/2/price).
type SerializationError struct {
	Err   error  // Underlying sentinel error
	Type  TypeID // Type being serialized at the failure point
	Path  string // Location within the top-level value
	Cause error  // Original error, if any
}

func (e *SerializationError) Error() string {
	path := e.Path
	if path == "" {
		path = "/"
	}
	if e.Cause != nil {
		return fmt.Sprintf("serialize %s at %s: %s: %v", e.Type, path, e.Err.Error(), e.Cause)
	}
	return fmt.Sprintf("serialize %s at %s: %s", e.Type, path, e.Err.Error())
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// DeserializationError represents a failure of a top-level deserialize call.
type DeserializationError struct {
	Err   error  // Underlying sentinel error
	Type  TypeID // Type being deserialized at the failure point
	Path  string // Location within the top-level node
	Cause error  // Original error, if any
}

func (e *DeserializationError) Error() string {
	path := e.Path
	if path == "" {
		path = "/"
	}
	if e.Cause != nil {
		return fmt.Sprintf("deserialize %s at %s: %s: %v", e.Type, path, e.Err.Error(), e.Cause)
	}
	return fmt.Sprintf("deserialize %s at %s: %s", e.Type, path, e.Err.Error())
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

// newConfigError creates a ConfigError for registration failures.
func newConfigError(sentinel error, id TypeID, detail string) error {
	return &ConfigError{Err: sentinel, Type: id, Detail: detail}
}
