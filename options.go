package arbor

import "time"

// PolymorphMode governs polymorphic handling in one direction.
type PolymorphMode int

const (
	// PolymorphDisabled encodes/decodes strictly by static type and ignores
	// discriminator entries.
	PolymorphDisabled PolymorphMode = iota

	// PolymorphEnabled honors type declarations and instance overrides on
	// serialization, and discriminator entries when present on
	// deserialization.
	PolymorphEnabled

	// PolymorphForced treats every object-like value as polymorphic; on
	// deserialization a missing discriminator is a hard failure.
	PolymorphForced
)

// MultiMapMode selects the serialization encoding for multi-valued
// associative containers. All three encodings are accepted on
// deserialization regardless of which produced them.
type MultiMapMode int

const (
	// MultiMapAsMap encodes a map whose every value is an array of that
	// key's values, even for single-entry keys.
	MultiMapAsMap MultiMapMode = iota

	// MultiMapAsList encodes an array of [key, value] two-element arrays,
	// one per stored entry, preserving exact insertion order.
	MultiMapAsList

	// MultiMapAsDenseMap encodes a map whose value is the bare scalar when
	// the key has exactly one entry, else an array.
	MultiMapAsDenseMap
)

// ValidationFlags select extra structural checks during deserialization.
type ValidationFlags int

const (
	// ValidateNone performs no extra validation.
	ValidateNone ValidationFlags = 0

	// ValidateNoExtra fails when an object node carries keys that match no
	// property of the target type.
	ValidateNoExtra ValidationFlags = 1 << iota

	// ValidateAllProperties fails when a property of the target type has no
	// entry in the object node.
	ValidateAllProperties

	// ValidateNoNullOptional forbids null nodes even for optional targets.
	ValidateNoNullOptional

	// ValidateFull combines all structural checks.
	ValidateFull = ValidateNoExtra | ValidateAllProperties | ValidateNoNullOptional
)

// Has reports whether flag is set.
func (f ValidationFlags) Has(flag ValidationFlags) bool {
	return f&flag != 0
}

// Formatter hooks locale-specific textual formatting of dates. The engine
// never embeds formatting logic itself; the default is RFC 3339.
type Formatter interface {
	FormatDate(t time.Time) string
	ParseDate(s string) (time.Time, error)
}

// Options is the process-lifetime configuration record shared by every
// serialize/deserialize call on an Engine. Set once at construction.
type Options struct {
	// LenientNull converts null into the target type's default-constructed
	// value instead of failing with ErrNullNotAllowed.
	LenientNull bool

	// IncludeObjectName emits the discriminator entry naming the static type
	// for every object, even when no polymorphic branch is taken.
	IncludeObjectName bool

	// EnumAsString encodes registered enums by name instead of number.
	EnumAsString bool

	// VersionAsString encodes Version values as "1.2.3" instead of a
	// three-element array.
	VersionAsString bool

	// DateAsTimestamp encodes time.Time as unix seconds instead of text.
	DateAsTimestamp bool

	// Validation selects extra structural checks during deserialization.
	Validation ValidationFlags

	// SerializePolymorph and DeserializePolymorph configure the two
	// directions independently.
	SerializePolymorph   PolymorphMode
	DeserializePolymorph PolymorphMode

	// MultiMap selects the multi-valued associative encoding.
	MultiMap MultiMapMode

	// Formatter, when set, renders and parses date text.
	Formatter Formatter
}

// Option configures an Engine at construction.
type Option func(*Options)

// WithLenientNull makes null decode to default-constructed values.
func WithLenientNull() Option {
	return func(o *Options) { o.LenientNull = true }
}

// WithIncludeObjectName emits the type name entry for every object.
func WithIncludeObjectName() Option {
	return func(o *Options) { o.IncludeObjectName = true }
}

// WithEnumAsString encodes registered enums by name.
func WithEnumAsString() Option {
	return func(o *Options) { o.EnumAsString = true }
}

// WithVersionAsString encodes Version values as dotted strings.
func WithVersionAsString() Option {
	return func(o *Options) { o.VersionAsString = true }
}

// WithDateAsTimestamp encodes time.Time as unix seconds.
func WithDateAsTimestamp() Option {
	return func(o *Options) { o.DateAsTimestamp = true }
}

// WithValidation selects extra structural checks.
func WithValidation(flags ValidationFlags) Option {
	return func(o *Options) { o.Validation = flags }
}

// WithPolymorphism sets the mode for both directions.
func WithPolymorphism(mode PolymorphMode) Option {
	return func(o *Options) {
		o.SerializePolymorph = mode
		o.DeserializePolymorph = mode
	}
}

// WithSerializePolymorphism sets the serialize-direction mode only.
func WithSerializePolymorphism(mode PolymorphMode) Option {
	return func(o *Options) { o.SerializePolymorph = mode }
}

// WithDeserializePolymorphism sets the deserialize-direction mode only.
func WithDeserializePolymorphism(mode PolymorphMode) Option {
	return func(o *Options) { o.DeserializePolymorph = mode }
}

// WithMultiMapMode selects the multi-valued associative encoding.
func WithMultiMapMode(mode MultiMapMode) Option {
	return func(o *Options) { o.MultiMap = mode }
}

// WithFormatter installs a locale-aware date formatter.
func WithFormatter(f Formatter) Option {
	return func(o *Options) { o.Formatter = f }
}

func defaultOptions() Options {
	return Options{
		SerializePolymorph:   PolymorphEnabled,
		DeserializePolymorph: PolymorphEnabled,
		MultiMap:             MultiMapAsMap,
	}
}
