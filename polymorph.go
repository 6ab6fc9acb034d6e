package arbor

import "fmt"

// DiscriminatorKey is the reserved object entry naming the runtime type for
// polymorphic decoding. It is distinct from all ordinary property names.
const DiscriminatorKey = "@class"

// declaredPolymorphic resolves the three-level override chain for v:
// instance flag first, then the nearest declaring ancestor, defaulting to
// not polymorphic.
func declaredPolymorphic(v any, spec *typeSpec) bool {
	if f, ok := v.(PolymorphicFlagger); ok {
		return f.PolymorphicInstance()
	}

	typesMu.RLock()
	defer typesMu.RUnlock()
	for s := spec; s != nil; {
		if s.poly != nil {
			return *s.poly
		}
		if s.base == "" {
			break
		}
		s = typeSpecs[s.base]
	}
	return false
}

// resolveSerializeTarget decides which type's property set encodes v and
// whether the discriminator entry is emitted.
func resolveSerializeTarget(opts Options, static *typeSpec, v any) (*typeSpec, bool, error) {
	switch opts.SerializePolymorph {
	case PolymorphDisabled:
		return static, false, nil

	case PolymorphForced:
		rtID, ok := runtimeTypeID(v)
		if !ok {
			return nil, false, fmt.Errorf("%w: nil value under forced polymorphism", ErrPropertyAccess)
		}
		spec, ok := typeSpecFor(rtID)
		if !ok {
			return nil, false, fmt.Errorf("%w: runtime type %q is not registered", ErrPropertyAccess, rtID)
		}
		return spec, true, nil

	default: // PolymorphEnabled
		rtID, ok := runtimeTypeID(v)
		if !ok {
			return static, false, nil
		}
		spec, ok := typeSpecFor(rtID)
		if !ok {
			return static, false, nil
		}
		if declaredPolymorphic(v, spec) {
			return spec, true, nil
		}
		return static, false, nil
	}
}

// resolveDeserializeTarget decides which type an object node populates,
// honoring the discriminator entry per the configured mode.
func resolveDeserializeTarget(opts Options, static *typeSpec, n Node) (*typeSpec, error) {
	disc, present := n.Get(DiscriminatorKey)

	switch opts.DeserializePolymorph {
	case PolymorphDisabled:
		return static, nil

	case PolymorphForced:
		if !present {
			return nil, ErrMissingDiscriminator
		}

	default: // PolymorphEnabled
		if !present {
			return static, nil
		}
	}

	if disc.Kind() != KindString {
		return nil, fmt.Errorf("%w: discriminator must be a string, got %s", ErrTypeMismatch, disc.Kind())
	}
	name := disc.StringValue()
	id, ok := lookupTypeByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTypeName, name)
	}
	spec, ok := typeSpecFor(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTypeName, name)
	}
	return spec, nil
}
