package arbor

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Engine runs the bidirectional mapping between values and Nodes. Engines
// are cheap; create one per configuration. All methods are safe for
// concurrent use, and engines sharing the process-wide registries see the
// same extractors, types, and factory converters.
type Engine struct {
	opts Options

	mu         sync.RWMutex
	converters []Converter
	builtins   []Converter
}

// New creates an engine with the given options applied over the defaults.
func New(options ...Option) *Engine {
	opts := defaultOptions()
	for _, o := range options {
		o(&opts)
	}
	e := &Engine{
		opts: opts,
		builtins: []Converter{
			newObjectConverter(),
			newSequenceConverter(),
			newAssociativeConverter(),
			newTupleConverter(),
			newOptionalConverter(),
			newPointerConverter(),
			newVariantConverter(),
			newPrimitiveConverter(),
		},
	}
	emitEngineCreated(context.Background())
	return e
}

// Options returns the engine configuration.
func (e *Engine) Options() Options { return e.opts }

// AddConverter registers a converter on this engine only. Engine converters
// outrank factory-produced and builtin converters at equal priority.
// Registering a second converter with the same name fails with a
// ConfigError wrapping ErrConflict.
func (e *Engine) AddConverter(c Converter) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, existing := range e.converters {
		if existing.Name() == c.Name() {
			return newConfigError(ErrConflict, "", "converter "+c.Name()+" already registered")
		}
	}
	e.converters = append(e.converters, c)
	return nil
}

// candidates returns the converter list consulted for id: engine converters
// first, then factory-produced, then builtins, stably sorted so higher
// priority wins and equal priority keeps that band order.
func (e *Engine) candidates(id TypeID) []Converter {
	e.mu.RLock()
	instance := e.converters
	e.mu.RUnlock()

	produced := factoryConvertersFor(id)

	cs := make([]Converter, 0, len(instance)+len(produced)+len(e.builtins))
	cs = append(cs, instance...)
	cs = append(cs, produced...)
	cs = append(cs, e.builtins...)
	slices.SortStableFunc(cs, func(a, b Converter) int {
		return b.Priority() - a.Priority()
	})
	return cs
}

// Serialize maps v, statically typed as id, to a Node.
func (e *Engine) Serialize(ctx context.Context, v any, id TypeID) (Node, error) {
	emitSerializeStart(ctx, id)
	start := time.Now()

	s := &State{eng: e}
	n, err := s.Serialize(v, id)
	if err != nil && !isTerminal(err) {
		err = s.wrapSerialize(err, id)
	}

	emitSerializeComplete(ctx, id, time.Since(start), err)
	return n, err
}

// Deserialize maps n back to a value of the type id names.
func (e *Engine) Deserialize(ctx context.Context, n Node, id TypeID) (any, error) {
	emitDeserializeStart(ctx, id, n.Kind())
	start := time.Now()

	s := &State{eng: e}
	v, err := s.Deserialize(n, id)
	if err != nil && !isTerminal(err) {
		err = s.wrapDeserialize(err, id)
	}

	emitDeserializeComplete(ctx, id, time.Since(start), err)
	return v, err
}

// SerializeValue maps v to a Node using T's TypeID.
func SerializeValue[T any](ctx context.Context, e *Engine, v T) (Node, error) {
	return e.Serialize(ctx, v, TypeOf[T]())
}

// DeserializeValue maps n back to a T. The result must be assignable to T:
// when T is a polymorphic base and the node resolves to a derived type, the
// final assertion fails with ErrTypeMismatch. Polymorphic callers should use
// Engine.Deserialize, which returns the derived value as any.
func DeserializeValue[T any](ctx context.Context, e *Engine, n Node) (T, error) {
	var zero T
	v, err := e.Deserialize(ctx, n, TypeOf[T]())
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, &DeserializationError{Err: ErrTypeMismatch, Type: TypeOf[T]()}
	}
	return out, nil
}

// Encode serializes v and renders the node through codec.
func Encode[T any](ctx context.Context, e *Engine, codec Codec, v T) ([]byte, error) {
	n, err := SerializeValue(ctx, e, v)
	if err != nil {
		return nil, err
	}
	return codec.Encode(n)
}

// Decode parses data through codec and deserializes the node into a T.
func Decode[T any](ctx context.Context, e *Engine, codec Codec, data []byte) (T, error) {
	n, err := codec.Decode(data)
	if err != nil {
		var zero T
		return zero, err
	}
	return DeserializeValue[T](ctx, e, n)
}
