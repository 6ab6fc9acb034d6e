package arbor

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for mapping events.
var (
	SignalEngineCreated       = capitan.NewSignal("arbor.engine.created", "Engine instantiated")
	SignalSerializeStart      = capitan.NewSignal("arbor.serialize.start", "Serialize operation beginning")
	SignalSerializeComplete   = capitan.NewSignal("arbor.serialize.complete", "Serialize operation finished")
	SignalDeserializeStart    = capitan.NewSignal("arbor.deserialize.start", "Deserialize operation beginning")
	SignalDeserializeComplete = capitan.NewSignal("arbor.deserialize.complete", "Deserialize operation finished")
	SignalFactoryResolved     = capitan.NewSignal("arbor.factory.resolved", "Factory converters resolved for a type")
)

// Keys for typed event data.
var (
	KeyTypeID         = capitan.NewStringKey("type_id")
	KeyNodeKind       = capitan.NewStringKey("node_kind")
	KeyConverterCount = capitan.NewIntKey("converter_count")
	KeyDuration       = capitan.NewDurationKey("duration")
	KeyError          = capitan.NewErrorKey("error")
)

// emitEngineCreated emits an event when an engine is created.
func emitEngineCreated(ctx context.Context) {
	capitan.Emit(ctx, SignalEngineCreated)
}

// emitSerializeStart emits an event when serialization begins.
func emitSerializeStart(ctx context.Context, id TypeID) {
	capitan.Emit(ctx, SignalSerializeStart,
		KeyTypeID.Field(string(id)),
	)
}

// emitSerializeComplete emits an event when serialization finishes.
func emitSerializeComplete(ctx context.Context, id TypeID, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTypeID.Field(string(id)),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalSerializeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalSerializeComplete, fields...)
	}
}

// emitDeserializeStart emits an event when deserialization begins.
func emitDeserializeStart(ctx context.Context, id TypeID, kind Kind) {
	capitan.Emit(ctx, SignalDeserializeStart,
		KeyTypeID.Field(string(id)),
		KeyNodeKind.Field(kind.String()),
	)
}

// emitDeserializeComplete emits an event when deserialization finishes.
func emitDeserializeComplete(ctx context.Context, id TypeID, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTypeID.Field(string(id)),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalDeserializeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalDeserializeComplete, fields...)
	}
}

// emitFactoryResolved emits an event when factory converters are resolved
// and cached for a type.
func emitFactoryResolved(ctx context.Context, id TypeID, count int) {
	capitan.Emit(ctx, SignalFactoryResolved,
		KeyTypeID.Field(string(id)),
		KeyConverterCount.Field(count),
	)
}
