package refine

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for pipeline events.
var (
	SignalPipelineCreated  = capitan.NewSignal("refine.pipeline.created", "Pipeline instantiated")
	SignalRegistryFrozen   = capitan.NewSignal("refine.registry.frozen", "Tag registry made read-only")
	SignalProcessStart     = capitan.NewSignal("refine.process.start", "Process operation beginning")
	SignalProcessComplete  = capitan.NewSignal("refine.process.complete", "Process operation finished")
	SignalValidationFailed = capitan.NewSignal("refine.validation.failed", "Validators rejected the target")
)

// Keys for typed event data.
var (
	KeyTypeName         = capitan.NewStringKey("type_name")
	KeyOperation        = capitan.NewStringKey("operation")
	KeyActiveCount      = capitan.NewIntKey("active_count")
	KeyFieldCount       = capitan.NewIntKey("field_count")
	KeyTagCount         = capitan.NewIntKey("tag_count")
	KeyTransformedCount = capitan.NewIntKey("transformed_count")
	KeyFailureCount     = capitan.NewIntKey("failure_count")
	KeyDuration         = capitan.NewDurationKey("duration")
	KeyError            = capitan.NewErrorKey("error")
)

func emitPipelineCreated(ctx context.Context, typeName string, fields int) {
	capitan.Emit(ctx, SignalPipelineCreated,
		KeyTypeName.Field(typeName),
		KeyFieldCount.Field(fields),
	)
}

func emitRegistryFrozen(ctx context.Context, tags int) {
	capitan.Emit(ctx, SignalRegistryFrozen,
		KeyTagCount.Field(tags),
	)
}

func emitProcessStart(ctx context.Context, typeName, operation string, active int) {
	capitan.Emit(ctx, SignalProcessStart,
		KeyTypeName.Field(typeName),
		KeyOperation.Field(operation),
		KeyActiveCount.Field(active),
	)
}

// emitProcessComplete reports validation rejections as a separate signal so
// they are not counted as errors.
func emitProcessComplete(ctx context.Context, typeName, operation string, duration time.Duration, fields, transformed, failures int, err error) {
	attrs := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyOperation.Field(operation),
		KeyDuration.Field(duration),
		KeyFieldCount.Field(fields),
		KeyTransformedCount.Field(transformed),
		KeyFailureCount.Field(failures),
	}
	switch {
	case failures > 0:
		capitan.Emit(ctx, SignalValidationFailed, attrs...)
	case err != nil:
		attrs = append(attrs, KeyError.Field(err))
		capitan.Error(ctx, SignalProcessComplete, attrs...)
	default:
		capitan.Emit(ctx, SignalProcessComplete, attrs...)
	}
}
