package utils

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ResetContextOnError detaches observations from a canceled or expired context, so
// that metrics of aborted operations are still recorded.
func ResetContextOnError(ctx context.Context) context.Context {
	if ctx.Err() != nil {
		return context.Background()
	}
	return ctx
}

// SetStatusAndEnd records err on the span, if any, and ends it.
func SetStatusAndEnd(span trace.Span, err error) {
	defer span.End()
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
