package usecase

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var pipelineTracer = otel.Tracer("debutform/internal/usecase")

// startUsecaseSpan opens a child span under the caller's trace. Without a
// valid parent trace, or with a blank name, nothing is started and the
// context comes back unchanged alongside a non-recording span.
func startUsecaseSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if strings.TrimSpace(name) == "" {
		return ctx, noop.Span{}
	}
	if !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, noop.Span{}
	}
	return pipelineTracer.Start(ctx, name)
}
