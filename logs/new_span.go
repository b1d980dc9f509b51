package logs

import (
	"context"
	"crypto/rand"
)

// NewSpan starts a span named name under the span of ctx, if any.
type NewSpan func(ctx context.Context, name string) (context.Context, Span)

func (Module) NewSpan(
	logger Logger,
) NewSpan {
	return func(ctx context.Context, name string) (context.Context, Span) {
		parent, hasParent := SpanFrom(ctx)
		span := Span(rand.Text())
		ctx = withSpan(ctx, span)

		args := []any{
			"name", name,
		}
		if hasParent {
			args = append(args, "parent", parent)
		}
		logger.InfoContext(ctx, "new span", args...)

		return ctx, span
	}
}
