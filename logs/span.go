package logs

import "context"

// Span identifies one unit of work, like a traced run or a debug adapter connection.
type Span string

type spanKey struct{}

func SpanFrom(ctx context.Context) (Span, bool) {
	span, ok := ctx.Value(spanKey{}).(Span)
	return span, ok
}

func withSpan(ctx context.Context, span Span) context.Context {
	return context.WithValue(ctx, spanKey{}, span)
}
