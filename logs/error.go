package logs

import (
	"context"
	"fmt"
)

// SpanError is an error that happened inside a span.
type SpanError struct {
	Span Span
	Err  error
}

func (e *SpanError) Error() string {
	return fmt.Sprintf("%v (span %s)", e.Err, e.Span)
}

func (e *SpanError) Unwrap() error {
	return e.Err
}

// WrapSpan attaches the span of ctx to err. err is returned as is without a span.
func WrapSpan(ctx context.Context, err error) error {
	span, ok := SpanFrom(ctx)
	if !ok || err == nil {
		return err
	}
	return &SpanError{
		Span: span,
		Err:  err,
	}
}
