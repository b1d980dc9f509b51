package logs

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestWrapSpan(t *testing.T) {
	err := WrapSpan(context.Background(), io.EOF)
	if err != io.EOF {
		t.Fatalf("got %v", err)
	}

	ctx := withSpan(context.Background(), "abc")
	if WrapSpan(ctx, nil) != nil {
		t.Fatal()
	}
	err = WrapSpan(ctx, io.EOF)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("got %v", err)
	}
	var spanErr *SpanError
	if !errors.As(err, &spanErr) || spanErr.Span != "abc" {
		t.Fatalf("got %v", err)
	}
	if !strings.Contains(err.Error(), "span abc") {
		t.Fatalf("got %v", err)
	}
}
