package relays

import (
	"io"

	"github.com/reusee/taistep/events"
)

// Writer turns writes into OutputChunk events.
type Writer struct {
	emit events.Emit
}

var _ io.Writer = new(Writer)

func NewWriter(emit events.Emit) *Writer {
	return &Writer{
		emit: emit,
	}
}

func (w *Writer) Write(p []byte) (int, error) {
	if len(p) > 0 {
		w.emit(events.Event{
			Kind: events.OutputChunk,
			Text: string(p),
		})
	}
	return len(p), nil
}

// Swap points target at w while fn runs. The previous writer is restored on
// every exit path, including panics.
func Swap(target *io.Writer, w io.Writer, fn func() error) error {
	prev := *target
	*target = w
	defer func() {
		*target = prev
	}()
	return fn()
}
