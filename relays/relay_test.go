package relays

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/reusee/taistep/events"
)

func TestWriter(t *testing.T) {
	var got []events.Event
	w := NewWriter(func(ev events.Event) {
		got = append(got, ev)
	})
	fmt.Fprint(w, "hello")
	fmt.Fprint(w, "")
	fmt.Fprintln(w, "world")
	if len(got) != 2 {
		t.Fatalf("got %v", got)
	}
	if got[0].Kind != events.OutputChunk || got[0].Text != "hello" {
		t.Fatalf("got %v", got[0])
	}
	if got[1].Text != "world\n" {
		t.Fatalf("got %v", got[1])
	}
}

func TestSwap(t *testing.T) {
	orig := new(bytes.Buffer)
	var target io.Writer = orig
	relay := new(bytes.Buffer)

	err := Swap(&target, relay, func() error {
		fmt.Fprint(target, "relayed")
		return io.ErrUnexpectedEOF
	})
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("got %v", err)
	}
	if target != orig {
		t.Fatal("not restored")
	}
	if relay.String() != "relayed" || orig.Len() != 0 {
		t.Fatalf("got %q %q", relay.String(), orig.String())
	}
}

func TestSwapRestoresOnPanic(t *testing.T) {
	orig := new(bytes.Buffer)
	var target io.Writer = orig
	func() {
		defer func() {
			if p := recover(); p == nil {
				t.Fatal("expected panic")
			}
		}()
		_ = Swap(&target, io.Discard, func() error {
			panic("boom")
		})
	}()
	if target != orig {
		t.Fatal("not restored")
	}
}
