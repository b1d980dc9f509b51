package sessions

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/reusee/taistep/events"
	"github.com/reusee/taistep/logs"
	"github.com/reusee/taistep/modes"
	"github.com/reusee/taistep/relays"
	"github.com/reusee/taistep/sources"
	"github.com/reusee/taistep/steps"
	"github.com/reusee/taistep/taipy"
	"github.com/reusee/taistep/texts"
	"github.com/reusee/taistep/tracers"
)

// Session is one traced run of a program. The program runs on its own
// goroutine; the controller drives it through Next, Peek and Stop, and
// observes it through Events.
type Session struct {
	buffer      *sources.Buffer
	original    []string
	coordinator *steps.Coordinator
	queue       *events.Queue
	logger      logs.Logger
	newSpan     logs.NewSpan
	mode        modes.Mode

	vm        atomic.Pointer[taipy.VM]
	startOnce sync.Once
	done      chan struct{}
}

// Start runs the program in the background. Calls after the first are no-ops.
func (s *Session) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		go s.run(ctx)
	})
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)
	defer s.queue.Close()
	defer s.coordinator.Finish()

	ctx, _ = s.newSpan(ctx, "run")
	s.logger.InfoContext(ctx, "run",
		"path", s.buffer.Path(),
	)

	err := s.exec()
	switch {
	case err == nil:
	case errors.Is(err, steps.ErrQuit),
		errors.Is(err, taipy.ErrAborted),
		s.coordinator.Quitting():
		s.logger.InfoContext(ctx, "stopped")
	default:
		s.report(ctx, err)
	}

	s.queue.Emit(events.Event{
		Kind: events.ExecutionFinished,
	})
	s.logger.InfoContext(ctx, "finished")
}

func (s *Session) exec() error {
	vm, err := taipy.NewVM(s.buffer.Path(), bytes.NewReader(s.buffer.Source()))
	if err != nil {
		return err
	}
	s.vm.Store(vm)
	if s.coordinator.Quitting() {
		return steps.ErrQuit
	}

	tracer := tracers.New(s.buffer, s.coordinator, s.queue.Emit, s.logger)
	relay := relays.NewWriter(s.queue.Emit)
	return relays.Swap(&vm.Stdout, relay, func() error {
		for line, err := range vm.Run {
			if err != nil {
				return err
			}
			if err := tracer.OnLine(line); err != nil {
				return err
			}
			if s.mode == modes.ModeDevelopment {
				s.checkMarkers()
			}
		}
		return nil
	})
}

func (s *Session) checkMarkers() {
	for _, line := range s.buffer.Snapshot() {
		if !texts.Balanced(line.Rendered) {
			s.logger.Warn("unbalanced markers",
				"line", line.Number,
				"text", line.Rendered,
			)
		}
	}
}

func (s *Session) report(ctx context.Context, err error) {
	ev := events.Event{
		Kind:      events.ExecutionError,
		ErrorKind: taipy.KindRuntime,
		Text:      err.Error(),
	}
	var e *taipy.Error
	if errors.As(err, &e) {
		ev.ErrorKind = e.Kind
		ev.Text = e.Msg
		ev.Trace = e.Trace
	}
	s.queue.Emit(ev)
	s.logger.ErrorContext(ctx, "execution failed",
		"error", logs.WrapSpan(ctx, err),
		"trace", ev.Trace,
	)
}

// Next returns the paused step and lets the program continue. It returns
// false once the run finished or the session stopped.
func (s *Session) Next(ctx context.Context) (steps.Step, bool) {
	return s.coordinator.Next(ctx)
}

// Peek returns the paused step without letting the program continue.
func (s *Session) Peek(ctx context.Context) (steps.Step, bool) {
	return s.coordinator.Peek(ctx)
}

// Stop ends the session. It is idempotent and safe to call at any time.
func (s *Session) Stop() {
	s.coordinator.Stop()
	if vm := s.vm.Load(); vm != nil {
		vm.Cancel("stopped")
	}
}

func (s *Session) Events() *events.Queue {
	return s.queue
}

// Original returns the original lines of the traced file.
func (s *Session) Original() []string {
	return s.original
}

func (s *Session) Path() string {
	return s.buffer.Path()
}

func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the program goroutine exits.
func (s *Session) Wait() {
	<-s.done
}
