package tracers

import (
	"github.com/reusee/taistep/events"
	"github.com/reusee/taistep/logs"
	"github.com/reusee/taistep/sources"
	"github.com/reusee/taistep/steps"
	"github.com/reusee/taistep/taipy"
	"github.com/reusee/taistep/texts"
)

// Waiter publishes a step and blocks until the controller consumes it.
type Waiter interface {
	Wait(steps.Step) error
}

// Tracer consumes the trace points of a run, maintains the annotated source
// and publishes a step for every line started and every line settled.
type Tracer struct {
	buffer     *sources.Buffer
	tracker    *Tracker
	signatures *Signatures
	annotate   annotator
	emit       events.Emit
	waiter     Waiter
	logger     logs.Logger

	// last line reported in the traced file, 0 if none is pending settlement
	lastLine int
	calls    []string
}

func New(
	buffer *sources.Buffer,
	waiter Waiter,
	emit events.Emit,
	logger logs.Logger,
) *Tracer {
	annotate := annotator{
		buffer: buffer,
		emit:   emit,
	}
	return &Tracer{
		buffer:     buffer,
		tracker:    NewTracker(annotate, emit, logger),
		signatures: NewSignatures(),
		annotate:   annotate,
		emit:       emit,
		waiter:     waiter,
		logger:     logger,
	}
}

// OnLine handles the trace point line. It blocks while the controller looks
// at the published steps, and returns steps.ErrQuit once stepping stopped.
func (t *Tracer) OnLine(line *taipy.Line) error {
	inFile := line.Path == t.buffer.Path()

	if t.lastLine != 0 {
		settled := t.settle(line, inFile)
		t.lastLine = 0
		if settled.Changed {
			if err := t.publish(settled.Line, true); err != nil {
				return err
			}
		}
	}

	if !inFile {
		return nil
	}

	t.lastLine = line.Number
	t.tracker.Report(line.Frame, line.Number)
	text, _ := t.annotate.pending(line.Number, t.tracker.Values(line.Frame.ID))
	t.annotate.set(line.Number, text)
	if err := t.publish(line.Number, false); err != nil {
		return err
	}

	if original := t.buffer.Original(line.Number); !texts.IsDef(original) {
		t.calls = append(t.calls, texts.CallSites(original)...)
	}
	return nil
}

func (t *Tracer) settle(line *taipy.Line, inFile bool) Settlement {
	ret := t.tracker.Settle(line.Frame, line.Stack)

	if original := t.buffer.Original(t.lastLine); texts.IsDef(original) {
		if name, params, ok := texts.ParseDef(original); ok {
			t.signatures.Put(Signature{
				Name:    name,
				Params:  params,
				DefLine: t.lastLine,
			})
		}
	}

	goTo := 0
	switch {
	case ret.Changed:
		goTo = ret.Line
	case inFile:
		goTo = line.Number
	}
	t.emit(events.Event{
		Kind: events.GoToLine,
		Line: goTo,
	})

	for _, name := range t.calls {
		t.project(name, line.Frame)
	}
	t.calls = t.calls[:0]

	return ret
}

// project renders the body of the called function with the argument values
// known in frame.
func (t *Tracer) project(name string, frame *taipy.Frame) {
	sig, ok := t.signatures.Get(name)
	if !ok {
		return
	}
	known := t.tracker.Values(frame.ID)
	values := make(map[string]string)
	for _, param := range sig.Params {
		if value, ok := known[param]; ok {
			values[param] = value
		}
	}
	end := texts.BodyEnd(t.buffer.OriginalLines(), sig.DefLine)
	t.annotate.renderScope(sig.DefLine, sig.DefLine+1, end, values, 0)
}

func (t *Tracer) publish(line int, settled bool) error {
	t.emit(events.Event{
		Kind:    events.LineStarted,
		Line:    line,
		Settled: settled,
	})
	return t.waiter.Wait(steps.Step{
		Line:    line,
		Text:    t.buffer.Rendered(line),
		Settled: settled,
	})
}
