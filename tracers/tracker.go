package tracers

import (
	"cmp"
	"slices"

	"github.com/reusee/taistep/events"
	"github.com/reusee/taistep/logs"
	"github.com/reusee/taistep/taipy"
	"github.com/reusee/taistep/texts"
)

type binding struct {
	name  string
	value string
}

// frameState is what the tracker knows about one live frame.
type frameState struct {
	id       int
	function string
	defLine  int
	// last line reported in this frame, the defining line of the next changes
	lastLine int
	bindings []*binding
}

func (f *frameState) lookup(name string) *binding {
	for _, b := range f.bindings {
		if b.name == name {
			return b
		}
	}
	return nil
}

func (f *frameState) values() map[string]string {
	ret := make(map[string]string, len(f.bindings))
	for _, b := range f.bindings {
		ret[b.name] = b.value
	}
	return ret
}

// Settlement is the outcome of settling a frame.
type Settlement struct {
	// Line is the defining line of the changes, 0 if nothing changed
	Line    int
	Changed bool
	// Rewritten is true when Line was replaced by a name = value form
	Rewritten bool
}

// Tracker keeps the formatted values of every live frame and turns binding
// changes into annotated lines.
type Tracker struct {
	annotate annotator
	emit     events.Emit
	logger   logs.Logger
	frames   map[int]*frameState
}

func NewTracker(annotate annotator, emit events.Emit, logger logs.Logger) *Tracker {
	return &Tracker{
		annotate: annotate,
		emit:     emit,
		logger:   logger,
		frames:   make(map[int]*frameState),
	}
}

func (t *Tracker) enter(frame *taipy.Frame) (*frameState, bool) {
	if fs, ok := t.frames[frame.ID]; ok {
		return fs, false
	}
	fs := &frameState{
		id:       frame.ID,
		function: frame.Function,
		defLine:  frame.DefLine,
	}
	t.frames[frame.ID] = fs
	return fs, true
}

// Report records line as the last line executed in frame.
func (t *Tracker) Report(frame *taipy.Frame, line int) {
	fs, _ := t.enter(frame)
	fs.lastLine = line
}

// Values returns the tracked values of frame by name.
func (t *Tracker) Values(frameID int) map[string]string {
	fs, ok := t.frames[frameID]
	if !ok {
		return nil
	}
	return fs.values()
}

// Settle compares the bindings of frame with the tracked ones, announces the
// differences and re-renders the lines of frame's scope.
func (t *Tracker) Settle(frame *taipy.Frame, stack []*taipy.Frame) (ret Settlement) {
	t.dropExited(frame, stack)

	fs, entered := t.enter(frame)
	if entered {
		// parameters
		for _, b := range frame.Locals() {
			if trackable(b.Name, b.Value) {
				t.record(fs, b.Name, Format(b.Value))
			}
		}
	} else {
		t.removeMissing(fs, frame)
		ret = t.diff(fs, frame)
	}

	from := 1
	if fs.defLine > 0 {
		from = fs.defLine + 1
	}
	skip := 0
	if ret.Rewritten {
		skip = ret.Line
	}
	t.annotate.renderScope(fs.defLine, from, t.annotate.buffer.Len()+1, fs.values(), skip)

	return ret
}

// record stores value for name and reports whether it differs from the tracked one.
func (t *Tracker) record(fs *frameState, name string, value string) bool {
	b := fs.lookup(name)
	if b != nil && b.value == value {
		return false
	}
	if b == nil {
		fs.bindings = append(fs.bindings, &binding{
			name:  name,
			value: value,
		})
	} else {
		b.value = value
	}
	t.emit(events.Event{
		Kind:  events.VariableChanged,
		Name:  name,
		Value: value,
	})
	return true
}

func (t *Tracker) remove(name string) {
	t.emit(events.Event{
		Kind:    events.VariableChanged,
		Name:    name,
		Removed: true,
	})
}

// dropExited forgets frames no longer on stack, announcing one removal per
// binding. Names still bound in frame are announced again.
func (t *Tracker) dropExited(frame *taipy.Frame, stack []*taipy.Frame) {
	alive := make(map[int]bool, len(stack))
	for _, f := range stack {
		alive[f.ID] = true
	}
	var exited []*frameState
	for id, fs := range t.frames {
		if !alive[id] {
			exited = append(exited, fs)
		}
	}
	if len(exited) == 0 {
		return
	}
	// innermost first
	slices.SortFunc(exited, func(a, b *frameState) int {
		return cmp.Compare(b.id, a.id)
	})

	var removed []string
	for _, fs := range exited {
		for _, b := range fs.bindings {
			t.remove(b.name)
			removed = append(removed, b.name)
		}
		delete(t.frames, fs.id)
		t.logger.Debug("frame exited",
			"function", fs.function,
			"frame", fs.id,
		)
	}

	current, ok := t.frames[frame.ID]
	if !ok {
		return
	}
	slices.Sort(removed)
	for _, name := range slices.Compact(removed) {
		if b := current.lookup(name); b != nil {
			t.emit(events.Event{
				Kind:  events.VariableChanged,
				Name:  b.name,
				Value: b.value,
			})
		}
	}
}

func (t *Tracker) removeMissing(fs *frameState, frame *taipy.Frame) {
	kept := fs.bindings[:0]
	for _, b := range fs.bindings {
		if value, ok := frame.Lookup(b.name); ok && trackable(b.name, value) {
			kept = append(kept, b)
			continue
		}
		t.remove(b.name)
	}
	fs.bindings = kept
}

func (t *Tracker) diff(fs *frameState, frame *taipy.Frame) (ret Settlement) {
	line := fs.lastLine
	original := t.annotate.buffer.Original(line)
	isDef := texts.IsDef(original)
	lead := texts.LeadingIdent(original)
	var targets []string
	if assignment, ok := texts.ParseAssignment(original); ok && assignment.Plain {
		targets = assignment.Targets
	}
	multi := len(targets) > 1
	loopTargets := texts.ForTargets(original)

	for _, b := range frame.Locals() {
		if !trackable(b.Name, b.Value) {
			continue
		}
		value := Format(b.Value)
		changed := t.record(fs, b.Name, value)
		assigned := !isDef && (slices.Contains(targets, b.Name) || lead == b.Name)
		if !changed && !assigned {
			continue
		}

		switch {

		case assigned && multi:
			t.logger.Warn("multiple assignment targets, line not rewritten",
				"line", line,
				"name", b.Name,
			)
			ret.Changed = true

		case assigned:
			indent := original[:texts.Indent(original)]
			t.annotate.set(line, indent+b.Name+" = "+texts.Mark(value))
			ret.Changed = true
			ret.Rewritten = true

		case slices.Contains(loopTargets, b.Name):
			ret.Changed = true

		default:
			t.logger.Debug("binding changed outside its defining line",
				"line", line,
				"name", b.Name,
			)

		}
	}

	if ret.Changed {
		ret.Line = line
	}
	return
}
