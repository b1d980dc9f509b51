package tracers

import (
	"github.com/reusee/taistep/events"
	"github.com/reusee/taistep/sources"
	"github.com/reusee/taistep/texts"
)

// annotator writes rendered lines to the buffer and announces every change.
type annotator struct {
	buffer *sources.Buffer
	emit   events.Emit
}

func (a annotator) set(line int, text string) bool {
	if !a.buffer.SetRendered(line, text) {
		return false
	}
	a.emit(events.Event{
		Kind: events.LineUpdated,
		Line: line,
		Text: text,
	})
	return true
}

// pending renders the original form of line with values substituted.
func (a annotator) pending(line int, values map[string]string) (string, bool) {
	return texts.Render(a.buffer.Original(line), values)
}

// renderScope re-renders the lines belonging to the function defined at
// scope, within [from, to). Only lines where a value was substituted are
// touched.
func (a annotator) renderScope(scope int, from int, to int, values map[string]string, skip int) {
	if len(values) == 0 {
		return
	}
	for line := from; line < to; line++ {
		if line == skip || a.buffer.Scope(line) != scope {
			continue
		}
		text, hit := a.pending(line, values)
		if !hit {
			continue
		}
		a.set(line, text)
	}
}
