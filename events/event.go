package events

import "fmt"

type Kind uint8

const (
	LineStarted Kind = iota + 1
	LineUpdated
	VariableChanged
	GoToLine
	OutputChunk
	ExecutionError
	ExecutionFinished
)

func (k Kind) String() string {
	switch k {
	case LineStarted:
		return "LineStarted"
	case LineUpdated:
		return "LineUpdated"
	case VariableChanged:
		return "VariableChanged"
	case GoToLine:
		return "GoToLine"
	case OutputChunk:
		return "OutputChunk"
	case ExecutionError:
		return "ExecutionError"
	case ExecutionFinished:
		return "ExecutionFinished"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Event is a notification from the tracing side to the controller side.
// Fields not meaningful for Kind are left zero.
type Event struct {
	Kind Kind

	// LineStarted, LineUpdated, GoToLine
	Line int
	// LineUpdated: rendered text. OutputChunk: output text. ExecutionError: message.
	Text string
	// LineStarted
	Settled bool

	// VariableChanged
	Name    string
	Value   string
	Removed bool

	// ExecutionError
	ErrorKind string
	Trace     string
}

func (e Event) String() string {
	switch e.Kind {
	case LineStarted:
		return fmt.Sprintf("%v(%d, settled=%v)", e.Kind, e.Line, e.Settled)
	case LineUpdated:
		return fmt.Sprintf("%v(%d, %q)", e.Kind, e.Line, e.Text)
	case VariableChanged:
		if e.Removed {
			return fmt.Sprintf("%v(%s removed)", e.Kind, e.Name)
		}
		return fmt.Sprintf("%v(%s = %s)", e.Kind, e.Name, e.Value)
	case GoToLine:
		return fmt.Sprintf("%v(%d)", e.Kind, e.Line)
	case OutputChunk:
		return fmt.Sprintf("%v(%q)", e.Kind, e.Text)
	case ExecutionError:
		return fmt.Sprintf("%v(%s: %s)", e.Kind, e.ErrorKind, e.Text)
	}
	return e.Kind.String()
}

type Emit func(Event)
