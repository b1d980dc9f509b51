package taipy

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
)

const (
	KindSyntax    = "SyntaxError"
	KindName      = "NameError"
	KindType      = "TypeError"
	KindValue     = "ValueError"
	KindIndex     = "IndexError"
	KindKey       = "KeyError"
	KindZero      = "ZeroDivisionError"
	KindRecursion = "RecursionError"
	KindRuntime   = "RuntimeError"
)

// Error is a failure of the traced program.
type Error struct {
	Kind  string
	Msg   string
	Trace string
}

func (e *Error) Error() string {
	return e.Kind + ": " + e.Msg
}

// ErrAborted is returned internally when the consumer of Run stops iterating.
var ErrAborted = errors.New("execution aborted")

func classify(err error) (kind string, msg string) {
	var resolveErrs resolve.ErrorList
	if errors.As(err, &resolveErrs) && len(resolveErrs) > 0 {
		msg = resolveErrs[0].Msg
		if strings.HasPrefix(msg, "undefined:") {
			return KindName, "name '" + strings.TrimSpace(strings.TrimPrefix(msg, "undefined:")) + "' is not defined"
		}
		return KindSyntax, msg
	}

	msg = err.Error()
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		msg = evalErr.Msg
	}
	switch {
	case strings.Contains(msg, "division by zero"),
		strings.Contains(msg, "modulo by zero"):
		return KindZero, msg
	case strings.Contains(msg, "out of range"):
		return KindIndex, msg
	case strings.Contains(msg, "not in dict"):
		return KindKey, msg
	case strings.Contains(msg, "unsupported"),
		strings.Contains(msg, "not callable"),
		strings.Contains(msg, "not iterable"),
		strings.Contains(msg, "missing argument"),
		strings.Contains(msg, "unexpected keyword"),
		strings.Contains(msg, "got "),
		strings.Contains(msg, "want "):
		return KindType, msg
	case strings.Contains(msg, "invalid"):
		return KindValue, msg
	}
	return KindRuntime, msg
}

func sourceLine(source []byte, line int) string {
	for i := 1; len(source) > 0; i++ {
		end := bytes.IndexByte(source, '\n')
		if end < 0 {
			end = len(source)
		}
		if i == line {
			return "    " + strings.TrimSpace(string(source[:end])) + "\n"
		}
		if end == len(source) {
			break
		}
		source = source[end+1:]
	}
	return ""
}

// traceback formats the active frames, outermost first.
func (v *VM) traceback() string {
	var b strings.Builder
	b.WriteString("Traceback (most recent call last):\n")
	for _, frame := range v.stack {
		fmt.Fprintf(&b, "  File %q, line %d, in %s\n", v.name, frame.Line, frame.Function)
		b.WriteString(sourceLine(v.source, frame.Line))
	}
	return b.String()
}

// wrap converts err into an *Error carrying the current traceback, unless it
// already is one.
func (v *VM) wrap(err error) error {
	if errors.Is(err, ErrAborted) {
		return ErrAborted
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	kind, msg := classify(err)
	return &Error{
		Kind:  kind,
		Msg:   msg,
		Trace: v.traceback(),
	}
}

func (v *VM) fail(kind string, format string, args ...any) error {
	return &Error{
		Kind:  kind,
		Msg:   fmt.Sprintf(format, args...),
		Trace: v.traceback(),
	}
}
