package taipy

import (
	"go.starlark.net/starlark"
)

const ModuleFunction = "<module>"

// Frame is one activation of the module body or of a user function.
type Frame struct {
	ID       int
	Function string
	// DefLine is the line of the def statement, 0 for the module frame
	DefLine int
	// Line is the line being executed
	Line   int
	Caller *Frame

	enclosing *Frame
	names     []string
	values    starlark.StringDict
	result    starlark.Value
}

type Binding struct {
	Name  string
	Value starlark.Value
}

func (f *Frame) set(name string, value starlark.Value) {
	if _, ok := f.values[name]; !ok {
		f.names = append(f.names, name)
	}
	f.values[name] = value
}

// Lookup returns the local binding of name.
func (f *Frame) Lookup(name string) (starlark.Value, bool) {
	v, ok := f.values[name]
	return v, ok
}

// Locals returns the frame's bindings in order of first assignment.
func (f *Frame) Locals() []Binding {
	ret := make([]Binding, 0, len(f.names))
	for _, name := range f.names {
		ret = append(ret, Binding{
			Name:  name,
			Value: f.values[name],
		})
	}
	return ret
}

// Line is a trace point: the statement at Number is about to execute in Frame.
type Line struct {
	Path   string
	Number int
	Frame  *Frame
	// Stack holds the active frames, outermost first, ending with Frame
	Stack []*Frame
}
