package taipy

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"sync/atomic"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// MaxDepth bounds the number of nested user function calls.
const MaxDepth = 500

type VM struct {
	// Stdout receives the output of print
	Stdout io.Writer

	name        string
	source      []byte
	file        *syntax.File
	thread      *starlark.Thread
	predeclared starlark.StringDict

	module    *Frame
	stack     []*Frame
	nextID    int
	yield     func(*Line, error) bool
	stopped   bool
	cancelled atomic.Bool
}

func NewVM(name string, source io.Reader) (*VM, error) {
	content, err := io.ReadAll(source)
	if err != nil {
		return nil, err
	}
	file, err := Compile(name, content)
	if err != nil {
		return nil, err
	}

	vm := &VM{
		Stdout:      os.Stdout,
		name:        name,
		source:      content,
		file:        file,
		predeclared: Builtins(),
	}
	vm.thread = &starlark.Thread{
		Name: name,
		Print: func(_ *starlark.Thread, msg string) {
			fmt.Fprintln(vm.Stdout, msg)
		},
	}

	return vm, nil
}

// Def binds a predeclared value visible to the whole program.
func (v *VM) Def(name string, value starlark.Value) {
	v.predeclared[name] = value
}

// Get returns a module level binding. Valid after Run returns.
func (v *VM) Get(name string) (starlark.Value, bool) {
	if v.module == nil {
		return nil, false
	}
	return v.module.Lookup(name)
}

// Cancel stops a running program. It is safe to call from any goroutine.
func (v *VM) Cancel(reason string) {
	v.cancelled.Store(true)
	v.thread.Cancel(reason)
}

// Run executes the program, calling yield before every statement. A failure
// of the program is delivered as a final call with a nil line. Once yield
// returns false, execution unwinds and yield is not called again.
func (v *VM) Run(yield func(*Line, error) bool) {
	v.yield = yield
	v.module = v.newFrame(ModuleFunction, 0, nil, nil)
	v.stack = append(v.stack[:0], v.module)
	_, err := v.execStmts(v.module, v.file.Stmts)
	if err == nil || v.stopped || v.cancelled.Load() {
		return
	}
	yield(nil, v.wrap(err))
}

func (v *VM) newFrame(function string, defLine int, caller *Frame, enclosing *Frame) *Frame {
	v.nextID++
	return &Frame{
		ID:        v.nextID,
		Function:  function,
		DefLine:   defLine,
		Caller:    caller,
		enclosing: enclosing,
		values:    make(starlark.StringDict),
	}
}

func (v *VM) trace(frame *Frame, node syntax.Node) error {
	start, _ := node.Span()
	frame.Line = int(start.Line)
	if v.stopped {
		return ErrAborted
	}
	if v.cancelled.Load() {
		v.stopped = true
		return ErrAborted
	}
	line := &Line{
		Path:   v.name,
		Number: frame.Line,
		Frame:  frame,
		Stack:  slices.Clone(v.stack),
	}
	if !v.yield(line, nil) {
		v.stopped = true
		return ErrAborted
	}
	return nil
}

// env builds the name environment of expressions evaluated in frame.
func (v *VM) env(frame *Frame) starlark.StringDict {
	env := make(starlark.StringDict, len(v.predeclared)+len(v.module.values)+len(frame.values))
	maps.Copy(env, v.predeclared)
	maps.Copy(env, v.module.values)
	var chain []*Frame
	for f := frame.enclosing; f != nil && f != v.module; f = f.enclosing {
		chain = append(chain, f)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		maps.Copy(env, chain[i].values)
	}
	if frame != v.module {
		maps.Copy(env, frame.values)
	}
	return env
}

func (v *VM) eval(frame *Frame, expr syntax.Expr) (starlark.Value, error) {
	value, err := starlark.EvalExprOptions(fileOptions, v.thread, expr, v.env(frame))
	if err != nil {
		return nil, v.wrap(err)
	}
	return value, nil
}
