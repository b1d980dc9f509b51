package taipy

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Function is a function defined by the traced program.
type Function struct {
	vm        *VM
	name      string
	defLine   int
	params    []string
	defaults  []starlark.Value
	body      []syntax.Stmt
	enclosing *Frame
}

var _ starlark.Callable = new(Function)

func (f *Function) Name() string {
	return f.name
}

func (f *Function) DefLine() int {
	return f.defLine
}

func (f *Function) Params() []string {
	return f.params
}

func (f *Function) String() string {
	return fmt.Sprintf("<function %s>", f.name)
}

func (f *Function) Type() string {
	return "function"
}

func (f *Function) Freeze() {}

func (f *Function) Truth() starlark.Bool {
	return true
}

func (f *Function) Hash() (uint32, error) {
	return starlark.String(f.name).Hash()
}

func (f *Function) CallInternal(thread *starlark.Thread, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return f.vm.call(f, args, kwargs)
}

func (v *VM) def(frame *Frame, stmt *syntax.DefStmt) error {
	start, _ := stmt.Span()
	fn := &Function{
		vm:        v,
		name:      stmt.Name.Name,
		defLine:   int(start.Line),
		body:      stmt.Body,
		enclosing: frame,
	}
	for _, param := range stmt.Params {
		switch param := param.(type) {
		case *syntax.Ident:
			fn.params = append(fn.params, param.Name)
			fn.defaults = append(fn.defaults, nil)
		case *syntax.BinaryExpr:
			name, ok := param.X.(*syntax.Ident)
			if !ok || param.Op != syntax.EQ {
				return v.fail(KindSyntax, "invalid parameter in %s", fn.name)
			}
			value, err := v.eval(frame, param.Y)
			if err != nil {
				return err
			}
			fn.params = append(fn.params, name.Name)
			fn.defaults = append(fn.defaults, value)
		default:
			return v.fail(KindSyntax, "variadic parameters are not supported in %s", fn.name)
		}
	}
	frame.set(fn.name, fn)
	return nil
}

func (v *VM) call(fn *Function, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if v.stopped {
		return nil, ErrAborted
	}
	if len(v.stack) >= MaxDepth {
		return nil, v.fail(KindRecursion, "maximum recursion depth exceeded")
	}

	if len(args) > len(fn.params) {
		return nil, v.fail(KindType, "%s() takes %d positional arguments but %d were given", fn.name, len(fn.params), len(args))
	}
	values := make([]starlark.Value, len(fn.params))
	copy(values, args)
	for _, kv := range kwargs {
		name, _ := starlark.AsString(kv[0])
		i := -1
		for j, param := range fn.params {
			if param == name {
				i = j
				break
			}
		}
		if i < 0 {
			return nil, v.fail(KindType, "%s() got an unexpected keyword argument '%s'", fn.name, name)
		}
		if values[i] != nil {
			return nil, v.fail(KindType, "%s() got multiple values for argument '%s'", fn.name, name)
		}
		values[i] = kv[1]
	}
	for i, param := range fn.params {
		if values[i] != nil {
			continue
		}
		if fn.defaults[i] == nil {
			return nil, v.fail(KindType, "%s() missing required argument: '%s'", fn.name, param)
		}
		values[i] = fn.defaults[i]
	}

	frame := v.newFrame(fn.name, fn.defLine, v.stack[len(v.stack)-1], fn.enclosing)
	for i, param := range fn.params {
		frame.set(param, values[i])
	}

	v.stack = append(v.stack, frame)
	defer func() {
		v.stack = v.stack[:len(v.stack)-1]
	}()

	f, err := v.execStmts(frame, fn.body)
	if err != nil {
		return nil, err
	}
	if f == flowReturn {
		return frame.result, nil
	}
	return starlark.None, nil
}
