package taipy

import (
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

type flow uint8

const (
	flowNext flow = iota
	flowBreak
	flowContinue
	flowReturn
)

func (v *VM) execStmts(frame *Frame, stmts []syntax.Stmt) (flow, error) {
	for _, stmt := range stmts {
		f, err := v.execStmt(frame, stmt)
		if err != nil {
			return flowNext, err
		}
		if f != flowNext {
			return f, nil
		}
	}
	return flowNext, nil
}

func (v *VM) execStmt(frame *Frame, stmt syntax.Stmt) (flow, error) {
	if err := v.trace(frame, stmt); err != nil {
		return flowNext, err
	}

	switch stmt := stmt.(type) {

	case *syntax.ExprStmt:
		_, err := v.eval(frame, stmt.X)
		return flowNext, err

	case *syntax.AssignStmt:
		return flowNext, v.assign(frame, stmt)

	case *syntax.DefStmt:
		return flowNext, v.def(frame, stmt)

	case *syntax.ReturnStmt:
		if frame == v.module {
			return flowNext, v.fail(KindSyntax, "'return' outside function")
		}
		frame.result = starlark.None
		if stmt.Result != nil {
			value, err := v.eval(frame, stmt.Result)
			if err != nil {
				return flowNext, err
			}
			frame.result = value
		}
		return flowReturn, nil

	case *syntax.IfStmt:
		cond, err := v.eval(frame, stmt.Cond)
		if err != nil {
			return flowNext, err
		}
		if cond.Truth() {
			return v.execStmts(frame, stmt.True)
		}
		// an elif is a nested IfStmt and traces its own line
		return v.execStmts(frame, stmt.False)

	case *syntax.WhileStmt:
		return v.execWhile(frame, stmt)

	case *syntax.ForStmt:
		return v.execFor(frame, stmt)

	case *syntax.BranchStmt:
		switch stmt.Token {
		case syntax.BREAK:
			return flowBreak, nil
		case syntax.CONTINUE:
			return flowContinue, nil
		}
		// pass
		return flowNext, nil

	}

	return flowNext, v.fail(KindSyntax, "unsupported statement: %T", stmt)
}

func (v *VM) execWhile(frame *Frame, stmt *syntax.WhileStmt) (flow, error) {
	for first := true; ; first = false {
		if !first {
			if err := v.trace(frame, stmt); err != nil {
				return flowNext, err
			}
		}
		cond, err := v.eval(frame, stmt.Cond)
		if err != nil {
			return flowNext, err
		}
		if !cond.Truth() {
			return flowNext, nil
		}
		f, err := v.execStmts(frame, stmt.Body)
		if err != nil {
			return flowNext, err
		}
		switch f {
		case flowBreak:
			return flowNext, nil
		case flowReturn:
			return f, nil
		}
	}
}

// execFor traces the loop header once before the first iteration and once
// after every completed iteration, including the one that ends the loop.
func (v *VM) execFor(frame *Frame, stmt *syntax.ForStmt) (flow, error) {
	iterable, err := v.eval(frame, stmt.X)
	if err != nil {
		return flowNext, err
	}
	iter := starlark.Iterate(iterable)
	if iter == nil {
		return flowNext, v.fail(KindType, "'%s' object is not iterable", iterable.Type())
	}
	defer iter.Done()

	var item starlark.Value
	for iter.Next(&item) {
		if err := v.store(frame, stmt.Vars, item); err != nil {
			return flowNext, err
		}
		f, err := v.execStmts(frame, stmt.Body)
		if err != nil {
			return flowNext, err
		}
		switch f {
		case flowBreak:
			return flowNext, nil
		case flowReturn:
			return f, nil
		}
		if err := v.trace(frame, stmt); err != nil {
			return flowNext, err
		}
	}
	return flowNext, nil
}
