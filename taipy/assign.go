package taipy

import (
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

var augmented = map[syntax.Token]syntax.Token{
	syntax.PLUS_EQ:       syntax.PLUS,
	syntax.MINUS_EQ:      syntax.MINUS,
	syntax.STAR_EQ:       syntax.STAR,
	syntax.SLASH_EQ:      syntax.SLASH,
	syntax.SLASHSLASH_EQ: syntax.SLASHSLASH,
	syntax.PERCENT_EQ:    syntax.PERCENT,
	syntax.AMP_EQ:        syntax.AMP,
	syntax.PIPE_EQ:       syntax.PIPE,
	syntax.CIRCUMFLEX_EQ: syntax.CIRCUMFLEX,
	syntax.LTLT_EQ:       syntax.LTLT,
	syntax.GTGT_EQ:       syntax.GTGT,
}

func (v *VM) assign(frame *Frame, stmt *syntax.AssignStmt) error {
	if stmt.Op == syntax.EQ {
		value, err := v.eval(frame, stmt.RHS)
		if err != nil {
			return err
		}
		return v.store(frame, stmt.LHS, value)
	}

	op, ok := augmented[stmt.Op]
	if !ok {
		return v.fail(KindSyntax, "unsupported assignment operator %s", stmt.Op)
	}
	current, err := v.eval(frame, stmt.LHS)
	if err != nil {
		return err
	}
	operand, err := v.eval(frame, stmt.RHS)
	if err != nil {
		return err
	}
	value, err := starlark.Binary(op, current, operand)
	if err != nil {
		return v.wrap(err)
	}
	return v.store(frame, stmt.LHS, value)
}

func (v *VM) store(frame *Frame, target syntax.Expr, value starlark.Value) error {
	switch target := target.(type) {

	case *syntax.Ident:
		frame.set(target.Name, value)
		return nil

	case *syntax.ParenExpr:
		return v.store(frame, target.X, value)

	case *syntax.TupleExpr:
		return v.unpack(frame, target.List, value)

	case *syntax.ListExpr:
		return v.unpack(frame, target.List, value)

	case *syntax.IndexExpr:
		container, err := v.eval(frame, target.X)
		if err != nil {
			return err
		}
		key, err := v.eval(frame, target.Y)
		if err != nil {
			return err
		}
		switch container := container.(type) {
		case starlark.HasSetKey:
			if err := container.SetKey(key, value); err != nil {
				return v.wrap(err)
			}
			return nil
		case starlark.HasSetIndex:
			i, err := starlark.AsInt32(key)
			if err != nil {
				return v.fail(KindType, "%s indices must be integers, not %s", container.Type(), key.Type())
			}
			n := container.Len()
			if i < 0 {
				i += n
			}
			if i < 0 || i >= n {
				return v.fail(KindIndex, "%s index out of range", container.Type())
			}
			if err := container.SetIndex(i, value); err != nil {
				return v.wrap(err)
			}
			return nil
		}
		return v.fail(KindType, "'%s' object does not support item assignment", container.Type())

	case *syntax.DotExpr:
		object, err := v.eval(frame, target.X)
		if err != nil {
			return err
		}
		if setter, ok := object.(starlark.HasSetField); ok {
			if err := setter.SetField(target.Name.Name, value); err != nil {
				return v.wrap(err)
			}
			return nil
		}
		return v.fail(KindType, "'%s' object attribute '%s' is read-only", object.Type(), target.Name.Name)

	}

	return v.fail(KindSyntax, "cannot assign to %T", target)
}

func (v *VM) unpack(frame *Frame, targets []syntax.Expr, value starlark.Value) error {
	iterable, ok := value.(starlark.Iterable)
	if !ok {
		return v.fail(KindType, "cannot unpack non-iterable %s object", value.Type())
	}
	var items []starlark.Value
	iter := iterable.Iterate()
	var item starlark.Value
	for iter.Next(&item) {
		items = append(items, item)
	}
	iter.Done()
	if len(items) != len(targets) {
		if len(items) > len(targets) {
			return v.fail(KindValue, "too many values to unpack (expected %d)", len(targets))
		}
		return v.fail(KindValue, "not enough values to unpack (expected %d, got %d)", len(targets), len(items))
	}
	for i, target := range targets {
		if err := v.store(frame, target, items[i]); err != nil {
			return err
		}
	}
	return nil
}
