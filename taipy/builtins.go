package taipy

import (
	"fmt"
	"math"

	"github.com/reusee/starlarkutil"
	"go.starlark.net/starlark"
)

// Builtins returns the values predeclared for every program, in addition to
// the starlark universe.
func Builtins() starlark.StringDict {
	return starlark.StringDict{
		"pow":   starlark.NewBuiltin("pow", pow),
		"sqrt":  starlarkutil.MakeFunc("sqrt", math.Sqrt),
		"floor": starlarkutil.MakeFunc("floor", math.Floor),
		"ceil":  starlarkutil.MakeFunc("ceil", math.Ceil),
	}
}

func pow(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var base, exp starlark.Value
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 2, &base, &exp); err != nil {
		return nil, err
	}

	if b, ok := base.(starlark.Int); ok {
		if e, ok := exp.(starlark.Int); ok && e.Sign() >= 0 {
			n, ok := e.Int64()
			if !ok {
				return nil, fmt.Errorf("pow: exponent too large")
			}
			result := starlark.MakeInt(1)
			for ; n > 0; n >>= 1 {
				if n&1 == 1 {
					result = result.Mul(b)
				}
				b = b.Mul(b)
			}
			return result, nil
		}
	}

	b, ok := starlark.AsFloat(base)
	if !ok {
		return nil, fmt.Errorf("pow: unsupported operand type %s", base.Type())
	}
	e, ok := starlark.AsFloat(exp)
	if !ok {
		return nil, fmt.Errorf("pow: unsupported operand type %s", exp.Type())
	}
	return starlark.Float(math.Pow(b, e)), nil
}
