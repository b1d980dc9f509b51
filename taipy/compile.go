package taipy

import (
	"errors"
	"fmt"

	"go.starlark.net/syntax"
)

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
	Recursion:       true,
}

// Compile parses a program. Parse failures are reported as *Error with kind SyntaxError.
func Compile(name string, source []byte) (*syntax.File, error) {
	file, err := fileOptions.Parse(name, source, 0)
	if err != nil {
		var syntaxErr syntax.Error
		if errors.As(err, &syntaxErr) {
			return nil, &Error{
				Kind: KindSyntax,
				Msg:  syntaxErr.Msg,
				Trace: fmt.Sprintf(
					"  File %q, line %d\n%s",
					name,
					syntaxErr.Pos.Line,
					sourceLine(source, int(syntaxErr.Pos.Line)),
				),
			}
		}
		return nil, &Error{
			Kind: KindSyntax,
			Msg:  err.Error(),
		}
	}

	for _, stmt := range file.Stmts {
		if load, ok := stmt.(*syntax.LoadStmt); ok {
			start, _ := load.Span()
			return nil, &Error{
				Kind:  KindSyntax,
				Msg:   "load statements are not supported",
				Trace: fmt.Sprintf("  File %q, line %d\n", name, start.Line),
			}
		}
	}

	return file, nil
}
