package tracers

import (
	"strings"

	"github.com/reusee/taistep/taipy"
	"github.com/reusee/taistep/texts"
	"go.starlark.net/starlark"
)

// Format renders a value the way the annotated source shows it.
func Format(value starlark.Value) string {
	if s, ok := value.(starlark.String); ok {
		return texts.Sanitize(quote(string(s)))
	}
	return texts.Sanitize(value.String())
}

var quoteEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"'", `\'`,
)

// quote always uses single quotes.
func quote(s string) string {
	return "'" + quoteEscaper.Replace(s) + "'"
}

// trackable reports whether a binding is shown to the user.
func trackable(name string, value starlark.Value) bool {
	if strings.HasPrefix(name, "__") {
		return false
	}
	switch value.(type) {
	case *taipy.Function, *starlark.Builtin, *starlark.Function:
		return false
	}
	return true
}
