package texts

import "strings"

// Substitute replaces every identifier of text that has an entry in values
// with the marked value. Substitution is done in a single pass over the
// original text, so inserted values are never scanned again.
func Substitute(text string, values map[string]string) (string, bool) {
	if len(values) == 0 {
		return text, false
	}
	var b strings.Builder
	last := 0
	hit := false
	for _, tok := range identifiers(text) {
		value, ok := values[text[tok.start:tok.end]]
		if !ok {
			continue
		}
		b.WriteString(text[last:tok.start])
		b.WriteString(Mark(value))
		last = tok.end
		hit = true
	}
	if !hit {
		return text, false
	}
	b.WriteString(text[last:])
	return b.String(), true
}

// Render produces the pending form of an original line: tracked values are
// substituted into its right-hand side when the line assigns to plain names,
// or into the whole line otherwise. Comment lines and definition lines are
// returned unchanged.
func Render(original string, values map[string]string) (string, bool) {
	if IsComment(original) || IsDef(original) {
		return original, false
	}
	if assignment, ok := ParseAssignment(original); ok && assignment.Plain {
		rhs, hit := Substitute(original[assignment.RHS:], values)
		if !hit {
			return original, false
		}
		return original[:assignment.RHS] + rhs, true
	}
	return Substitute(original, values)
}
