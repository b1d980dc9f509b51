package texts

import (
	"strings"
)

func Indent(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func IsComment(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), "#")
}

func IsDef(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "def ") || strings.HasPrefix(trimmed, "def\t")
}

// NormalizeTabs expands every tab of line to width spaces.
func NormalizeTabs(line string, width int) string {
	if width <= 0 {
		return line
	}
	return strings.ReplaceAll(line, "\t", strings.Repeat(" ", width))
}

// Assignment describes the assignment statement on a line.
type Assignment struct {
	// Op is "=" or an augmented operator like "+="
	Op string
	// Targets holds the assigned names when the left-hand side consists of
	// plain names only
	Targets []string
	// Plain is true when Targets covers the whole left-hand side
	Plain bool
	// RHS is the byte offset where the right-hand side starts
	RHS int
}

var augmentedOps = []string{
	"//=", "**=", "<<=", ">>=",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
}

// ParseAssignment finds the first top-level assignment operator of line.
func ParseAssignment(line string) (ret Assignment, ok bool) {
	end := CodeEnd(line)
	depth := 0
	for i := 0; i < end; i++ {
		c := line[i]
		switch c {
		case '\'', '"':
			i = skipString(line, i) - 1
			continue
		case '(', '[', '{':
			depth++
			continue
		case ')', ']', '}':
			depth--
			continue
		case ':':
			if depth == 0 {
				return ret, false
			}
			continue
		}
		if depth > 0 || c != '=' {
			continue
		}
		if i+1 < end && line[i+1] == '=' {
			// ==
			i++
			continue
		}
		for _, op := range augmentedOps {
			if at := i + 1 - len(op); at >= 0 && line[at:i+1] == op {
				return newAssignment(line, at, op), true
			}
		}
		if i > 0 && strings.IndexByte("!<>", line[i-1]) >= 0 {
			// comparison
			continue
		}
		return newAssignment(line, i, "="), true
	}
	return ret, false
}

func newAssignment(line string, at int, op string) Assignment {
	ret := Assignment{
		Op:  op,
		RHS: at + len(op),
	}
	if ret.RHS < len(line) && line[ret.RHS] == ' ' {
		ret.RHS++
	}
	lhs := strings.TrimSpace(line[:at])
	if LeadingIdent(lhs) == "" && !strings.HasPrefix(lhs, "(") && !strings.HasPrefix(lhs, "[") {
		return ret
	}
	plain := true
	var targets []string
	for _, part := range strings.Split(lhs, ",") {
		part = strings.Trim(strings.TrimSpace(part), "()[] ")
		if part == "" {
			continue
		}
		if !isPlainName(part) {
			plain = false
			continue
		}
		targets = append(targets, part)
	}
	ret.Plain = plain && len(targets) > 0
	if ret.Plain {
		ret.Targets = targets
	}
	return ret
}

func isPlainName(s string) bool {
	toks := identifiers(s)
	return len(toks) == 1 && toks[0].start == 0 && toks[0].end == len(s)
}

// ForTargets returns the loop variable names of a for header line.
func ForTargets(line string) []string {
	trimmed := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(trimmed, "for ") {
		return nil
	}
	rest := trimmed[len("for "):]
	in := strings.Index(rest, " in ")
	if in < 0 {
		return nil
	}
	var ret []string
	for _, part := range strings.Split(rest[:in], ",") {
		part = strings.Trim(strings.TrimSpace(part), "()[] ")
		if isPlainName(part) {
			ret = append(ret, part)
		}
	}
	return ret
}

// ParseDef extracts the function name and parameter names of a definition line.
func ParseDef(line string) (name string, params []string, ok bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if !IsDef(trimmed) {
		return
	}
	rest := strings.TrimLeft(trimmed[len("def"):], " \t")
	open := strings.IndexByte(rest, '(')
	if open < 0 {
		return
	}
	name = strings.TrimSpace(rest[:open])
	if !isPlainName(name) {
		return "", nil, false
	}

	// split the parameter list at top-level commas
	depth := 0
	start := open + 1
	end := CodeEnd(rest)
	var parts []string
loop:
	for i := open + 1; i < end; i++ {
		switch rest[i] {
		case '\'', '"':
			i = skipString(rest, i) - 1
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth == 0 {
				parts = append(parts, rest[start:i])
				ok = true
				break loop
			}
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, rest[start:i])
				start = i + 1
			}
		}
	}
	if !ok {
		return "", nil, false
	}

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if eq := strings.IndexByte(part, '='); eq >= 0 {
			part = part[:eq]
		}
		if colon := strings.IndexByte(part, ':'); colon >= 0 {
			part = part[:colon]
		}
		part = strings.TrimSpace(strings.TrimLeft(part, "*"))
		if part == "" {
			continue
		}
		params = append(params, part)
	}
	return name, params, true
}

// BodyEnd returns the 1-based number of the first line after the body of the
// function defined at defLine. Blank lines do not end a body. The result is
// len(lines)+1 when the body extends to the end of the source.
func BodyEnd(lines []string, defLine int) int {
	if defLine < 1 || defLine > len(lines) {
		return defLine + 1
	}
	indent := Indent(lines[defLine-1])
	for n := defLine + 1; n <= len(lines); n++ {
		line := lines[n-1]
		if IsBlank(line) {
			continue
		}
		if Indent(line) <= indent {
			return n
		}
	}
	return len(lines) + 1
}

// Scopes maps every line to the definition line of its innermost enclosing
// function, 0 for module scope. The result is indexed by line number, with
// the unused element 0.
func Scopes(lines []string) []int {
	ret := make([]int, len(lines)+1)
	type open struct {
		defLine int
		end     int
	}
	var stack []open
	for n := 1; n <= len(lines); n++ {
		for len(stack) > 0 && n >= stack[len(stack)-1].end {
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 {
			ret[n] = stack[len(stack)-1].defLine
		}
		if IsDef(lines[n-1]) {
			stack = append(stack, open{
				defLine: n,
				end:     BodyEnd(lines, n),
			})
		}
	}
	return ret
}
