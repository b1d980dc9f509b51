package texts

import "strings"

// zero-width, so a marked line has the same printed width as an unmarked one
const (
	MarkOpen  = "\u200b"
	MarkClose = "\u200c"
)

var sanitizer = strings.NewReplacer(
	MarkOpen, "",
	MarkClose, "",
	"\r", `\r`,
	"\n", `\n`,
)

// Sanitize prepares a formatted value for embedding in a single rendered line.
func Sanitize(value string) string {
	return sanitizer.Replace(value)
}

func Mark(value string) string {
	return MarkOpen + Sanitize(value) + MarkClose
}

var stripper = strings.NewReplacer(
	MarkOpen, "",
	MarkClose, "",
)

func Strip(line string) string {
	return stripper.Replace(line)
}

// Balanced reports whether markers in line alternate open, close, with no nesting.
func Balanced(line string) bool {
	open := false
	for len(line) > 0 {
		i := strings.IndexAny(line, MarkOpen+MarkClose)
		if i < 0 {
			break
		}
		line = line[i:]
		if strings.HasPrefix(line, MarkOpen) {
			if open {
				return false
			}
			open = true
			line = line[len(MarkOpen):]
			continue
		}
		if !open {
			return false
		}
		open = false
		line = line[len(MarkClose):]
	}
	return !open
}

// Spans splits a rendered line into plain and marked segments, in order.
func Spans(line string) (ret []Span) {
	for len(line) > 0 {
		open := strings.Index(line, MarkOpen)
		if open < 0 {
			ret = append(ret, Span{Text: line})
			break
		}
		if open > 0 {
			ret = append(ret, Span{Text: line[:open]})
		}
		rest := line[open+len(MarkOpen):]
		end := strings.Index(rest, MarkClose)
		if end < 0 {
			ret = append(ret, Span{Text: rest, Marked: true})
			break
		}
		ret = append(ret, Span{Text: rest[:end], Marked: true})
		line = rest[end+len(MarkClose):]
	}
	return
}

type Span struct {
	Text   string
	Marked bool
}
