package texts

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type token struct {
	start int
	end   int
	// followed by an opening parenthesis
	call bool
}

var stringPrefixes = map[string]bool{
	"r": true, "b": true, "u": true, "f": true,
	"rb": true, "br": true, "rf": true, "fr": true,
}

var keywords = map[string]bool{
	"and": true, "as": true, "assert": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"load": true, "nonlocal": true, "not": true, "or": true, "pass": true,
	"raise": true, "return": true, "try": true, "while": true, "with": true,
	"yield": true, "True": true, "False": true, "None": true,
}

func IsKeyword(word string) bool {
	return keywords[word]
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// identifiers returns the identifier tokens of text that lie outside string
// literals and trailing comments. Attribute names after a dot and keywords
// are not included.
func identifiers(text string) (ret []token) {
	attribute := false
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {

		case r == '#':
			return

		case r == '\'' || r == '"':
			i = skipString(text, i)
			attribute = false

		case r >= '0' && r <= '9':
			// numeric literal, including forms like 1e5, 0x1f and 1.5
			for i < len(text) {
				c := text[i]
				if c == '.' || c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
					i++
					continue
				}
				break
			}
			attribute = false

		case isIdentStart(r):
			start := i
			i += size
			for i < len(text) {
				r, size := utf8.DecodeRuneInString(text[i:])
				if !isIdentPart(r) {
					break
				}
				i += size
			}
			word := text[start:i]
			if i < len(text) && (text[i] == '\'' || text[i] == '"') && stringPrefixes[strings.ToLower(word)] {
				i = skipString(text, i)
				attribute = false
				continue
			}
			if !attribute && !keywords[word] {
				ret = append(ret, token{
					start: start,
					end:   i,
					call:  i < len(text) && text[i] == '(',
				})
			}
			attribute = false

		case r == '.':
			attribute = true
			i += size

		case r == ' ' || r == '\t':
			i += size

		default:
			attribute = false
			i += size
		}
	}
	return
}

// skipString returns the index just past the string literal starting at i.
// An unterminated literal extends to the end of text.
func skipString(text string, i int) int {
	quote := text[i : i+1]
	if strings.HasPrefix(text[i:], quote+quote+quote) {
		quote = quote + quote + quote
	}
	j := i + len(quote)
	for j < len(text) {
		if text[j] == '\\' {
			j += 2
			continue
		}
		if strings.HasPrefix(text[j:], quote) {
			return j + len(quote)
		}
		j++
	}
	return len(text)
}

// CodeEnd returns the index where the trailing comment of line starts, or len(line).
func CodeEnd(line string) int {
	for i := 0; i < len(line); {
		switch line[i] {
		case '#':
			return i
		case '\'', '"':
			i = skipString(line, i)
		default:
			i++
		}
	}
	return len(line)
}

// LeadingIdent returns the identifier that starts the statement on line, or
// "" if the statement starts with a keyword or a non-identifier.
func LeadingIdent(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	end := 0
	for end < len(trimmed) {
		r, size := utf8.DecodeRuneInString(trimmed[end:])
		if end == 0 && !isIdentStart(r) || end > 0 && !isIdentPart(r) {
			break
		}
		end += size
	}
	word := trimmed[:end]
	if keywords[word] {
		return ""
	}
	return word
}

// CallSites returns the distinct names that appear as plain calls on line, in
// order of appearance.
func CallSites(line string) (ret []string) {
	seen := make(map[string]bool)
	for _, tok := range identifiers(line) {
		if !tok.call {
			continue
		}
		name := line[tok.start:tok.end]
		if seen[name] {
			continue
		}
		seen[name] = true
		ret = append(ret, name)
	}
	return
}
