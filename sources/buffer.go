package sources

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/reusee/taistep/texts"
)

// Buffer holds the original lines of a traced file and their rendered forms.
// Line numbers are 1-based.
type Buffer struct {
	path     string
	source   []byte
	original []string
	rendered []string
	scopes   []int
}

func New(path string, source []byte, tabWidth int) *Buffer {
	content := strings.ReplaceAll(string(source), "\r\n", "\n")
	content = strings.TrimSuffix(content, "\n")
	var lines []string
	if content != "" {
		lines = strings.Split(content, "\n")
	}
	for i, line := range lines {
		lines[i] = texts.NormalizeTabs(line, tabWidth)
	}
	return &Buffer{
		path:     path,
		source:   source,
		original: lines,
		rendered: slices.Clone(lines),
		scopes:   texts.Scopes(lines),
	}
}

func Load(path string, tabWidth int) (*Buffer, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return New(path, content, tabWidth), nil
}

func (b *Buffer) Path() string {
	return b.path
}

// Source returns the file content as read, before tab normalization.
func (b *Buffer) Source() []byte {
	return b.source
}

func (b *Buffer) Len() int {
	return len(b.original)
}

func (b *Buffer) Original(line int) string {
	if line < 1 || line > len(b.original) {
		return ""
	}
	return b.original[line-1]
}

// OriginalLines returns the original lines. The slice must not be modified.
func (b *Buffer) OriginalLines() []string {
	return b.original
}

func (b *Buffer) Rendered(line int) string {
	if line < 1 || line > len(b.rendered) {
		return ""
	}
	return b.rendered[line-1]
}

// SetRendered replaces the rendered form of line and reports whether it changed.
func (b *Buffer) SetRendered(line int, text string) bool {
	if line < 1 || line > len(b.rendered) {
		return false
	}
	if b.rendered[line-1] == text {
		return false
	}
	b.rendered[line-1] = text
	return true
}

// Scope returns the definition line of the function enclosing line, 0 for module scope.
func (b *Buffer) Scope(line int) int {
	if line < 1 || line >= len(b.scopes) {
		return 0
	}
	return b.scopes[line]
}

type Line struct {
	Number   int
	Original string
	Rendered string
}

func (b *Buffer) Snapshot() []Line {
	ret := make([]Line, 0, len(b.original))
	for i, original := range b.original {
		ret = append(ret, Line{
			Number:   i + 1,
			Original: original,
			Rendered: b.rendered[i],
		})
	}
	return ret
}
