package configs

import (
	"testing"
)

func TestFirst(t *testing.T) {
	loader := NewLoader([]string{"testdata/test.cue"}, Schema)

	if width := First[int](loader, "tab_width"); width != 4 {
		t.Fatalf("got %v", width)
	}
	if color := First[bool](loader, "console.color"); color {
		t.Fatalf("got %v", color)
	}
	if addr := First[string](loader, "dap.addr"); addr != "" {
		t.Fatalf("got %v", addr)
	}
}

func TestFirstOr(t *testing.T) {
	loader := NewLoader([]string{"testdata/test.cue"}, Schema)
	if width := FirstOr(loader, "tab_width", 2); width != 4 {
		t.Fatalf("got %v", width)
	}
	if show := FirstOr(loader, "console.show_original", true); !show {
		t.Fatalf("got %v", show)
	}
}
