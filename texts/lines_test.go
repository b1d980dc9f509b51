package texts

import (
	"slices"
	"testing"
)

func TestParseAssignment(t *testing.T) {
	for _, c := range []struct {
		line    string
		ok      bool
		op      string
		targets []string
		rhs     string
	}{
		{"x = 20 + 4", true, "=", []string{"x"}, "20 + 4"},
		{"  total += i", true, "+=", []string{"total"}, "i"},
		{"n //= 2", true, "//=", []string{"n"}, "2"},
		{"a, b = b, a", true, "=", []string{"a", "b"}, "b, a"},
		{"(a, b) = pair", true, "=", []string{"a", "b"}, "pair"},
		{"xs[0] = 1", true, "=", nil, "1"},
		{"if x == 1:", false, "", nil, ""},
		{"print(a=1)", false, "", nil, ""},
		{"x <= y", false, "", nil, ""},
		{"y = x != 2", true, "=", []string{"y"}, "x != 2"},
		{`s = "a=b"`, true, "=", []string{"s"}, `"a=b"`},
		{"# x = 1", false, "", nil, ""},
	} {
		got, ok := ParseAssignment(c.line)
		if ok != c.ok {
			t.Fatalf("%q: got %v", c.line, ok)
		}
		if !ok {
			continue
		}
		if got.Op != c.op {
			t.Fatalf("%q: got %q", c.line, got.Op)
		}
		if !slices.Equal(got.Targets, c.targets) {
			t.Fatalf("%q: got %v", c.line, got.Targets)
		}
		if got.Plain != (c.targets != nil) {
			t.Fatalf("%q: got %v", c.line, got.Plain)
		}
		if rhs := c.line[got.RHS:]; rhs != c.rhs {
			t.Fatalf("%q: got %q", c.line, rhs)
		}
	}
}

func TestParseDef(t *testing.T) {
	name, params, ok := ParseDef("  def f(a, b=(1, 2), *args, c: int = 3, **kw):")
	if !ok {
		t.Fatal()
	}
	if name != "f" {
		t.Fatalf("got %q", name)
	}
	if !slices.Equal(params, []string{"a", "b", "args", "c", "kw"}) {
		t.Fatalf("got %v", params)
	}

	name, params, ok = ParseDef("def my_function():")
	if !ok || name != "my_function" || len(params) != 0 {
		t.Fatalf("got %v %v %v", name, params, ok)
	}

	if _, _, ok := ParseDef("define(x)"); ok {
		t.Fatal()
	}
	if _, _, ok := ParseDef("def broken(a, b"); ok {
		t.Fatal()
	}
}

func TestForTargets(t *testing.T) {
	if got := ForTargets("  for i in range(3):"); !slices.Equal(got, []string{"i"}) {
		t.Fatalf("got %v", got)
	}
	if got := ForTargets("for k, v in d.items():"); !slices.Equal(got, []string{"k", "v"}) {
		t.Fatalf("got %v", got)
	}
	if got := ForTargets("x = 1"); got != nil {
		t.Fatalf("got %v", got)
	}
}

var program = []string{
	"def outer(a):",         // 1
	"    x = a",             // 2
	"",                      // 3
	"    def inner(b):",     // 4
	"        return b + x",  // 5
	"    return inner(x)",   // 6
	"",                      // 7
	"y = outer(1)",          // 8
	"def last():",           // 9
	"    pass",              // 10
}

func TestBodyEnd(t *testing.T) {
	if got := BodyEnd(program, 1); got != 8 {
		t.Fatalf("got %d", got)
	}
	if got := BodyEnd(program, 4); got != 6 {
		t.Fatalf("got %d", got)
	}
	if got := BodyEnd(program, 9); got != 11 {
		t.Fatalf("got %d", got)
	}
}

func TestScopes(t *testing.T) {
	got := Scopes(program)
	expected := []int{0, 0, 1, 1, 1, 4, 1, 1, 0, 0, 9}
	if !slices.Equal(got, expected) {
		t.Fatalf("got %v", got)
	}
}

func TestNormalizeTabs(t *testing.T) {
	if got := NormalizeTabs("\tx = 1", 2); got != "  x = 1" {
		t.Fatalf("got %q", got)
	}
}
