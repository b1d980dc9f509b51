package tracers

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/taistep/events"
	"github.com/reusee/taistep/logs"
	"github.com/reusee/taistep/sources"
	"github.com/reusee/taistep/steps"
	"github.com/reusee/taistep/taipy"
	"github.com/reusee/taistep/texts"
)

type recorder struct {
	steps []steps.Step
	// stop after this many steps, 0 for never
	limit int
}

func (r *recorder) Wait(step steps.Step) error {
	r.steps = append(r.steps, step)
	if r.limit > 0 && len(r.steps) >= r.limit {
		return steps.ErrQuit
	}
	return nil
}

func testLogger() (logger logs.Logger) {
	dscope.New(new(logs.Module)).Fork(
		func() logs.Writer {
			return io.Discard
		},
	).Call(func(l logs.Logger) {
		logger = l
	})
	return
}

type traced struct {
	steps  []steps.Step
	events []events.Event
	buffer *sources.Buffer
	output string
}

func trace(t *testing.T, src string, limit int) traced {
	t.Helper()
	buffer := sources.New("test.py", []byte(src), 2)
	var evs []events.Event
	emit := func(ev events.Event) {
		evs = append(evs, ev)
	}
	waiter := &recorder{
		limit: limit,
	}
	tracer := New(buffer, waiter, emit, testLogger())

	vm, err := taipy.NewVM("test.py", bytes.NewReader(buffer.Source()))
	if err != nil {
		t.Fatal(err)
	}
	out := new(bytes.Buffer)
	vm.Stdout = out
	for line, err := range vm.Run {
		if err != nil {
			t.Fatal(err)
		}
		if err := tracer.OnLine(line); err != nil {
			break
		}
	}

	return traced{
		steps:  waiter.steps,
		events: evs,
		buffer: buffer,
		output: out.String(),
	}
}

// show replaces markers with visible brackets.
func show(s string) string {
	s = strings.ReplaceAll(s, texts.MarkOpen, "⟨")
	s = strings.ReplaceAll(s, texts.MarkClose, "⟩")
	return strings.TrimSpace(s)
}

type expectedStep struct {
	line int
	text string
}

func checkSteps(t *testing.T, got []steps.Step, expected []expectedStep) {
	t.Helper()
	for i, e := range expected {
		if i >= len(got) {
			t.Fatalf("missing step %d: %v", i, e)
		}
		if got[i].Line != e.line || show(got[i].Text) != e.text {
			t.Fatalf("step %d: got (%d, %q), expected (%d, %q)", i, got[i].Line, show(got[i].Text), e.line, e.text)
		}
		if !texts.Balanced(got[i].Text) {
			t.Fatalf("step %d: unbalanced %q", i, got[i].Text)
		}
	}
}

func TestFunctions(t *testing.T) {
	res := trace(t, `def my_function():
    x = 20 + 4
    y = x * 2
    z = y / 3
    print(z)


def my_function_2():
    a = "Hello"
    b = a + " World"
    print(b)


my_function()
my_function_2()
`, 0)

	expected := []expectedStep{
		{1, "def my_function():"},
		{8, "def my_function_2():"},
		{14, "my_function()"},
		{2, "x = 20 + 4"},
		{2, "x = ⟨24⟩"},
		{3, "y = ⟨24⟩ * 2"},
		{3, "y = ⟨48⟩"},
		{4, "z = ⟨48⟩ / 3"},
		{4, "z = ⟨16.0⟩"},
		{5, "print(⟨16.0⟩)"},
		{15, "my_function_2()"},
		{9, `a = "Hello"`},
		{9, "a = ⟨'Hello'⟩"},
		{10, `b = ⟨'Hello'⟩ + " World"`},
		{10, "b = ⟨'Hello World'⟩"},
		{11, "print(⟨'Hello World'⟩)"},
	}
	checkSteps(t, res.steps, expected)
	if len(res.steps) != len(expected) {
		t.Fatalf("got %d steps", len(res.steps))
	}
	if res.output != "16.0\nHello World\n" {
		t.Fatalf("got %q", res.output)
	}

	settled := 0
	for _, step := range res.steps {
		if step.Settled {
			settled++
		}
	}
	if settled != 5 {
		t.Fatalf("got %d", settled)
	}
}

func TestLoop(t *testing.T) {
	res := trace(t, `def my_loop(repeat):
    for i in range(repeat):
        x = 2
        total = i + x + 1
        print(total)


my_loop(4)
`, 0)

	expected := []expectedStep{
		{1, "def my_loop(repeat):"},
		{8, "my_loop(4)"},
		{2, "for i in range(⟨4⟩):"},
	}
	for i := range 4 {
		if i > 0 {
			expected = append(expected, expectedStep{2, fmt.Sprintf("for ⟨%d⟩ in range(⟨4⟩):", i-1)})
		}
		expected = append(expected,
			expectedStep{2, fmt.Sprintf("for ⟨%d⟩ in range(⟨4⟩):", i)},
			expectedStep{3, "x = 2"},
			expectedStep{3, "x = ⟨2⟩"},
			expectedStep{4, fmt.Sprintf("total = ⟨%d⟩ + ⟨2⟩ + 1", i)},
			expectedStep{4, fmt.Sprintf("total = ⟨%d⟩", i+3)},
			expectedStep{5, fmt.Sprintf("print(⟨%d⟩)", i+3)},
		)
	}
	// the header is visited once more when the range is exhausted
	expected = append(expected, expectedStep{2, "for ⟨3⟩ in range(⟨4⟩):"})
	checkSteps(t, res.steps, expected)
	if len(res.steps) != len(expected) {
		t.Fatalf("got %d steps", len(res.steps))
	}

	var totals []string
	for _, ev := range res.events {
		if ev.Kind == events.VariableChanged && ev.Name == "total" && !ev.Removed {
			totals = append(totals, ev.Value)
		}
	}
	if strings.Join(totals, ",") != "3,4,5,6" {
		t.Fatalf("got %v", totals)
	}
}

func TestModuleLevel(t *testing.T) {
	res := trace(t, `x = 20 + 4
print(x)
`, 0)
	checkSteps(t, res.steps, []expectedStep{
		{1, "x = 20 + 4"},
		{1, "x = ⟨24⟩"},
		{2, "print(⟨24⟩)"},
	})
	if got := show(res.buffer.Rendered(1)); got != "x = ⟨24⟩" {
		t.Fatalf("got %q", got)
	}
}

func TestRemovalOnReturn(t *testing.T) {
	res := trace(t, `def f(a):
    b = a + 1
    return b

r = f(1)
s = r
`, 0)

	removed := make(map[string]int)
	for _, ev := range res.events {
		if ev.Kind == events.VariableChanged && ev.Removed {
			removed[ev.Name]++
		}
	}
	if len(removed) != 2 || removed["a"] != 1 || removed["b"] != 1 {
		t.Fatalf("got %v", removed)
	}

	// the caller's assignment settles after the callee returns
	found := false
	for _, step := range res.steps {
		if step.Line == 5 && step.Settled && show(step.Text) == "r = ⟨2⟩" {
			found = true
		}
	}
	if !found {
		t.Fatalf("got %v", res.steps)
	}
}

func TestShadowedNameAnnouncedAgain(t *testing.T) {
	res := trace(t, `def f(x):
    return x

x = 5
f(1)
y = x
`, 0)
	var xs []string
	for _, ev := range res.events {
		if ev.Kind != events.VariableChanged || ev.Name != "x" {
			continue
		}
		if ev.Removed {
			xs = append(xs, "-")
		} else {
			xs = append(xs, ev.Value)
		}
	}
	if strings.Join(xs, ",") != "5,1,-,5" {
		t.Fatalf("got %v", xs)
	}
}

func TestProjection(t *testing.T) {
	res := trace(t, `def double(n):
    return n * 2

v = double(21)
`, 3)
	// stopped at the now-at step of line 2, body already projected
	last := res.steps[len(res.steps)-1]
	if last.Line != 2 || show(last.Text) != "return ⟨21⟩ * 2" {
		t.Fatalf("got %v", last)
	}
}

func TestNoVariables(t *testing.T) {
	src := `print("hello")
print(1 + 2)
`
	res := trace(t, src, 0)
	for i, line := range res.buffer.Snapshot() {
		if line.Rendered != line.Original {
			t.Fatalf("line %d: got %q", i+1, line.Rendered)
		}
	}
	for _, step := range res.steps {
		if step.Settled {
			t.Fatalf("got %v", step)
		}
	}
	if len(res.steps) != 2 {
		t.Fatalf("got %v", res.steps)
	}
}

func TestMultipleTargets(t *testing.T) {
	res := trace(t, `a, b = 1, 2
c = a + b
`, 0)
	checkSteps(t, res.steps, []expectedStep{
		{1, "a, b = 1, 2"},
		{1, "a, b = 1, 2"},
		{2, "c = ⟨1⟩ + ⟨2⟩"},
	})
	if !res.steps[1].Settled {
		t.Fatalf("got %v", res.steps[1])
	}
}

func TestQuitStopsTracing(t *testing.T) {
	res := trace(t, `x = 1
x = 2
x = 3
`, 2)
	if len(res.steps) != 2 {
		t.Fatalf("got %v", res.steps)
	}
}

func TestGoToLine(t *testing.T) {
	res := trace(t, `x = 1
print(x)
`, 0)
	var lines []int
	for _, ev := range res.events {
		if ev.Kind == events.GoToLine {
			lines = append(lines, ev.Line)
		}
	}
	if len(lines) != 1 || lines[0] != 1 {
		t.Fatalf("got %v", lines)
	}
}
