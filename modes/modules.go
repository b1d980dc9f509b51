package modes

import (
	"testing"

	"github.com/reusee/dscope"
)

// ModuleForProduction is used by commands. T is nil.
type ModuleForProduction struct {
	dscope.Module
}

func ForProduction() ModuleForProduction {
	return ModuleForProduction{}
}

func (ModuleForProduction) T() *testing.T {
	return nil
}

func (ModuleForProduction) Mode() Mode {
	return ModeProduction
}

// ModuleForTest runs in development mode, where sessions check the rendered
// source after every line.
type ModuleForTest struct {
	dscope.Module
	t *testing.T
}

func ForTest(t *testing.T) ModuleForTest {
	return ModuleForTest{
		t: t,
	}
}

func (m ModuleForTest) T() *testing.T {
	return m.t
}

func (ModuleForTest) Mode() Mode {
	return ModeDevelopment
}
