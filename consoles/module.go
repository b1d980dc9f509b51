package consoles

import (
	"github.com/reusee/dscope"
	"github.com/reusee/taistep/cmds"
	"github.com/reusee/taistep/configs"
	"github.com/reusee/taistep/sessions"
)

type Module struct {
	dscope.Module
	Sessions sessions.Module
}

var noColorFlag = cmds.Switch("-no-color", "disable styled output")

var showOriginalFlag = cmds.Switch("-show-original", "print the original text under rewritten lines")

// Color enables styled output.
type Color bool

func (Module) Color(
	loader configs.Loader,
) Color {
	if *noColorFlag {
		return false
	}
	return Color(configs.FirstOr(loader, "console.color", true))
}

// ShowOriginal prints the original text under every rewritten line.
type ShowOriginal bool

func (Module) ShowOriginal(
	loader configs.Loader,
) ShowOriginal {
	if *showOriginalFlag {
		return true
	}
	return ShowOriginal(configs.FirstOr(loader, "console.show_original", false))
}
