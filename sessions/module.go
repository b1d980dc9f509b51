package sessions

import (
	"github.com/reusee/dscope"
	"github.com/reusee/taistep/cmds"
	"github.com/reusee/taistep/configs"
	"github.com/reusee/taistep/events"
	"github.com/reusee/taistep/logs"
	"github.com/reusee/taistep/modes"
	"github.com/reusee/taistep/sources"
	"github.com/reusee/taistep/steps"
	"github.com/reusee/taistep/vars"
)

type Module struct {
	dscope.Module
	Logs    logs.Module
	Configs configs.Module
}

var tabWidthFlag = cmds.Var[int]("-tab-width", "spaces per tab in rendered lines")

// TabWidth is the number of spaces a tab expands to in rendered lines.
type TabWidth int

func (Module) TabWidth(
	loader configs.Loader,
) TabWidth {
	return TabWidth(vars.FirstNonZero(
		*tabWidthFlag,
		configs.First[int](loader, "tab_width"),
		2,
	))
}

// NewSession loads the program at path. No goroutine is started until Start.
type NewSession func(path string) (*Session, error)

func (Module) NewSession(
	logger logs.Logger,
	newSpan logs.NewSpan,
	tabWidth TabWidth,
	mode modes.Mode,
) NewSession {
	return func(path string) (*Session, error) {
		buffer, err := sources.Load(path, int(tabWidth))
		if err != nil {
			return nil, err
		}
		return &Session{
			buffer:      buffer,
			original:    buffer.OriginalLines(),
			coordinator: steps.NewCoordinator(),
			queue:       events.NewQueue(),
			logger:      logger,
			newSpan:     newSpan,
			mode:        mode,
			done:        make(chan struct{}),
		}, nil
	}
}
