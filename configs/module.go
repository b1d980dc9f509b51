package configs

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/reusee/dscope"
	"github.com/reusee/taistep/logs"
)

type Module struct {
	dscope.Module
}

//go:embed schema.cue
var Schema string

var filenames = []string{
	"taistep.cue",
	".taistep.cue",
}

// Discover returns the config files that exist, in precedence order: the
// working directory, the user config dir, then /etc.
func Discover() (paths []string) {
	var dirs []string
	if dir, err := os.Getwd(); err == nil {
		dirs = append(dirs, dir)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, dir)
	}
	dirs = append(dirs, "/etc")

	for _, dir := range dirs {
		for _, filename := range filenames {
			path := filepath.Join(dir, filename)
			if _, err := os.Stat(path); err == nil {
				paths = append(paths, path)
			}
		}
	}
	return
}

func (Module) Loader(
	logger logs.Logger,
) Loader {
	paths := Discover()
	if len(paths) > 0 {
		logger.Info("config file",
			"paths", paths,
		)
	}
	return NewLoader(paths, Schema)
}
