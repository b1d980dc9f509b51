package logs

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"github.com/reusee/taistep/cmds"
	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

var level = new(slog.LevelVar)

// set when a level flag was given on the command line
var levelFromFlag atomic.Bool

var jsonFlag = cmds.Switch("-log-json", "write logs as JSON")

func init() {
	for _, l := range []slog.Level{
		slog.LevelDebug,
		slog.LevelInfo,
		slog.LevelWarn,
		slog.LevelError,
	} {
		name := strings.ToLower(l.String())
		cmds.Define("-log-"+name, cmds.Func(func() {
			level.Set(l)
			levelFromFlag.Store(true)
		}).Desc("set log level to "+name))
	}
	cmds.Define("-log-level", cmds.Func(func(l slog.Level) {
		level.Set(l)
		levelFromFlag.Store(true)
	}).Desc("set log level by name"))
}

// SetLevel sets the level of every logger by name: debug, info, warn or error.
func SetLevel(name string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return fmt.Errorf("log level %q: %w", name, err)
	}
	level.Set(l)
	return nil
}

// SetDefaultLevel is SetLevel for values from config files. Level flags take
// precedence, so it does nothing after one was given.
func SetDefaultLevel(name string) error {
	if levelFromFlag.Load() {
		return nil
	}
	return SetLevel(name)
}

type Logger = *slog.Logger

func (Module) Logger(
	writer Writer,
) Logger {
	var handlers []slog.Handler

	// records go to the journal only when running as a systemd service
	var terminalHandler slog.Handler
	if !isSystemdService() {
		options := &slog.HandlerOptions{
			Level: level,
		}
		if *jsonFlag {
			terminalHandler = slog.NewJSONHandler(writer, options)
		} else {
			terminalHandler = slog.NewTextHandler(writer, options)
		}
		handlers = append(handlers, terminalHandler)
	}

	journalHandler, err := slogjournal.NewHandler(&slogjournal.Options{
		Level: level,
		ReplaceGroup: func(key string) string {
			return toJournalKey(key)
		},
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			a.Key = toJournalKey(a.Key)
			return a
		},
	})
	if err != nil {
		if terminalHandler != nil {
			record := slog.NewRecord(time.Now(), slog.LevelDebug, "no systemd journal", 0)
			record.Add("error", err)
			if terminalHandler.Enabled(context.Background(), record.Level) {
				_ = terminalHandler.Handle(context.Background(), record)
			}
		}
	} else {
		handlers = append(handlers, journalHandler)
	}

	return slog.New(&Handler{
		Handler: slogmulti.Fanout(handlers...),
	})
}

// toJournalKey maps an attribute key to the journal field alphabet.
func toJournalKey(str string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		}
		return '_'
	}, str)
}

func isSystemdService() bool {
	content, err := os.ReadFile("/proc/self/cgroup")
	if err != nil {
		return false
	}
	return strings.HasSuffix(path.Dir(cgroupPath(content)), ".service")
}

// cgroupPath returns the unified hierarchy path, or the first one listed.
func cgroupPath(content []byte) (ret string) {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		// hierarchy-ID:controller-list:cgroup-path
		parts := strings.SplitN(scanner.Text(), ":", 3)
		if len(parts) != 3 {
			continue
		}
		if parts[0] == "0" && parts[1] == "" {
			return parts[2]
		}
		if ret == "" {
			ret = parts[2]
		}
	}
	return
}
