package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/reusee/dscope"
	"github.com/reusee/taistep/cmds"
	"github.com/reusee/taistep/configs"
	"github.com/reusee/taistep/consoles"
	"github.com/reusee/taistep/daps"
	"github.com/reusee/taistep/logs"
	"github.com/reusee/taistep/modes"
)

var (
	programFile = cmds.Var[string]("-file", "program to step through")
	dapMode     = cmds.Switch("-dap", "serve the debug adapter protocol")
)

func main() {
	cmds.Execute(os.Args[1:])

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	scope := dscope.New(
		new(consoles.Module),
		new(daps.Module),
		modes.ForProduction(),
	)

	var err error
	scope.Call(func(
		loader configs.Loader,
		logger logs.Logger,
	) {
		if err = loader.Validate(); err != nil {
			return
		}
		if level := configs.First[string](loader, "log_level"); level != "" {
			if err = logs.SetDefaultLevel(level); err != nil {
				return
			}
		}

		switch {

		case *dapMode:
			scope.Call(func(
				listenAndServe daps.ListenAndServe,
			) {
				err = listenAndServe(ctx)
			})

		case *programFile != "":
			scope.Call(func(
				run consoles.Run,
			) {
				err = run(ctx, *programFile, os.Stdin, os.Stdout)
			})

		default:
			err = fmt.Errorf("-file or -dap is required")
		}
	})

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
