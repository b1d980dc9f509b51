package daps

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/reusee/dscope"
	"github.com/reusee/taistep/cmds"
	"github.com/reusee/taistep/configs"
	"github.com/reusee/taistep/logs"
	"github.com/reusee/taistep/nets"
	"github.com/reusee/taistep/sessions"
	"github.com/reusee/taistep/vars"
)

type Module struct {
	dscope.Module
	Sessions sessions.Module
	Nets     nets.Module
}

var addrFlag = cmds.Var[string]("-addr", "debug adapter listen address")

// Addr is the address the debug adapter listens on.
type Addr string

func (Module) Addr(
	loader configs.Loader,
) Addr {
	return Addr(vars.FirstNonZero(
		*addrFlag,
		configs.First[string](loader, "dap.addr"),
		"127.0.0.1:4711",
	))
}

// Serve runs the protocol over one client connection until the client
// disconnects or ctx is done.
type Serve func(ctx context.Context, conn io.ReadWriter) error

func (Module) Serve(
	newSession sessions.NewSession,
	logger logs.Logger,
	newSpan logs.NewSpan,
) Serve {
	return func(ctx context.Context, conn io.ReadWriter) error {
		ctx, _ = newSpan(ctx, "dap")
		server := newServer(conn, newSession, logger)
		return server.serve(ctx)
	}
}

// ListenAndServe accepts clients one at a time.
type ListenAndServe func(ctx context.Context) error

func (Module) ListenAndServe(
	addr Addr,
	listen nets.Listen,
	serve Serve,
	logger logs.Logger,
) ListenAndServe {
	return func(ctx context.Context) error {
		ln, err := listen(ctx, string(addr), 1)
		if err != nil {
			return err
		}
		go func() {
			<-ctx.Done()
			ln.Close()
		}()

		for {
			conn, err := ln.Accept()
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
					return nil
				}
				return err
			}
			logger.InfoContext(ctx, "client connected",
				"remote", conn.RemoteAddr().String(),
			)
			if err := serve(ctx, conn); err != nil {
				logger.ErrorContext(ctx, "serve",
					"error", logs.WrapSpan(ctx, err),
				)
			}
			conn.Close()
			logger.InfoContext(ctx, "client disconnected")
		}
	}
}
