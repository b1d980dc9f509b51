package nets

import (
	"context"
	"fmt"
	"net"

	"github.com/reusee/taistep/logs"
	"golang.org/x/net/netutil"
)

// Listen listens on a TCP address, accepting at most max connections at a
// time. Further clients wait in the backlog until a connection closes.
type Listen func(ctx context.Context, addr string, max int) (net.Listener, error)

func (Module) Listen(
	isLocalAddr IsLocalAddr,
	logger logs.Logger,
) Listen {
	return func(ctx context.Context, addr string, max int) (net.Listener, error) {
		local, err := isLocalAddr(addr)
		if err != nil {
			return nil, err
		}
		if !local {
			logger.WarnContext(ctx, "listening on non-local address",
				"addr", addr,
			)
		}

		var config net.ListenConfig
		ln, err := config.Listen(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("listen %s: %w", addr, err)
		}
		logger.InfoContext(ctx, "listening",
			"addr", ln.Addr().String(),
		)
		if max > 0 {
			ln = netutil.LimitListener(ln, max)
		}
		return ln, nil
	}
}
