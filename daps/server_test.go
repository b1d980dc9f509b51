package daps

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-dap"
	"github.com/reusee/dscope"
	"github.com/reusee/taistep/configs"
	"github.com/reusee/taistep/logs"
	"github.com/reusee/taistep/modes"
	"github.com/stretchr/testify/require"
)

type client struct {
	t        *testing.T
	conn     net.Conn
	seq      int
	messages chan dap.Message
	output   strings.Builder
}

func newClient(t *testing.T, conn net.Conn) *client {
	c := &client{
		t:        t,
		conn:     conn,
		messages: make(chan dap.Message, 1024),
	}
	go func() {
		defer close(c.messages)
		reader := bufio.NewReader(conn)
		for {
			msg, err := dap.ReadProtocolMessage(reader)
			if err != nil {
				return
			}
			c.messages <- msg
		}
	}()
	return c
}

func (c *client) request(command string) dap.Request {
	c.seq++
	return dap.Request{
		ProtocolMessage: dap.ProtocolMessage{
			Seq:  c.seq,
			Type: "request",
		},
		Command: command,
	}
}

func (c *client) send(msg dap.Message) {
	require.NoError(c.t, dap.WriteProtocolMessage(c.conn, msg))
}

// next returns the next message that is not an output event.
func (c *client) next() dap.Message {
	for {
		select {
		case msg, ok := <-c.messages:
			require.True(c.t, ok, "connection closed")
			if output, ok := msg.(*dap.OutputEvent); ok {
				c.output.WriteString(output.Body.Output)
				continue
			}
			return msg
		case <-time.After(time.Second * 10):
			c.t.Fatal("timeout")
		}
	}
}

func testServe(t *testing.T, fn func(c *client)) {
	dscope.New(
		new(Module),
		modes.ForTest(t),
	).Fork(
		func() logs.Writer {
			return io.Discard
		},
		func() configs.Loader {
			return configs.NewLoader(nil, configs.Schema)
		},
	).Call(func(
		serve Serve,
	) {
		serverConn, clientConn := net.Pipe()
		served := make(chan error, 1)
		go func() {
			served <- serve(context.Background(), serverConn)
			serverConn.Close()
		}()
		c := newClient(t, clientConn)
		fn(c)

		c.send(&dap.DisconnectRequest{
			Request: c.request("disconnect"),
		})
		for {
			msg := c.next()
			if _, ok := msg.(*dap.DisconnectResponse); ok {
				break
			}
		}
		select {
		case err := <-served:
			require.NoError(t, err)
		case <-time.After(time.Second * 10):
			t.Fatal("serve not returned")
		}
		clientConn.Close()
	})
}

func writeProgram(t *testing.T, src string) string {
	path := filepath.Join(t.TempDir(), "prog.py")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

func launch(c *client, program string) {
	c.send(&dap.InitializeRequest{
		Request: c.request("initialize"),
	})
	initResp, ok := c.next().(*dap.InitializeResponse)
	require.True(c.t, ok)
	require.True(c.t, initResp.Success)
	require.True(c.t, initResp.Body.SupportsConfigurationDoneRequest)
	_, ok = c.next().(*dap.InitializedEvent)
	require.True(c.t, ok)

	args, err := json.Marshal(map[string]string{
		"program": program,
	})
	require.NoError(c.t, err)
	c.send(&dap.LaunchRequest{
		Request:   c.request("launch"),
		Arguments: args,
	})
	launchResp, ok := c.next().(*dap.LaunchResponse)
	require.True(c.t, ok)
	require.True(c.t, launchResp.Success)
}

func (c *client) stackTop() dap.StackFrame {
	c.send(&dap.StackTraceRequest{
		Request: c.request("stackTrace"),
		Arguments: dap.StackTraceArguments{
			ThreadId: threadID,
		},
	})
	resp, ok := c.next().(*dap.StackTraceResponse)
	require.True(c.t, ok)
	require.Len(c.t, resp.Body.StackFrames, 1)
	return resp.Body.StackFrames[0]
}

func (c *client) variables() map[string]string {
	c.send(&dap.VariablesRequest{
		Request: c.request("variables"),
		Arguments: dap.VariablesArguments{
			VariablesReference: localsRef,
		},
	})
	resp, ok := c.next().(*dap.VariablesResponse)
	require.True(c.t, ok)
	ret := make(map[string]string)
	for _, v := range resp.Body.Variables {
		ret[v.Name] = v.Value
	}
	return ret
}

func TestSession(t *testing.T) {
	program := writeProgram(t, `x = 1
y = x + 1
print(y)
`)
	testServe(t, func(c *client) {
		launch(c, program)

		c.send(&dap.ConfigurationDoneRequest{
			Request: c.request("configurationDone"),
		})
		_, ok := c.next().(*dap.ConfigurationDoneResponse)
		require.True(t, ok)
		stopped, ok := c.next().(*dap.StoppedEvent)
		require.True(t, ok)
		require.Equal(t, "entry", stopped.Body.Reason)

		c.send(&dap.ThreadsRequest{
			Request: c.request("threads"),
		})
		threads, ok := c.next().(*dap.ThreadsResponse)
		require.True(t, ok)
		require.Len(t, threads.Body.Threads, 1)

		top := c.stackTop()
		require.Equal(t, 1, top.Line)
		require.Equal(t, "x = 1", top.Name)
		require.Equal(t, program, top.Source.Path)

		c.send(&dap.ScopesRequest{
			Request: c.request("scopes"),
			Arguments: dap.ScopesArguments{
				FrameId: frameID,
			},
		})
		scopes, ok := c.next().(*dap.ScopesResponse)
		require.True(t, ok)
		require.Len(t, scopes.Body.Scopes, 1)
		require.Equal(t, localsRef, scopes.Body.Scopes[0].VariablesReference)

		var lines []int
		var names []string
		terminated := false
		for !terminated {
			c.send(&dap.NextRequest{
				Request: c.request("next"),
			})
			_, ok := c.next().(*dap.NextResponse)
			require.True(t, ok)

			switch msg := c.next().(type) {
			case *dap.StoppedEvent:
				require.Equal(t, "step", msg.Body.Reason)
				top := c.stackTop()
				lines = append(lines, top.Line)
				names = append(names, top.Name)
				if top.Line == 1 {
					require.Equal(t, "1", c.variables()["x"])
				}
			case *dap.ExitedEvent:
				require.Equal(t, 0, msg.Body.ExitCode)
				_, ok := c.next().(*dap.TerminatedEvent)
				require.True(t, ok)
				terminated = true
			default:
				t.Fatalf("got %#v", msg)
			}
		}

		require.Equal(t, []int{1, 2, 2, 3}, lines)
		require.Equal(t, []string{"x = 1", "y = 1 + 1", "y = 2", "print(2)"}, names)
		require.Equal(t, "2\n", c.output.String())
		vars := c.variables()
		require.Equal(t, "1", vars["x"])
		require.Equal(t, "2", vars["y"])
	})
}

func TestRuntimeError(t *testing.T) {
	program := writeProgram(t, `x = 1 / 0
`)
	testServe(t, func(c *client) {
		launch(c, program)
		c.send(&dap.ConfigurationDoneRequest{
			Request: c.request("configurationDone"),
		})
		_, ok := c.next().(*dap.ConfigurationDoneResponse)
		require.True(t, ok)
		_, ok = c.next().(*dap.StoppedEvent)
		require.True(t, ok)

		c.send(&dap.NextRequest{
			Request: c.request("next"),
		})
		_, ok = c.next().(*dap.NextResponse)
		require.True(t, ok)
		exited, ok := c.next().(*dap.ExitedEvent)
		require.True(t, ok)
		require.Equal(t, 1, exited.Body.ExitCode)
		_, ok = c.next().(*dap.TerminatedEvent)
		require.True(t, ok)
		require.Contains(t, c.output.String(), "ZeroDivisionError")
	})
}

func TestTerminate(t *testing.T) {
	program := writeProgram(t, `n = 0
while True:
    n += 1
`)
	testServe(t, func(c *client) {
		launch(c, program)
		c.send(&dap.ConfigurationDoneRequest{
			Request: c.request("configurationDone"),
		})
		_, ok := c.next().(*dap.ConfigurationDoneResponse)
		require.True(t, ok)
		_, ok = c.next().(*dap.StoppedEvent)
		require.True(t, ok)

		c.send(&dap.TerminateRequest{
			Request: c.request("terminate"),
		})
		_, ok = c.next().(*dap.TerminateResponse)
		require.True(t, ok)
		_, ok = c.next().(*dap.ExitedEvent)
		require.True(t, ok)
		_, ok = c.next().(*dap.TerminatedEvent)
		require.True(t, ok)
	})
}

func TestBadRequests(t *testing.T) {
	testServe(t, func(c *client) {
		c.send(&dap.LaunchRequest{
			Request:   c.request("launch"),
			Arguments: json.RawMessage(`{}`),
		})
		resp, ok := c.next().(*dap.ErrorResponse)
		require.True(t, ok)
		require.False(t, resp.Success)
		require.Equal(t, "launch", resp.Command)

		c.send(&dap.LaunchRequest{
			Request:   c.request("launch"),
			Arguments: json.RawMessage(`{"program": "/no/such/file.py"}`),
		})
		resp, ok = c.next().(*dap.ErrorResponse)
		require.True(t, ok)
		require.False(t, resp.Success)

		c.send(&dap.EvaluateRequest{
			Request: c.request("evaluate"),
			Arguments: dap.EvaluateArguments{
				Expression: "x",
			},
		})
		resp, ok = c.next().(*dap.ErrorResponse)
		require.True(t, ok)
		require.Equal(t, "evaluate", resp.Command)
		require.Contains(t, resp.Message, "unsupported")
	})
}
