package daps

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/go-dap"
	"github.com/reusee/taistep/events"
	"github.com/reusee/taistep/logs"
	"github.com/reusee/taistep/sessions"
	"github.com/reusee/taistep/steps"
	"github.com/reusee/taistep/texts"
)

const (
	threadID  = 1
	frameID   = 1
	localsRef = 1
)

type server struct {
	newSession sessions.NewSession
	logger     logs.Logger

	reader *bufio.Reader

	writeLock sync.Mutex
	writer    io.Writer
	seq       int

	mu      sync.Mutex
	session *sessions.Session
	current steps.Step
	paused  bool
	// stop reason to report at the next publication, empty if none is expected
	awaiting string
	names    []string
	values   map[string]string
	pumpDone chan struct{}
}

func newServer(conn io.ReadWriter, newSession sessions.NewSession, logger logs.Logger) *server {
	return &server{
		newSession: newSession,
		logger:     logger,
		reader:     bufio.NewReader(conn),
		writer:     conn,
		values:     make(map[string]string),
	}
}

func (s *server) serve(ctx context.Context) error {
	defer s.shutdown()
	for {
		msg, err := dap.ReadProtocolMessage(s.reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			var fieldErr *dap.DecodeProtocolMessageFieldError
			if errors.As(err, &fieldErr) {
				// unknown command or event, the stream is still in sync
				if err := s.sendError(&dap.Request{
					ProtocolMessage: dap.ProtocolMessage{
						Seq:  fieldErr.Seq,
						Type: "request",
					},
					Command: fieldErr.FieldValue,
				}, "%s", fieldErr.Error()); err != nil {
					return err
				}
				continue
			}
			return fmt.Errorf("read message: %w", err)
		}

		done, err := s.handle(ctx, msg)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func (s *server) shutdown() {
	s.mu.Lock()
	session := s.session
	pumpDone := s.pumpDone
	s.mu.Unlock()
	if session == nil {
		return
	}
	session.Stop()
	session.Wait()
	<-pumpDone
}

func (s *server) send(msg dap.Message) error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()
	s.seq++
	switch msg := msg.(type) {
	case dap.ResponseMessage:
		msg.GetResponse().Seq = s.seq
	case dap.EventMessage:
		msg.GetEvent().Seq = s.seq
	}
	return dap.WriteProtocolMessage(s.writer, msg)
}

func newResponse(req *dap.Request) dap.Response {
	return dap.Response{
		ProtocolMessage: dap.ProtocolMessage{
			Type: "response",
		},
		Command:    req.Command,
		RequestSeq: req.Seq,
		Success:    true,
	}
}

func newEvent(name string) dap.Event {
	return dap.Event{
		ProtocolMessage: dap.ProtocolMessage{
			Type: "event",
		},
		Event: name,
	}
}

func (s *server) sendError(req *dap.Request, format string, args ...any) error {
	resp := &dap.ErrorResponse{
		Response: newResponse(req),
	}
	resp.Success = false
	resp.Message = fmt.Sprintf(format, args...)
	resp.Body.Error = &dap.ErrorMessage{
		Id:     1,
		Format: resp.Message,
	}
	return s.send(resp)
}

func (s *server) handle(ctx context.Context, msg dap.Message) (done bool, err error) {
	req, ok := msg.(dap.RequestMessage)
	if !ok {
		s.logger.WarnContext(ctx, "unexpected message",
			"type", fmt.Sprintf("%T", msg),
		)
		return false, nil
	}
	s.logger.DebugContext(ctx, "request",
		"command", req.GetRequest().Command,
	)

	switch msg := msg.(type) {

	case *dap.InitializeRequest:
		resp := &dap.InitializeResponse{
			Response: newResponse(&msg.Request),
		}
		resp.Body.SupportsConfigurationDoneRequest = true
		resp.Body.SupportsTerminateRequest = true
		if err := s.send(resp); err != nil {
			return false, err
		}
		return false, s.send(&dap.InitializedEvent{
			Event: newEvent("initialized"),
		})

	case *dap.LaunchRequest:
		return false, s.launch(ctx, msg)

	case *dap.ConfigurationDoneRequest:
		if err := s.send(&dap.ConfigurationDoneResponse{
			Response: newResponse(&msg.Request),
		}); err != nil {
			return false, err
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.paused {
			return false, s.sendStopped("entry")
		}
		s.awaiting = "entry"
		return false, nil

	case *dap.ThreadsRequest:
		resp := &dap.ThreadsResponse{
			Response: newResponse(&msg.Request),
		}
		resp.Body.Threads = []dap.Thread{
			{
				Id:   threadID,
				Name: "main",
			},
		}
		return false, s.send(resp)

	case *dap.StackTraceRequest:
		return false, s.send(s.stackTrace(msg))

	case *dap.ScopesRequest:
		resp := &dap.ScopesResponse{
			Response: newResponse(&msg.Request),
		}
		resp.Body.Scopes = []dap.Scope{
			{
				Name:               "Locals",
				PresentationHint:   "locals",
				VariablesReference: localsRef,
			},
		}
		return false, s.send(resp)

	case *dap.VariablesRequest:
		return false, s.send(s.variables(msg))

	case *dap.NextRequest:
		if err := s.send(&dap.NextResponse{
			Response: newResponse(&msg.Request),
		}); err != nil {
			return false, err
		}
		s.step(ctx)
		return false, nil

	case *dap.StepInRequest:
		if err := s.send(&dap.StepInResponse{
			Response: newResponse(&msg.Request),
		}); err != nil {
			return false, err
		}
		s.step(ctx)
		return false, nil

	case *dap.StepOutRequest:
		if err := s.send(&dap.StepOutResponse{
			Response: newResponse(&msg.Request),
		}); err != nil {
			return false, err
		}
		s.step(ctx)
		return false, nil

	case *dap.ContinueRequest:
		resp := &dap.ContinueResponse{
			Response: newResponse(&msg.Request),
		}
		resp.Body.AllThreadsContinued = true
		if err := s.send(resp); err != nil {
			return false, err
		}
		s.step(ctx)
		return false, nil

	case *dap.DisconnectRequest:
		s.stop()
		return true, s.send(&dap.DisconnectResponse{
			Response: newResponse(&msg.Request),
		})

	case *dap.TerminateRequest:
		s.stop()
		return false, s.send(&dap.TerminateResponse{
			Response: newResponse(&msg.Request),
		})

	default:
		r := req.GetRequest()
		return false, s.sendError(r, "unsupported request: %s", r.Command)
	}
}

type launchArguments struct {
	Program string `json:"program"`
}

func (s *server) launch(ctx context.Context, req *dap.LaunchRequest) error {
	var args launchArguments
	if len(req.Arguments) > 0 {
		if err := json.Unmarshal(req.Arguments, &args); err != nil {
			return s.sendError(&req.Request, "bad launch arguments: %v", err)
		}
	}
	if args.Program == "" {
		return s.sendError(&req.Request, "program not specified")
	}

	s.mu.Lock()
	if s.session != nil {
		s.mu.Unlock()
		return s.sendError(&req.Request, "already launched")
	}
	s.mu.Unlock()

	session, err := s.newSession(args.Program)
	if err != nil {
		return s.sendError(&req.Request, "launch: %v", err)
	}
	s.logger.InfoContext(ctx, "launch",
		"program", args.Program,
	)

	s.mu.Lock()
	s.session = session
	s.pumpDone = make(chan struct{})
	s.mu.Unlock()

	if err := s.send(&dap.LaunchResponse{
		Response: newResponse(&req.Request),
	}); err != nil {
		return err
	}

	go s.pump(ctx, session)
	session.Start(ctx)
	return nil
}

// pump forwards session events to the client. It is the only consumer of the
// event queue, so variable updates are applied before the step that follows
// them is reported.
func (s *server) pump(ctx context.Context, session *sessions.Session) {
	defer close(s.pumpDone)
	failed := false
	for {
		ev, ok := session.Events().Pop(ctx)
		if !ok {
			return
		}

		var err error
		switch ev.Kind {

		case events.VariableChanged:
			s.setVariable(ev.Name, ev.Value, ev.Removed)

		case events.LineStarted:
			// the step is published right after this event
			step, ok := session.Peek(ctx)
			if !ok {
				continue
			}
			s.mu.Lock()
			s.current = step
			s.paused = true
			if s.awaiting != "" {
				err = s.sendStopped(s.awaiting)
				s.awaiting = ""
			}
			s.mu.Unlock()

		case events.OutputChunk:
			err = s.sendOutput("stdout", ev.Text)

		case events.ExecutionError:
			failed = true
			err = s.sendOutput("stderr", ev.Trace+ev.ErrorKind+": "+ev.Text+"\n")

		case events.ExecutionFinished:
			s.mu.Lock()
			s.paused = false
			s.awaiting = ""
			s.mu.Unlock()
			exited := &dap.ExitedEvent{
				Event: newEvent("exited"),
			}
			if failed {
				exited.Body.ExitCode = 1
			}
			if err = s.send(exited); err == nil {
				err = s.send(&dap.TerminatedEvent{
					Event: newEvent("terminated"),
				})
			}
		}

		if err != nil {
			s.logger.WarnContext(ctx, "send event",
				"error", err,
			)
		}
	}
}

func (s *server) setVariable(name, value string, removed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if removed {
		delete(s.values, name)
		for i, n := range s.names {
			if n == name {
				s.names = append(s.names[:i], s.names[i+1:]...)
				break
			}
		}
		return
	}
	if _, ok := s.values[name]; !ok {
		s.names = append(s.names, name)
	}
	s.values[name] = value
}

func (s *server) sendOutput(category, output string) error {
	ev := &dap.OutputEvent{
		Event: newEvent("output"),
	}
	ev.Body.Category = category
	ev.Body.Output = output
	return s.send(ev)
}

// sendStopped must be called with s.mu held.
func (s *server) sendStopped(reason string) error {
	ev := &dap.StoppedEvent{
		Event: newEvent("stopped"),
	}
	ev.Body.Reason = reason
	ev.Body.ThreadId = threadID
	ev.Body.AllThreadsStopped = true
	ev.Body.Text = strings.TrimSpace(texts.Strip(s.current.Text))
	return s.send(ev)
}

// step releases the paused line. The stopped event is sent by pump when the
// next line is published.
func (s *server) step(ctx context.Context) {
	s.mu.Lock()
	session := s.session
	if session == nil || !s.paused {
		s.mu.Unlock()
		return
	}
	s.paused = false
	s.awaiting = "step"
	s.mu.Unlock()

	if _, ok := session.Next(ctx); !ok {
		s.mu.Lock()
		s.awaiting = ""
		s.mu.Unlock()
	}
}

func (s *server) stop() {
	s.mu.Lock()
	session := s.session
	s.paused = false
	s.awaiting = ""
	s.mu.Unlock()
	if session != nil {
		session.Stop()
	}
}

func (s *server) stackTrace(req *dap.StackTraceRequest) *dap.StackTraceResponse {
	resp := &dap.StackTraceResponse{
		Response: newResponse(&req.Request),
	}
	resp.Body.StackFrames = []dap.StackFrame{}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil || !s.paused {
		return resp
	}
	path := s.session.Path()
	resp.Body.StackFrames = append(resp.Body.StackFrames, dap.StackFrame{
		Id:   frameID,
		Name: strings.TrimSpace(texts.Strip(s.current.Text)),
		Source: &dap.Source{
			Name: filepath.Base(path),
			Path: path,
		},
		Line:   s.current.Line,
		Column: 1,
	})
	resp.Body.TotalFrames = 1
	return resp
}

func (s *server) variables(req *dap.VariablesRequest) *dap.VariablesResponse {
	resp := &dap.VariablesResponse{
		Response: newResponse(&req.Request),
	}
	resp.Body.Variables = []dap.Variable{}
	if req.Arguments.VariablesReference != localsRef {
		return resp
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range s.names {
		resp.Body.Variables = append(resp.Body.Variables, dap.Variable{
			Name:  name,
			Value: s.values[name],
		})
	}
	return resp
}
