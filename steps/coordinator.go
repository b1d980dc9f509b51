package steps

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Step is a line published by the tracing side for the controller to show.
type Step struct {
	Line int
	// Text is the rendered line
	Text string
	// Settled is true when the line has finished and shows its results
	Settled bool
}

type State uint8

const (
	Idle State = iota
	AwaitingReadiness
	ReadyForStep
	Consumed
	Quitting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case AwaitingReadiness:
		return "AwaitingReadiness"
	case ReadyForStep:
		return "ReadyForStep"
	case Consumed:
		return "Consumed"
	case Quitting:
		return "Quitting"
	}
	return fmt.Sprintf("State(%d)", s)
}

var ErrQuit = errors.New("stepping stopped")

// Coordinator hands steps from the tracing goroutine to a controller, one at
// a time. The tracing side blocks in Wait until the controller consumes the
// published step with Next.
type Coordinator struct {
	mu       sync.Mutex
	state    State
	current  Step
	grant    chan struct{}
	changed  chan struct{}
	quit     chan struct{}
	finished bool
}

func NewCoordinator() *Coordinator {
	return &Coordinator{
		changed: make(chan struct{}),
		quit:    make(chan struct{}),
	}
}

// broadcast wakes every goroutine waiting on the current changed channel.
// Must be called with mu held.
func (c *Coordinator) broadcast() {
	close(c.changed)
	c.changed = make(chan struct{})
}

// Wait publishes step and blocks until it is consumed. It returns ErrQuit
// once Stop has been called.
func (c *Coordinator) Wait(step Step) error {
	c.mu.Lock()
	if c.state == Quitting {
		c.mu.Unlock()
		return ErrQuit
	}
	grant := make(chan struct{})
	c.current = step
	c.grant = grant
	c.state = ReadyForStep
	c.broadcast()
	c.mu.Unlock()

	select {
	case <-grant:
		return nil
	case <-c.quit:
		return ErrQuit
	}
}

// next blocks until a step is published, the run finishes, stepping stops or
// ctx is done. The step is consumed when consume is true.
func (c *Coordinator) next(ctx context.Context, consume bool) (Step, bool) {
	for {
		c.mu.Lock()
		if c.state == Quitting {
			c.mu.Unlock()
			return Step{}, false
		}
		if c.state == ReadyForStep {
			step := c.current
			if consume {
				c.state = Consumed
				close(c.grant)
				c.grant = nil
				c.broadcast()
			}
			c.mu.Unlock()
			return step, true
		}
		if c.finished {
			c.mu.Unlock()
			return Step{}, false
		}
		if c.state == Idle || c.state == Consumed {
			c.state = AwaitingReadiness
		}
		changed := c.changed
		c.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return Step{}, false
		}
	}
}

// Next returns the published step and releases the tracing side. It returns
// false after the run finished or stepping stopped.
func (c *Coordinator) Next(ctx context.Context) (Step, bool) {
	return c.next(ctx, true)
}

// Peek returns the published step without releasing the tracing side.
func (c *Coordinator) Peek(ctx context.Context) (Step, bool) {
	return c.next(ctx, false)
}

// Finish marks the end of the run. Pending and future Next calls return false.
func (c *Coordinator) Finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finished {
		return
	}
	c.finished = true
	if c.state != Quitting {
		c.state = Idle
	}
	c.broadcast()
}

// Stop unblocks every waiter on both sides. It is idempotent.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Quitting {
		return
	}
	c.state = Quitting
	close(c.quit)
	c.broadcast()
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) Quitting() bool {
	return c.State() == Quitting
}
