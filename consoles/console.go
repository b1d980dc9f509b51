package consoles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/reusee/taistep/events"
	"github.com/reusee/taistep/logs"
	"github.com/reusee/taistep/sessions"
	"github.com/reusee/taistep/steps"
	"github.com/reusee/taistep/texts"
)

// Run steps through the program at path, one key press per step.
type Run func(ctx context.Context, path string, in io.Reader, out io.Writer) error

func (Module) Run(
	newSession sessions.NewSession,
	color Color,
	showOriginal ShowOriginal,
	logger logs.Logger,
) Run {
	return func(ctx context.Context, path string, in io.Reader, out io.Writer) error {
		session, err := newSession(path)
		if err != nil {
			return err
		}

		keys := newKeyReader(in)
		defer keys.Close()

		c := &console{
			out:          out,
			newline:      keys.newline(),
			styles:       newStyles(lipgloss.NewRenderer(out), bool(color)),
			showOriginal: bool(showOriginal),
			original:     session.Original(),
		}

		session.Start(ctx)
		for ctx.Err() == nil {
			step, ok := session.Peek(ctx)
			if !ok {
				break
			}
			// output of the previous step is queued before this step is published
			c.printEvents(session)
			c.printStep(step)
			key, err := keys.ReadContext(ctx)
			if err != nil && !errors.Is(err, io.EOF) && ctx.Err() == nil {
				logger.WarnContext(ctx, "read key",
					"error", err,
				)
			}
			if err != nil || key == KeyQuit {
				break
			}
			session.Next(ctx)
		}

		// the program may still be paused when ctx is done
		session.Stop()
		session.Wait()
		c.printEvents(session)
		return nil
	}
}

type console struct {
	out          io.Writer
	newline      string
	styles       styles
	showOriginal bool
	original     []string
}

func (c *console) print(s string) {
	if c.newline != "\n" {
		s = strings.ReplaceAll(s, "\n", c.newline)
	}
	_, _ = io.WriteString(c.out, s)
}

func (c *console) printStep(step steps.Step) {
	mark := ">"
	if step.Settled {
		mark = c.styles.settled.Render("=")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n",
		c.styles.number.Render(fmt.Sprintf("%4d", step.Line)),
		mark,
		Highlight(step.Text, c.styles.value),
	)
	if c.showOriginal && step.Line > 0 && step.Line <= len(c.original) {
		if original := c.original[step.Line-1]; original != texts.Strip(step.Text) {
			fmt.Fprintf(&b, "%s   %s\n",
				strings.Repeat(" ", 4),
				c.styles.original.Render(original),
			)
		}
	}
	c.print(b.String())
}

func (c *console) printEvents(session *sessions.Session) {
	for _, ev := range session.Events().Drain() {
		switch ev.Kind {
		case events.OutputChunk:
			c.print(ev.Text)
		case events.ExecutionError:
			c.print(c.styles.failure.Render(ev.Trace+ev.ErrorKind+": "+ev.Text) + "\n")
		}
	}
}
