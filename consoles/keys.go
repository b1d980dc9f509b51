package consoles

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

type Key uint8

const (
	KeyNext Key = iota + 1
	KeyQuit
)

// keyReader reads stepping commands. On a terminal every key press counts;
// otherwise input is read a line at a time.
type keyReader struct {
	raw     bool
	restore func()
	reader  *bufio.Reader
	pending chan keyRead
}

type keyRead struct {
	key Key
	err error
}

func newKeyReader(in io.Reader) *keyReader {
	ret := &keyReader{
		reader: bufio.NewReader(in),
	}
	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		fd := int(file.Fd())
		if state, err := term.MakeRaw(fd); err == nil {
			ret.raw = true
			ret.restore = func() {
				_ = term.Restore(fd, state)
			}
		}
	}
	return ret
}

func (k *keyReader) Close() {
	if k.restore != nil {
		k.restore()
	}
}

func (k *keyReader) newline() string {
	if k.raw {
		return "\r\n"
	}
	return "\n"
}

func (k *keyReader) Read() (Key, error) {
	if !k.raw {
		line, err := k.reader.ReadString('\n')
		if err != nil && line == "" {
			return 0, err
		}
		switch strings.TrimSpace(line) {
		case "q", "quit":
			return KeyQuit, nil
		}
		return KeyNext, nil
	}

	for {
		b, err := k.reader.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case '\r', '\n', ' ', 'n', 'j':
			return KeyNext, nil
		case 'q', 3, 4: // ctrl-c, ctrl-d
			return KeyQuit, nil
		}
	}
}

// ReadContext is Read that returns ctx.Err() when ctx is done first. The
// abandoned read is delivered to the next call.
func (k *keyReader) ReadContext(ctx context.Context) (Key, error) {
	if k.pending == nil {
		ch := make(chan keyRead, 1)
		go func() {
			key, err := k.Read()
			ch <- keyRead{key, err}
		}()
		k.pending = ch
	}
	select {
	case r := <-k.pending:
		k.pending = nil
		return r.key, r.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
