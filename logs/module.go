package logs

import (
	"io"
	"os"

	"github.com/reusee/dscope"
)

type Module struct {
	dscope.Module
}

// Writer receives text records. Tests replace it to silence or capture logs.
type Writer io.Writer

func (Module) Writer() Writer {
	return os.Stderr
}
