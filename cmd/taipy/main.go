package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/reusee/taistep/taipy"
)

// taipy runs a program without tracing.
func main() {

	var input = os.Stdin
	var name = "<stdin>"
	if len(os.Args) > 1 {
		f, err := os.Open(os.Args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(-1)
		}
		defer f.Close()
		input = f
		name = os.Args[1]
	}

	vm, err := taipy.NewVM(name, input)
	if err != nil {
		fail(err)
	}

	for _, err := range vm.Run {
		if err != nil {
			fail(err)
		}
	}

}

func fail(err error) {
	var e *taipy.Error
	if errors.As(err, &e) {
		os.Stderr.WriteString(e.Trace)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(-1)
}
