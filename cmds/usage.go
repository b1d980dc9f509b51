package cmds

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

func (p *Executor) PrintUsage() {
	p.WriteUsage(os.Stderr)
}

// WriteUsage lists the defined commands, one per line, aliases after their
// command and sub commands indented below their parent.
func (p *Executor) WriteUsage(w io.Writer) {
	writeUsage(w, p.commands, 0)
}

func writeUsage(w io.Writer, commands map[string]*Command, depth int) {
	names := make([]string, 0, len(commands))
	for name, command := range commands {
		if command != nil && (command.Hidden || slices.Contains(command.Aliases, name)) {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)

	indent := strings.Repeat("  ", depth)
	for _, name := range names {
		command := commands[name]
		if command == nil {
			fmt.Fprintf(w, "%s%s\n", indent, name)
			continue
		}
		label := name
		if len(command.Aliases) > 0 {
			label += ", " + strings.Join(command.Aliases, ", ")
		}
		if command.Description != "" {
			fmt.Fprintf(w, "%s%-24s %s\n", indent, label, command.Description)
		} else {
			fmt.Fprintf(w, "%s%s\n", indent, label)
		}
		if len(command.Subs) > 0 {
			writeUsage(w, command.Subs, depth+1)
		}
	}
}
