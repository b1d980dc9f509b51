package cmds

import (
	"fmt"
	"reflect"
)

// Command is a flag or a sub command. Func receives the arguments that
// follow the command name, converted to its parameter types.
type Command struct {
	Func        reflect.Value
	Subs        map[string]*Command
	Description string
	Aliases     []string
	// Hidden commands work but are left out of the usage
	Hidden bool
}

func (c *Command) Desc(desc string) *Command {
	c.Description = desc
	return c
}

func (c *Command) Alias(names ...string) *Command {
	c.Aliases = append(c.Aliases, names...)
	return c
}

func (c *Command) Hide() *Command {
	c.Hidden = true
	return c
}

func Func(fn any) *Command {
	fnValue := reflect.ValueOf(fn)
	if fnValue.Kind() != reflect.Func {
		panic(fmt.Errorf("command must be a function, got %T", fn))
	}

	fnType := fnValue.Type()
	switch fnType.NumOut() {
	case 0:
	case 1:
		if fnType.Out(0) != errorType {
			panic(fmt.Errorf("command may only return error, got %v", fnType.Out(0)))
		}
	default:
		panic(fmt.Errorf("command returns %d values, at most one error is allowed", fnType.NumOut()))
	}

	return &Command{
		Func: fnValue,
	}
}

func Sub(subs map[string]*Command) *Command {
	return &Command{
		Subs: subs,
	}
}
