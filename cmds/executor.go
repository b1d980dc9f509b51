package cmds

import (
	"encoding"
	"fmt"
	"maps"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/reusee/taistep/vars"
)

// Executor runs command lines against a set of defined commands. Arguments
// are consumed left to right: a command name, then as many arguments as its
// function takes.
type Executor struct {
	commands map[string]*Command
}

func NewExecutor() *Executor {
	ret := &Executor{
		commands: make(map[string]*Command),
	}
	ret.Define("-h", Func(func() {
		ret.PrintUsage()
		os.Exit(0)
	}).
		Desc("print this usage").
		Alias("help", "-help", "--help"))
	return ret
}

func (p *Executor) Define(name string, command *Command) {
	for _, name := range append([]string{name}, command.Aliases...) {
		if _, ok := p.commands[name]; ok {
			panic(fmt.Errorf("duplicated command %s", name))
		}
		p.commands[name] = command
	}
}

var errorType = reflect.TypeFor[error]()

func (p *Executor) Execute(args []string) error {
	commands := p.commands
	for len(args) > 0 {
		name := strings.TrimSpace(args[0])
		args = args[1:]
		// -flag=value
		if strings.HasPrefix(name, "-") {
			if before, after, ok := strings.Cut(name, "="); ok {
				name = before
				args = append([]string{after}, args...)
			}
		}

		command, ok := commands[name]
		if !ok {
			return fmt.Errorf("unknown command: %s", name)
		}

		if command.Func.IsValid() {
			var err error
			args, err = call(name, command.Func, args)
			if err != nil {
				return err
			}
		}

		if len(command.Subs) > 0 {
			commands = maps.Clone(commands)
			for subname, sub := range command.Subs {
				if _, ok := commands[subname]; ok {
					return fmt.Errorf("duplicated sub command: %s %s", name, subname)
				}
				commands[subname] = sub
			}
		}
	}
	return nil
}

func (p *Executor) MustExecute(args []string) {
	if err := p.Execute(args); err != nil {
		panic(err)
	}
}

// call invokes fn with arguments taken from the front of args and returns
// the rest.
func call(name string, fn reflect.Value, args []string) ([]string, error) {
	fnType := fn.Type()
	callArgs := make([]reflect.Value, 0, fnType.NumIn())
	for i := range fnType.NumIn() {
		value, err := parseArg(fnType.In(i), args)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if len(args) > 0 {
			args = args[1:]
		}
		callArgs = append(callArgs, value)
	}
	rets := fn.Call(callArgs)
	if len(rets) > 0 && !rets[0].IsNil() {
		return nil, fmt.Errorf("%s: %w", name, rets[0].Interface().(error))
	}
	return args, nil
}

var textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()

func parseArg(t reflect.Type, args []string) (ret reflect.Value, err error) {
	if t.Kind() == reflect.Pointer {
		if len(args) == 0 {
			// optional
			return reflect.New(t.Elem()), nil
		}
		elem, err := parseArg(t.Elem(), args)
		if err != nil {
			return ret, err
		}
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(elem)
		return ptr, nil
	}

	if len(args) == 0 {
		return ret, fmt.Errorf("expecting argument, got nothing")
	}
	str := args[0]
	ret = reflect.New(t).Elem()

	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		if err := ret.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(str)); err != nil {
			return ret, fmt.Errorf("convert %s to %v: %w", str, t, err)
		}
		return ret, nil
	}

	switch t.Kind() {

	case reflect.Bool:
		v, err := vars.ParseBool(str)
		if err != nil {
			return ret, err
		}
		ret.SetBool(v)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(str, 10, t.Bits())
		if err != nil {
			return ret, fmt.Errorf("convert %s to int: %w", str, err)
		}
		ret.SetInt(v)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseUint(str, 10, t.Bits())
		if err != nil {
			return ret, fmt.Errorf("convert %s to unsigned int: %w", str, err)
		}
		ret.SetUint(v)

	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(str, t.Bits())
		if err != nil {
			return ret, fmt.Errorf("convert %s to float: %w", str, err)
		}
		ret.SetFloat(v)

	case reflect.String:
		ret.SetString(str)

	default:
		return ret, fmt.Errorf("unsupported type: %v", t)
	}

	return ret, nil
}
