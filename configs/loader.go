package configs

import (
	"fmt"
	"os"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Loader reads CUE config files lazily. Earlier files take precedence.
type Loader struct {
	paths    []string
	getRoots func() ([]rootInfo, error)
}

func NewLoader(filePaths []string, schemaSrc string) Loader {
	return Loader{
		paths: filePaths,

		getRoots: sync.OnceValues(func() (ret []rootInfo, err error) {

			// schema and files must share one runtime to be unified
			ctx := cuecontext.New()

			var schema cue.Value
			if schemaSrc != "" {
				schema = ctx.CompileString("close({" + schemaSrc + "})")
				if err := schema.Err(); err != nil {
					return nil, err
				}
			}

			for _, filePath := range filePaths {
				content, err := os.ReadFile(filePath)
				if err != nil {
					return nil, fmt.Errorf("read config %s: %w", filePath, err)
				}

				value := ctx.CompileBytes(
					content,
					cue.Filename(filePath),
				)
				if err = value.Err(); err != nil {
					return nil, err
				}

				if schema.Exists() {
					if err := schema.Unify(value).Validate(); err != nil {
						return nil, fmt.Errorf("validate config %s: %w", filePath, err)
					}
				}

				ret = append(ret, rootInfo{
					value: value,
					path:  filePath,
				})
			}

			return
		}),
	}
}

type rootInfo struct {
	value cue.Value
	path  string
}

// AssignFirst decodes the value at path from the first file defining it.
// ErrValueNotFound is returned when no file does.
func (l Loader) AssignFirst(path string, target any) error {
	roots, err := l.getRoots()
	if err != nil {
		return err
	}

	cuePath := cue.ParsePath(path)
	if err := cuePath.Err(); err != nil {
		return fmt.Errorf("config path %s: %w", path, err)
	}
	for _, info := range roots {
		value := info.value.LookupPath(cuePath)
		if !value.Exists() {
			continue
		}
		if err := value.Decode(target); err != nil {
			return fmt.Errorf("decode %s in %s: %w", path, info.path, err)
		}
		return nil
	}

	return fmt.Errorf("%s: %w", path, ErrValueNotFound)
}

func (l Loader) Paths() []string {
	return l.paths
}

// Validate loads every file, reporting the first parse or schema error.
func (l Loader) Validate() error {
	_, err := l.getRoots()
	return err
}
