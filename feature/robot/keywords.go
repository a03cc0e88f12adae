package robot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/asdfjk123/renode/core/control"
	"github.com/asdfjk123/renode/feature/monitor"
)

// Result statuses.
const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
)

// ErrUnknownKeyword is returned for names not in the library.
var ErrUnknownKeyword = errors.New("unknown keyword")

// Keyword runs with positional arguments and returns its value.
type Keyword func(ctx context.Context, cc *control.Context, args []string) (string, error)

// Result mirrors the remote library result dictionary.
type Result struct {
	Status string `json:"status"`
	Return string `json:"return"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Library holds the keywords served by the robot server.
type Library struct {
	keywords map[string]Keyword
}

// NewLibrary returns the built-in keywords.
func NewLibrary(version string) *Library {
	return &Library{keywords: map[string]Keyword{
		"ExecuteCommand": executeCommand,
		"GetVersion": func(context.Context, *control.Context, []string) (string, error) {
			return version, nil
		},
		"Quit": func(_ context.Context, cc *control.Context, _ []string) (string, error) {
			cc.RequestShutdown()
			return "", nil
		},
	}}
}

// Names returns keyword names sorted.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.keywords))
	for n := range l.keywords {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Run executes the named keyword. Keyword failures are reported in the
// Result; only an unknown name yields an error.
func (l *Library) Run(ctx context.Context, cc *control.Context, name string, args []string) (Result, error) {
	kw, ok := l.keywords[normalize(name)]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownKeyword, name)
	}
	ret, err := kw(ctx, cc, args)
	if err != nil {
		return Result{Status: StatusFail, Output: ret, Error: err.Error()}, nil
	}
	return Result{Status: StatusPass, Return: ret}, nil
}

// normalize maps "execute command" and "execute_command" to ExecuteCommand.
func normalize(name string) string {
	fields := strings.FieldsFunc(name, func(r rune) bool { return r == ' ' || r == '_' })
	for i, f := range fields {
		fields[i] = strings.ToUpper(f[:1]) + f[1:]
	}
	return strings.Join(fields, "")
}

func executeCommand(ctx context.Context, cc *control.Context, args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("ExecuteCommand expects a command")
	}
	exec, ok := control.Lookup[monitor.Executor](cc)
	if !ok {
		return "", errors.New("monitor is not available")
	}
	return exec.Execute(ctx, strings.Join(args, " "))
}
