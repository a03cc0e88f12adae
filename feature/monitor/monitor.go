package monitor

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/asdfjk123/renode/core/control"
	"github.com/asdfjk123/renode/core/engine"

	"go.uber.org/zap"
)

// Prompt is printed before each interactive command.
const Prompt = "(monitor) "

// Executor runs monitor commands.
type Executor interface {
	Execute(ctx context.Context, line string) (string, error)
}

// Fetcher downloads a remote artifact and returns its local path.
type Fetcher interface {
	Fetch(ctx context.Context, object string) (string, error)
}

// Engine is the part of the engine handle used by monitor commands.
type Engine interface {
	Invoke(ctx context.Context, fn func()) error
	Start()
	Pause()
	Status() engine.Status
}

// Settings reads renode.config values.
type Settings interface {
	Get(section, key string) (string, bool)
}

// Config holds the monitor's collaborators.
type Config struct {
	Engine   Engine
	Settings Settings
	History  History
	Logger   *zap.Logger
	// Version is printed by the version command.
	Version string
	// WorkingDir resolves relative include paths.
	WorkingDir string
}

// Monitor executes commands and runs the interactive loop.
type Monitor struct {
	cfg    Config
	logger *zap.Logger
	cc     *control.Context
}

// New creates a monitor.
func New(cfg Config) *Monitor {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.History == nil {
		cfg.History = NewMemoryHistory(DefaultHistorySize)
	}
	return &Monitor{cfg: cfg, logger: cfg.Logger.Named("monitor")}
}

// Attach binds the monitor to the control context and publishes it as the
// Executor capability.
func (m *Monitor) Attach(cc *control.Context) {
	m.cc = cc
	control.Provide[Executor](cc, m)
}

func (m *Monitor) sessionID() string {
	if m.cc == nil {
		return ""
	}
	return m.cc.ID()
}

// Execute runs one command line and returns its output.
func (m *Monitor) Execute(ctx context.Context, line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", nil
	}

	args, err := splitArgs(line)
	if err != nil {
		return "", err
	}

	if err := m.cfg.History.Append(ctx, m.sessionID(), line); err != nil {
		m.logger.Warn("Could not record history", zap.Error(err))
	}

	var out bytes.Buffer
	root := m.commandTree(&out)
	root.SetArgs(args)
	err = root.ExecuteContext(ctx)
	return out.String(), err
}

// RunScript executes every line of the file at path. It stops at the first failing command.
func (m *Monitor) RunScript(ctx context.Context, path string, out io.Writer) error {
	if !filepath.IsAbs(path) && m.cfg.WorkingDir != "" {
		path = filepath.Join(m.cfg.WorkingDir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("include %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		res, err := m.Execute(ctx, scanner.Text())
		io.WriteString(out, res)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
	}
	return scanner.Err()
}

// Startup runs script files then -e commands before interactive input.
// Failures are reported and do not stop the remaining entries.
func (m *Monitor) Startup(ctx context.Context, scripts, commands []string, out io.Writer) {
	for _, script := range scripts {
		if err := m.RunScript(ctx, script, out); err != nil {
			m.logger.Error("Startup script failed", zap.String("script", script), zap.Error(err))
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
	for _, cmd := range commands {
		res, err := m.Execute(ctx, cmd)
		io.WriteString(out, res)
		if err != nil {
			m.logger.Error("Startup command failed", zap.String("command", cmd), zap.Error(err))
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

// Run reads commands from in until shutdown is requested. A nil in means no
// monitor is attached. At end of input the loop returns, unless a network
// server is running, in which case it waits for a shutdown request.
func (m *Monitor) Run(cc *control.Context, in io.Reader, out io.Writer) error {
	ctx := cc.Context()
	if in == nil {
		<-ctx.Done()
		return nil
	}

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	io.WriteString(out, Prompt)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				if err := <-readErr; err != nil {
					return fmt.Errorf("monitor input: %w", err)
				}
				if cc.ActiveServers() > 0 {
					m.logger.Info("Monitor input closed, waiting for remote shutdown")
					<-ctx.Done()
				}
				return nil
			}
			res, err := m.Execute(ctx, line)
			io.WriteString(out, res)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
			select {
			case <-ctx.Done():
				return nil
			default:
				io.WriteString(out, Prompt)
			}
		}
	}
}

// splitArgs splits a command line on whitespace, honoring double quotes.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		hasArg  bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			hasArg = true
		case (r == ' ' || r == '\t') && !inQuote:
			if hasArg {
				args = append(args, cur.String())
				cur.Reset()
				hasArg = false
			}
		default:
			cur.WriteRune(r)
			hasArg = true
		}
	}
	if inQuote {
		return nil, errors.New("unterminated quote")
	}
	if hasArg {
		args = append(args, cur.String())
	}
	return args, nil
}
