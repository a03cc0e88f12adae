package options

import (
	"fmt"
	"strings"

	"github.com/asdfjk123/renode/core/console"
)

// Control listener port range scanned when server mode has no explicit port.
const (
	DefaultPortRangeStart = 21234
	DefaultPortRangeEnd   = 31234
)

// BindFailurePolicy decides what happens when the server-mode listener cannot be bound.
type BindFailurePolicy string

const (
	// BindFailureAbort stops the process before any thread is spawned.
	BindFailureAbort BindFailurePolicy = "abort"
	// BindFailureDisable continues without the API server.
	BindFailureDisable BindFailurePolicy = "disable"
)

// ArgumentError reports malformed or invalid command line input.
type ArgumentError struct {
	Flag string
	Err  error
}

func (e *ArgumentError) Error() string {
	if e.Flag == "" {
		return fmt.Sprintf("invalid arguments: %v", e.Err)
	}
	return fmt.Sprintf("invalid value for --%s: %v", e.Flag, e.Err)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// StartupOptions is the immutable startup configuration.
type StartupOptions struct {
	Version     bool
	DisplayMode console.Mode
	ConfigFile  string

	ServerMode  bool
	ServerPort  int
	RobotPort   int
	BindFailure BindFailurePolicy

	Plain   bool
	PIDFile string

	execute []string
	scripts []string
}

// Raw is the unvalidated flag input.
type Raw struct {
	Version     bool
	Console     bool
	DisableGUI  bool
	ConfigFile  string
	ServerMode  bool
	ServerPort  int
	RobotPort   int
	BindFailure string
	Plain       bool
	PIDFile     string
	Execute     []string
	Scripts     []string
}

// Parse validates raw flag input and builds StartupOptions.
func Parse(raw Raw) (StartupOptions, error) {
	if raw.Console && raw.DisableGUI {
		return StartupOptions{}, &ArgumentError{Err: fmt.Errorf("--console and --disable-gui are mutually exclusive")}
	}
	if err := validatePort(raw.ServerPort, true); err != nil {
		return StartupOptions{}, &ArgumentError{Flag: "server-mode-port", Err: err}
	}
	if err := validatePort(raw.RobotPort, true); err != nil {
		return StartupOptions{}, &ArgumentError{Flag: "robot-server-port", Err: err}
	}
	if raw.ServerPort != 0 && !raw.ServerMode {
		return StartupOptions{}, &ArgumentError{Flag: "server-mode-port", Err: fmt.Errorf("requires --server-mode")}
	}

	policy := BindFailurePolicy(strings.ToLower(strings.TrimSpace(raw.BindFailure)))
	switch policy {
	case "":
		policy = BindFailureAbort
	case BindFailureAbort, BindFailureDisable:
	default:
		return StartupOptions{}, &ArgumentError{Flag: "bind-failure", Err: fmt.Errorf("unknown policy %q (must be abort or disable)", raw.BindFailure)}
	}

	mode := console.ModeWindow
	switch {
	case raw.Console:
		mode = console.ModeConsole
	case raw.DisableGUI:
		mode = console.ModeHeadless
	}

	return StartupOptions{
		Version:     raw.Version,
		DisplayMode: mode,
		ConfigFile:  strings.TrimSpace(raw.ConfigFile),
		ServerMode:  raw.ServerMode,
		ServerPort:  raw.ServerPort,
		RobotPort:   raw.RobotPort,
		BindFailure: policy,
		Plain:       raw.Plain,
		PIDFile:     strings.TrimSpace(raw.PIDFile),
		execute:     append([]string(nil), raw.Execute...),
		scripts:     append([]string(nil), raw.Scripts...),
	}, nil
}

func validatePort(port int, allowZero bool) error {
	if port == 0 && allowZero {
		return nil
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port %d out of range 1-65535", port)
	}
	return nil
}

// Execute returns a copy of the commands passed with -e.
func (o StartupOptions) Execute() []string {
	return append([]string(nil), o.execute...)
}

// Scripts returns a copy of the positional script paths.
func (o StartupOptions) Scripts() []string {
	return append([]string(nil), o.scripts...)
}
