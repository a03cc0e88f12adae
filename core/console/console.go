package console

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/mattn/go-isatty"
)

// Mode selects how the monitor is presented.
type Mode int32

const (
	// ModeUnset means Configure has not been called.
	ModeUnset Mode = iota
	// ModeWindow runs the monitor in the configured terminal implementation.
	ModeWindow
	// ModeConsole runs the monitor on the process's own stdin/stdout.
	ModeConsole
	// ModeHeadless runs without an attached monitor.
	ModeHeadless
)

var ErrNotConfigured = errors.New("console: display mode not configured")

func (m Mode) String() string {
	switch m {
	case ModeWindow:
		return "window"
	case ModeConsole:
		return "console"
	case ModeHeadless:
		return "headless"
	default:
		return "unset"
	}
}

// Interactive reports whether the monitor reads from the process's stdin.
func (m Mode) Interactive() bool {
	return m == ModeWindow || m == ModeConsole
}

var (
	current       atomic.Int32
	configureOnce sync.Once
)

// Configure sets the display mode. Only the first call has an effect; it
// reports whether this call applied the mode.
func Configure(mode Mode) bool {
	applied := false
	configureOnce.Do(func() {
		current.Store(int32(mode))
		applied = true
	})
	return applied
}

// Current returns the configured display mode.
func Current() Mode {
	return Mode(current.Load())
}

// SetTitle writes a terminal title escape sequence to w. Nothing is written in
// headless mode or when w is not a terminal.
func SetTitle(w io.Writer, title string) error {
	mode := Current()
	if mode == ModeUnset {
		return ErrNotConfigured
	}
	if mode == ModeHeadless || !IsTerminal(w) {
		return nil
	}
	_, err := fmt.Fprintf(w, "\x1b]0;%s\x07", title)
	return err
}

// IsTerminal reports whether w is a terminal device.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
