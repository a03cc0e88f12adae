package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/asdfjk123/renode/core/console"
	"github.com/asdfjk123/renode/core/engine"
	"github.com/asdfjk123/renode/core/lifecycle"
	"github.com/asdfjk123/renode/core/options"
	"github.com/asdfjk123/renode/core/settings"

	"go.uber.org/zap"
)

// ErrEngineInitialized is returned by a second InitializeEngine call.
var ErrEngineInitialized = errors.New("bootstrap: engine already initialized")

// EngineFactory constructs the engine.
type EngineFactory func(logger *zap.Logger, cfg engine.Config) (*engine.Engine, error)

// Config carries the sequencer's process-level inputs.
type Config struct {
	// Engine tunes the engine.
	Engine engine.Config
	// NewEngine constructs the engine. Defaults to engine.New.
	NewEngine EngineFactory
	// Host is the interface the server-mode listener binds to.
	Host string
	// PortRangeStart and PortRangeEnd bound the server-mode port scan.
	PortRangeStart int
	PortRangeEnd   int
	// ExecutableDir is where the installation root search starts. Defaults to the binary's directory.
	ExecutableDir string
	// UserDir is the per-user application directory. Defaults to settings.UserDir().
	UserDir string
	// Stdout receives the console title.
	Stdout io.Writer
}

func (c Config) withDefaults() Config {
	if c.NewEngine == nil {
		c.NewEngine = engine.New
	}
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.PortRangeStart == 0 && c.PortRangeEnd == 0 {
		c.PortRangeStart = options.DefaultPortRangeStart
		c.PortRangeEnd = options.DefaultPortRangeEnd
	}
	if c.ExecutableDir == "" {
		if exe, err := os.Executable(); err == nil {
			c.ExecutableDir = filepath.Dir(exe)
		}
	}
	if c.UserDir == "" {
		if dir, err := settings.UserDir(); err == nil {
			c.UserDir = dir
		} else {
			c.UserDir = filepath.Join(os.TempDir(), "renode")
		}
	}
	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}
	return c
}

// Sequencer performs the one-time startup steps.
type Sequencer struct {
	opts   options.StartupOptions
	cfg    Config
	logger *zap.Logger
	hooks  *lifecycle.Registry

	envOnce  sync.Once
	envErr   error
	settings *settings.Store

	engineMu sync.Mutex
	engine   *engine.Engine
}

// New creates a sequencer for opts.
func New(opts options.StartupOptions, cfg Config, logger *zap.Logger, hooks *lifecycle.Registry) *Sequencer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sequencer{
		opts:   opts,
		cfg:    cfg.withDefaults(),
		logger: logger,
		hooks:  hooks,
	}
}

// Options returns a copy of the startup options.
func (s *Sequencer) Options() options.StartupOptions {
	return s.opts
}

// UserDir returns the per-user application directory.
func (s *Sequencer) UserDir() string {
	return s.cfg.UserDir
}

// ConfigureEnvironment sets the display mode, loads the settings file and
// writes the PID file. It runs once; later calls return the first result.
func (s *Sequencer) ConfigureEnvironment() (*settings.Store, error) {
	s.envOnce.Do(func() {
		s.settings, s.envErr = s.configureEnvironment()
	})
	return s.settings, s.envErr
}

func (s *Sequencer) configureEnvironment() (*settings.Store, error) {
	// The display mode must be known before any title is set.
	console.Configure(s.opts.DisplayMode)
	if err := console.SetTitle(s.cfg.Stdout, Name); err != nil {
		s.logger.Debug("Console title not set", zap.Error(err))
	}

	path := settings.ResolvePath(s.opts.ConfigFile, s.cfg.ExecutableDir, s.cfg.UserDir)
	store, err := settings.Open(path)
	if err != nil {
		return nil, err
	}

	terminal, err := store.EnsureDefault("general", "terminal", settings.DefaultTerminal)
	if err != nil {
		return nil, err
	}
	store.Freeze()

	s.logger.Debug("Environment configured",
		zap.String("config", path),
		zap.String("terminal", terminal),
		zap.Stringer("display", s.opts.DisplayMode),
	)

	if s.opts.PIDFile != "" {
		if err := s.writePIDFile(s.opts.PIDFile); err != nil {
			return nil, err
		}
	}
	return store, nil
}

func (s *Sequencer) writePIDFile(path string) error {
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	if s.hooks == nil {
		return nil
	}
	return s.hooks.Register("pid-file", func() error {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	})
}

// InitializeEngine constructs the engine. It must be called from main before
// any other goroutine is spawned, and only once.
func (s *Sequencer) InitializeEngine() (*engine.Engine, error) {
	s.engineMu.Lock()
	defer s.engineMu.Unlock()

	if s.engine != nil {
		return nil, ErrEngineInitialized
	}

	eng, err := s.cfg.NewEngine(s.logger, s.cfg.Engine)
	if err != nil {
		var initErr *engine.InitError
		if !errors.As(err, &initErr) {
			err = &engine.InitError{Err: err}
		}
		return nil, err
	}
	s.engine = eng

	if s.hooks != nil {
		s.hooks.SetTeardown(func() error {
			eng.Dispose()
			return nil
		})
	}

	s.logger.Debug("Engine initialized")
	return eng, nil
}

// MaybeBindControlListener binds the server-mode listener when server mode is
// requested. It returns a nil listener when server mode is off, or when binding
// failed under the disable policy.
func (s *Sequencer) MaybeBindControlListener() (net.Listener, error) {
	if !s.opts.ServerMode {
		return nil, nil
	}

	var (
		ln  net.Listener
		err error
	)
	if s.opts.ServerPort != 0 {
		ln, err = bindExplicit(s.cfg.Host, s.opts.ServerPort)
	} else {
		ln, err = bindInRange(s.cfg.Host, s.cfg.PortRangeStart, s.cfg.PortRangeEnd)
	}

	if err != nil {
		if s.opts.BindFailure == options.BindFailureDisable {
			s.logger.Warn("Server mode disabled", zap.Error(err))
			return nil, nil
		}
		return nil, err
	}

	s.logger.Info("Server mode listener bound", zap.String("addr", ln.Addr().String()))
	return ln, nil
}
