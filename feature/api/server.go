package api

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/asdfjk123/renode/core/control"
	"github.com/asdfjk123/renode/core/engine"
	"github.com/asdfjk123/renode/core/middleware/auth"
	"github.com/asdfjk123/renode/core/middleware/rayid"
	"github.com/asdfjk123/renode/core/middleware/reqlog"
	"github.com/asdfjk123/renode/core/server"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"

	_ "github.com/asdfjk123/renode/docs/swagger"
)

// ShutdownTimeout bounds Stop.
const ShutdownTimeout = 5 * time.Second

// Feature is an optional route group mounted under the API.
type Feature interface {
	Name() string
	IsEnabled() bool
	Load(app fiber.Router) error
}

// StatusSource reports engine state.
type StatusSource interface {
	Status() engine.Status
}

// Server serves the control API on a pre-bound listener.
type Server struct {
	ln       net.Listener
	cfg      server.Config
	engine   StatusSource
	version  string
	features []Feature
	logger   *zap.Logger

	mu  sync.Mutex
	app *fiber.App
}

// New creates the API server. A nil listener leaves the server disabled.
func New(ln net.Listener, cfg server.Config, eng StatusSource, version string, logger *zap.Logger, features ...Feature) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		ln:       ln,
		cfg:      cfg,
		engine:   eng,
		version:  version,
		features: features,
		logger:   logger.Named("api"),
	}
}

func (s *Server) Name() string {
	return "api"
}

func (s *Server) IsEnabled() bool {
	return s.ln != nil
}

// Addr returns the listener address.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Start begins serving in the background.
func (s *Server) Start(cc *control.Context) error {
	if s.ln == nil {
		return errors.New("api: no listener")
	}
	app, err := s.newApp(cc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.app = app
	s.mu.Unlock()

	s.logger.Info("Starting API server", zap.String("addr", s.ln.Addr().String()), zap.Bool("auth", s.cfg.AuthEnabled()))
	go func() {
		if err := app.Listener(s.ln); err != nil {
			s.logger.Error("API server stopped", zap.Error(err))
		}
	}()
	return nil
}

// Stop shuts the server down and releases the listener.
func (s *Server) Stop() error {
	if s.ln == nil {
		return nil
	}
	s.mu.Lock()
	app := s.app
	s.mu.Unlock()

	var err error
	if app != nil {
		err = app.ShutdownWithTimeout(ShutdownTimeout)
	}
	if cerr := s.ln.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) && err == nil {
		err = cerr
	}
	s.logger.Info("API server stopped")
	return err
}

func (s *Server) newApp(cc *control.Context) (*fiber.App, error) {
	app := server.NewApp("renode-api")

	app.Use(rayid.New())
	app.Use(reqlog.New(s.logger))

	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Use(auth.New(auth.Config{ApiKey: s.cfg.ApiKey}))

	h := &handler{cc: cc, engine: s.engine, version: s.version, logger: s.logger}
	h.RegisterRoutes(app)

	for _, f := range s.features {
		if !f.IsEnabled() {
			continue
		}
		if err := f.Load(app.Group("/api")); err != nil {
			return nil, err
		}
		s.logger.Debug("Feature loaded", zap.String("feature", f.Name()))
	}
	return app, nil
}
