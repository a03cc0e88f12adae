package robot

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/asdfjk123/renode/core/control"
	"github.com/asdfjk123/renode/core/logger"
	"github.com/asdfjk123/renode/core/middleware/rayid"
	"github.com/asdfjk123/renode/core/middleware/reqlog"
	"github.com/asdfjk123/renode/core/server"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Server serves the keyword library.
type Server struct {
	host    string
	port    int
	library *Library
	logger  *zap.Logger

	mu  sync.Mutex
	ln  net.Listener
	app *fiber.App
}

// RunRequest carries keyword arguments.
type RunRequest struct {
	Args []string `json:"args"`
}

// New creates the robot server. Port 0 leaves it disabled.
func New(host string, port int, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		host:    host,
		port:    port,
		library: NewLibrary(version),
		logger:  logger.Named("robot"),
	}
}

func (s *Server) Name() string {
	return "robot"
}

func (s *Server) IsEnabled() bool {
	return s.port > 0
}

// Addr returns the bound address once started.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Start binds the robot port and begins serving.
func (s *Server) Start(cc *control.Context) error {
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("robot: listen %s: %w", addr, err)
	}
	app := s.newApp(cc)

	s.mu.Lock()
	s.ln = ln
	s.app = app
	s.mu.Unlock()

	s.logger.Info("Starting robot server", zap.String("addr", ln.Addr().String()))
	go func() {
		if err := app.Listener(ln); err != nil {
			s.logger.Error("Robot server stopped", zap.Error(err))
		}
	}()
	return nil
}

// Stop shuts the server down.
func (s *Server) Stop() error {
	s.mu.Lock()
	app, ln := s.app, s.ln
	s.mu.Unlock()
	if app == nil {
		return nil
	}

	err := app.ShutdownWithTimeout(5 * time.Second)
	if cerr := ln.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) && err == nil {
		err = cerr
	}
	s.logger.Info("Robot server stopped")
	return err
}

func (s *Server) newApp(cc *control.Context) *fiber.App {
	app := server.NewApp("renode-robot")
	app.Use(rayid.New())
	app.Use(reqlog.New(s.logger))

	app.Get("/keywords", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"keywords": s.library.Names()})
	})
	app.Post("/keywords/:name", func(c *fiber.Ctx) error {
		var req RunRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
			}
		}

		name := c.Params("name")
		res, err := s.library.Run(cc.Context(), cc, name, req.Args)
		if errors.Is(err, ErrUnknownKeyword) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		if res.Status == StatusFail {
			logger.WithRayID(s.logger, c).Warn("Keyword failed", zap.String("keyword", name), zap.String("error", res.Error))
		}
		return c.JSON(res)
	})
	return app
}
