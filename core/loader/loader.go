package loader

import (
	"fmt"
	"sync"

	"github.com/asdfjk123/renode/core/control"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Server is an optional network control server.
type Server interface {
	Name() string
	IsEnabled() bool
	Start(cc *control.Context) error
	Stop() error
}

// Result describes the outcome of starting one server.
type Result struct {
	Name    string
	Started bool
	Err     error
}

// Manager holds the registered servers.
type Manager struct {
	logger *zap.Logger

	mu      sync.Mutex
	servers []Server
}

// NewManager creates an empty manager.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{logger: logger}
}

// Register adds a server.
func (m *Manager) Register(s Server) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.servers = append(m.servers, s)
}

// StartAll starts every enabled server and returns one Result per enabled
// server, in registration order.
func (m *Manager) StartAll(cc *control.Context) []Result {
	m.mu.Lock()
	servers := append([]Server(nil), m.servers...)
	m.mu.Unlock()

	results := make([]Result, len(servers))
	var g errgroup.Group

	for i, s := range servers {
		if !s.IsEnabled() {
			continue
		}
		g.Go(func() error {
			results[i] = m.start(cc, s)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Name != "" {
			out = append(out, r)
		}
	}
	return out
}

func (m *Manager) start(cc *control.Context, s Server) (res Result) {
	res.Name = s.Name()
	log := m.logger.With(zap.String("server", res.Name))

	defer func() {
		if r := recover(); r != nil {
			res.Started = false
			res.Err = fmt.Errorf("panic during start: %v", r)
			log.Error("Server start panicked", zap.Any("panic", r))
		}
	}()

	if err := s.Start(cc); err != nil {
		log.Error("Server failed to start", zap.Error(err))
		res.Err = err
		return res
	}

	if err := cc.OnShutdown(res.Name, s.Stop); err != nil {
		// Shutdown already began; stop right away rather than leak the server.
		log.Warn("Could not register stop hook, stopping now", zap.Error(err))
		if stopErr := s.Stop(); stopErr != nil {
			log.Error("Server stop failed", zap.Error(stopErr))
		}
		res.Err = err
		return res
	}

	cc.ServerStarted()
	res.Started = true
	log.Info("Server started")
	return res
}
