package control

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/asdfjk123/renode/core/lifecycle"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Context is the control thread's capability registry.
type Context struct {
	id     string
	logger *zap.Logger
	hooks  *lifecycle.Registry

	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.RWMutex
	caps map[reflect.Type]any

	servers atomic.Int32
}

// NewContext creates a Context whose shutdown request cancels a child of parent.
func NewContext(parent context.Context, hooks *lifecycle.Registry, logger *zap.Logger) *Context {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Context{
		id:     uuid.NewString(),
		logger: logger,
		hooks:  hooks,
		ctx:    ctx,
		cancel: cancel,
		caps:   make(map[reflect.Type]any),
	}
}

// ID identifies the control session.
func (c *Context) ID() string {
	return c.id
}

// Logger returns the control thread logger.
func (c *Context) Logger() *zap.Logger {
	return c.logger
}

// Context is cancelled once shutdown has been requested.
func (c *Context) Context() context.Context {
	return c.ctx
}

// Done is closed once shutdown has been requested.
func (c *Context) Done() <-chan struct{} {
	return c.ctx.Done()
}

// RequestShutdown asks the control loop to exit.
func (c *Context) RequestShutdown() {
	c.cancel()
}

// OnShutdown registers a hook drained during graceful shutdown.
func (c *Context) OnShutdown(name string, hook lifecycle.Hook) error {
	if c.hooks == nil {
		return fmt.Errorf("control: no hook registry for %q", name)
	}
	return c.hooks.Register(name, hook)
}

// ServerStarted records a running network server.
func (c *Context) ServerStarted() {
	c.servers.Add(1)
}

// ActiveServers returns the number of running network servers.
func (c *Context) ActiveServers() int {
	return int(c.servers.Load())
}

func keyOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Provide publishes impl as the implementation of T. A previous
// implementation is replaced; the return value reports whether one existed.
func Provide[T any](c *Context, impl T) bool {
	key := keyOf[T]()

	c.mu.Lock()
	defer c.mu.Unlock()

	_, replaced := c.caps[key]
	c.caps[key] = impl
	if replaced {
		c.logger.Debug("Capability replaced", zap.String("capability", key.String()))
	}
	return replaced
}

// Lookup returns the implementation of T, if one was provided.
func Lookup[T any](c *Context) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	impl, ok := c.caps[keyOf[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return impl.(T), true
}
