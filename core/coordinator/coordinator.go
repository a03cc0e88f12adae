package coordinator

import (
	"context"
	"fmt"
	"runtime"

	"github.com/asdfjk123/renode/core/control"
	"github.com/asdfjk123/renode/core/lifecycle"

	"go.uber.org/zap"
)

// Engine is the part of the engine handle driven by the coordinator.
type Engine interface {
	Run()
	Finish()
}

// StartupFunc runs first on the control thread. It starts optional servers
// and publishes capabilities.
type StartupFunc func(cc *control.Context)

// LoopFunc is the control loop. It returns when shutdown is requested.
type LoopFunc func(cc *control.Context) error

// Coordinator sequences the engine and control threads.
type Coordinator struct {
	engine Engine
	hooks  *lifecycle.Registry
	logger *zap.Logger
	spawn  func(func())
}

// New creates a coordinator.
func New(engine Engine, hooks *lifecycle.Registry, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		engine: engine,
		hooks:  hooks,
		logger: logger,
		spawn:  func(fn func()) { go fn() },
	}
}

// Run spawns the control thread, then blocks in the engine loop on the
// calling goroutine until the control thread finishes. It returns the control
// loop's error, or the recovered panic.
func (c *Coordinator) Run(ctx context.Context, startup StartupFunc, loop LoopFunc) error {
	cc := control.NewContext(ctx, c.hooks, c.logger.Named("control"))

	running := make(chan struct{})
	done := make(chan struct{})
	var loopErr error

	c.spawn(func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		defer close(done)
		defer c.engine.Finish()
		defer func() {
			if r := recover(); r != nil {
				loopErr = fmt.Errorf("control thread panic: %v", r)
				c.logger.Error("Control thread failed", zap.Any("panic", r))
			}
		}()

		close(running)

		if startup != nil {
			startup(cc)
		}
		if loop != nil {
			loopErr = loop(cc)
		}
	})

	<-running
	c.engine.Run()

	// The engine may also stop from outside (forced teardown); make sure the
	// control loop follows.
	cc.RequestShutdown()
	<-done

	if loopErr != nil {
		c.logger.Warn("Control loop exited with error", zap.Error(loopErr))
	}
	return loopErr
}
