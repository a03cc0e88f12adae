package coordinator

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/asdfjk123/renode/core/lifecycle"

	"go.uber.org/zap"
)

// ForcedExitCode is used when a second termination signal arrives.
const ForcedExitCode = 130

// HandleSignals returns a context cancelled by the first SIGINT/SIGTERM. A
// second signal skips the graceful path: it runs the process-exit teardown
// and terminates. The returned stop function releases the signal handler.
func HandleSignals(parent context.Context, hooks *lifecycle.Registry, logger *zap.Logger) (context.Context, func()) {
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	ctx, stop := watch(parent, sigs, logger, func() { hooks.Exit(ForcedExitCode) })
	return ctx, func() {
		signal.Stop(sigs)
		stop()
	}
}

func watch(parent context.Context, sigs <-chan os.Signal, logger *zap.Logger, forceExit func()) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	released := make(chan struct{})

	go func() {
		select {
		case sig := <-sigs:
			logger.Info("Shutdown requested", zap.Stringer("signal", sig))
			cancel()
		case <-released:
			return
		}

		select {
		case sig := <-sigs:
			logger.Warn("Second signal, forcing exit", zap.Stringer("signal", sig))
			forceExit()
		case <-released:
		}
	}()

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			close(released)
			cancel()
		})
	}
}
