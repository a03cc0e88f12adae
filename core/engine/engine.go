package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrFinished is returned when work is dispatched after the run loop stopped.
	ErrFinished = errors.New("engine: run loop finished")
	// ErrDisposed is returned by operations on a disposed engine.
	ErrDisposed = errors.New("engine: disposed")
)

// InitError wraps a failure while constructing the engine.
type InitError struct {
	Err error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("engine initialization failed: %v", e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// State is the emulation state reported by Status.
type State string

const (
	StatePaused  State = "paused"
	StateRunning State = "running"
)

// Status is a snapshot of the engine.
type Status struct {
	State      State         `json:"state"`
	Uptime     time.Duration `json:"uptime"`
	Dispatched uint64        `json:"dispatched"`
	Disposed   bool          `json:"disposed"`
}

// Config tunes the engine.
type Config struct {
	// QueueSize is the capacity of the dispatch queue.
	QueueSize int `mapstructure:"queue_size" default:"64"`
}

// Engine is the emulation engine handle.
type Engine struct {
	logger *zap.Logger

	actions    chan func()
	finish     chan struct{}
	finishOnce sync.Once

	// postMu lets Run wait out in-flight Posts before its final drain.
	postMu  sync.RWMutex
	drained bool

	mu      sync.RWMutex
	state   State
	started time.Time

	dispatched atomic.Uint64
	disposed   atomic.Bool
}

// New constructs an engine.
func New(logger *zap.Logger, cfg Config) (*Engine, error) {
	if logger == nil {
		return nil, &InitError{Err: errors.New("logger is required")}
	}
	if cfg.QueueSize < 0 {
		return nil, &InitError{Err: fmt.Errorf("invalid queue size %d", cfg.QueueSize)}
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 64
	}

	return &Engine{
		logger:  logger.Named("engine"),
		actions: make(chan func(), cfg.QueueSize),
		finish:  make(chan struct{}),
		state:   StatePaused,
		started: time.Now(),
	}, nil
}

// Run executes dispatched actions on the calling goroutine until Finish.
func (e *Engine) Run() {
	e.logger.Debug("Entering run loop")
	defer e.logger.Debug("Run loop finished")

	for {
		select {
		case <-e.finish:
			e.postMu.Lock()
			e.drained = true
			e.postMu.Unlock()
			e.drainPending()
			return
		case fn := <-e.actions:
			e.execute(fn)
		}
	}
}

// drainPending runs actions queued before Finish so Invoke callers are not left waiting.
func (e *Engine) drainPending() {
	for {
		select {
		case fn := <-e.actions:
			e.execute(fn)
		default:
			return
		}
	}
}

func (e *Engine) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Dispatched action panicked", zap.Any("panic", r))
		}
	}()
	e.dispatched.Add(1)
	fn()
}

// Finish signals Run to return.
func (e *Engine) Finish() {
	e.finishOnce.Do(func() {
		close(e.finish)
	})
}

// Finished reports whether Finish was called.
func (e *Engine) Finished() bool {
	select {
	case <-e.finish:
		return true
	default:
		return false
	}
}

// Post queues fn for execution on the engine thread.
func (e *Engine) Post(fn func()) error {
	if e.disposed.Load() {
		return ErrDisposed
	}

	e.postMu.RLock()
	defer e.postMu.RUnlock()
	if e.drained {
		return ErrFinished
	}
	select {
	case <-e.finish:
		return ErrFinished
	default:
	}

	select {
	case e.actions <- fn:
		return nil
	case <-e.finish:
		return ErrFinished
	}
}

// Invoke runs fn on the engine thread and waits for it to complete.
func (e *Engine) Invoke(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if err := e.Post(func() {
		defer close(done)
		fn()
	}); err != nil {
		return err
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start resumes emulation. Call from the engine thread.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = StateRunning
}

// Pause pauses emulation. Call from the engine thread.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = StatePaused
}

// Status returns a snapshot of the engine.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Status{
		State:      e.state,
		Uptime:     time.Since(e.started),
		Dispatched: e.dispatched.Load(),
		Disposed:   e.disposed.Load(),
	}
}

// Dispose tears the engine down. It reports whether this call did the work.
func (e *Engine) Dispose() bool {
	if !e.disposed.CompareAndSwap(false, true) {
		return false
	}
	e.Finish()

	e.mu.Lock()
	e.state = StatePaused
	e.mu.Unlock()

	e.logger.Info("Engine disposed", zap.Uint64("dispatched", e.dispatched.Load()))
	return true
}
