package lifecycle

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
)

// ErrDraining is returned by Register once TriggerBeforeExit has started.
var ErrDraining = errors.New("lifecycle: registry is draining")

// Hook is a zero-argument shutdown callback.
type Hook func() error

// HookFailure records a hook that returned an error or panicked during drain.
type HookFailure struct {
	Name  string
	Index int
	Err   error
}

func (f *HookFailure) Error() string {
	return fmt.Sprintf("shutdown hook %q (#%d) failed: %v", f.Name, f.Index, f.Err)
}

func (f *HookFailure) Unwrap() error {
	return f.Err
}

type entry struct {
	name string
	hook Hook
}

// Registry is an ordered, append-only list of shutdown hooks plus the final
// teardown routine.
type Registry struct {
	logger *zap.Logger

	mu       sync.Mutex
	hooks    []entry
	draining bool

	drainOnce sync.Once
	failures  []*HookFailure

	teardownMu  sync.Mutex
	teardown    func() error
	teardownRan bool
}

// NewRegistry creates an empty registry. A nil logger is replaced by a no-op logger.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{logger: logger}
}

// Register appends a hook. It is safe for concurrent use.
func (r *Registry) Register(name string, hook Hook) error {
	if hook == nil {
		return fmt.Errorf("lifecycle: nil hook %q", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.draining {
		return ErrDraining
	}
	r.hooks = append(r.hooks, entry{name: name, hook: hook})
	return nil
}

// Len returns the number of registered hooks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.hooks)
}

// Names returns hook names in registration order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.hooks))
	for _, e := range r.hooks {
		names = append(names, e.name)
	}
	return names
}

// TriggerBeforeExit drains the hook list once. Subsequent calls return the
// failures of the first drain without running anything.
func (r *Registry) TriggerBeforeExit() []*HookFailure {
	r.drainOnce.Do(func() {
		r.mu.Lock()
		r.draining = true
		hooks := r.hooks
		r.hooks = nil
		r.mu.Unlock()

		r.logger.Debug("Draining shutdown hooks", zap.Int("count", len(hooks)))

		for i, e := range hooks {
			if err := runHook(e.hook); err != nil {
				failure := &HookFailure{Name: e.name, Index: i, Err: err}
				r.failures = append(r.failures, failure)
				r.logger.Error("Shutdown hook failed", zap.String("hook", e.name), zap.Error(err))
			}
		}
	})
	return r.failures
}

func runHook(h Hook) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return h()
}

// SetTeardown installs the final engine teardown routine.
func (r *Registry) SetTeardown(fn func() error) {
	r.teardownMu.Lock()
	defer r.teardownMu.Unlock()
	r.teardown = fn
}

// OnProcessExit runs the teardown routine if it has not run yet. It reports
// whether any teardown work was done.
func (r *Registry) OnProcessExit() bool {
	r.teardownMu.Lock()
	fn := r.teardown
	if fn == nil || r.teardownRan {
		r.teardownMu.Unlock()
		return false
	}
	r.teardownRan = true
	r.teardownMu.Unlock()

	if err := runHook(fn); err != nil {
		r.logger.Error("Engine teardown failed", zap.Error(err))
	}
	return true
}

// Exit runs the teardown and terminates the process with code.
func (r *Registry) Exit(code int) {
	r.OnProcessExit()
	_ = r.logger.Sync()
	os.Exit(code)
}
