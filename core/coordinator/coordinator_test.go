package coordinator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/asdfjk123/renode/core/control"
	"github.com/asdfjk123/renode/core/lifecycle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeEngine blocks in Run until Finish, like the real engine loop.
type fakeEngine struct {
	runs     atomic.Int32
	finishes atomic.Int32
	once     sync.Once
	stop     chan struct{}

	// controlRunning is sampled when Run starts.
	controlRunning *atomic.Bool
	sawControl     atomic.Bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{stop: make(chan struct{})}
}

func (e *fakeEngine) Run() {
	e.runs.Add(1)
	if e.controlRunning != nil {
		e.sawControl.Store(e.controlRunning.Load())
	}
	<-e.stop
}

func (e *fakeEngine) Finish() {
	e.finishes.Add(1)
	e.once.Do(func() { close(e.stop) })
}

func newCounting(eng Engine, spawned *atomic.Int32) *Coordinator {
	c := New(eng, lifecycle.NewRegistry(zap.NewNop()), zap.NewNop())
	c.spawn = func(fn func()) {
		spawned.Add(1)
		go fn()
	}
	return c
}

func runWithTimeout(t *testing.T, fn func() error) error {
	t.Helper()
	errCh := make(chan error, 1)
	go func() { errCh <- fn() }()
	select {
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("coordinator did not return")
		return nil
	}
}

func TestCoordinator_Run(t *testing.T) {
	eng := newFakeEngine()
	var spawned atomic.Int32
	c := newCounting(eng, &spawned)

	var startups, loops atomic.Int32
	err := runWithTimeout(t, func() error {
		return c.Run(context.Background(),
			func(cc *control.Context) { startups.Add(1) },
			func(cc *control.Context) error { loops.Add(1); return nil },
		)
	})

	require.NoError(t, err)
	assert.Equal(t, int32(1), spawned.Load())
	assert.Equal(t, int32(1), eng.runs.Load())
	assert.Equal(t, int32(1), eng.finishes.Load())
	assert.Equal(t, int32(1), startups.Load())
	assert.Equal(t, int32(1), loops.Load())
}

func TestCoordinator_ControlRunningBeforeEngine(t *testing.T) {
	eng := newFakeEngine()
	var controlRunning atomic.Bool
	eng.controlRunning = &controlRunning
	var spawned atomic.Int32
	c := newCounting(eng, &spawned)

	c.spawn = func(fn func()) {
		spawned.Add(1)
		go func() {
			controlRunning.Store(true)
			fn()
		}()
	}

	err := runWithTimeout(t, func() error {
		return c.Run(context.Background(), nil, func(cc *control.Context) error { return nil })
	})
	require.NoError(t, err)
	assert.True(t, eng.sawControl.Load())
}

func TestCoordinator_PanicReleasesEngine(t *testing.T) {
	eng := newFakeEngine()
	var spawned atomic.Int32
	c := newCounting(eng, &spawned)

	err := runWithTimeout(t, func() error {
		return c.Run(context.Background(), nil, func(cc *control.Context) error {
			panic("monitor crashed")
		})
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "monitor crashed")
	assert.Equal(t, int32(1), eng.finishes.Load())
}

func TestCoordinator_StartupPanicReleasesEngine(t *testing.T) {
	eng := newFakeEngine()
	var spawned atomic.Int32
	c := newCounting(eng, &spawned)

	loopRan := false
	err := runWithTimeout(t, func() error {
		return c.Run(context.Background(),
			func(cc *control.Context) { panic("server wiring") },
			func(cc *control.Context) error { loopRan = true; return nil },
		)
	})

	assert.Error(t, err)
	assert.False(t, loopRan)
	assert.Equal(t, int32(1), eng.runs.Load())
}

func TestCoordinator_LoopErrorReturned(t *testing.T) {
	eng := newFakeEngine()
	var spawned atomic.Int32
	c := newCounting(eng, &spawned)
	boom := errors.New("stdin closed")

	err := runWithTimeout(t, func() error {
		return c.Run(context.Background(), nil, func(cc *control.Context) error { return boom })
	})
	assert.ErrorIs(t, err, boom)
}

func TestCoordinator_ContextCancelStopsLoop(t *testing.T) {
	eng := newFakeEngine()
	var spawned atomic.Int32
	c := newCounting(eng, &spawned)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := runWithTimeout(t, func() error {
		return c.Run(ctx, nil, func(cc *control.Context) error {
			<-cc.Done()
			return nil
		})
	})
	assert.NoError(t, err)
	assert.Equal(t, int32(1), eng.finishes.Load())
}

func TestCoordinator_ExternalFinishStopsLoop(t *testing.T) {
	eng := newFakeEngine()
	var spawned atomic.Int32
	c := newCounting(eng, &spawned)

	err := runWithTimeout(t, func() error {
		return c.Run(context.Background(),
			func(cc *control.Context) { go eng.Finish() },
			func(cc *control.Context) error {
				<-cc.Done()
				return nil
			},
		)
	})
	assert.NoError(t, err)
}
