package loader_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/asdfjk123/renode/core/control"
	"github.com/asdfjk123/renode/core/lifecycle"
	"github.com/asdfjk123/renode/core/loader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeServer struct {
	name     string
	enabled  bool
	startErr error
	panics   bool
	started  atomic.Int32
	stopped  atomic.Int32
	arrived  chan struct{}
	release  chan struct{}
}

func (f *fakeServer) Name() string    { return f.name }
func (f *fakeServer) IsEnabled() bool { return f.enabled }

func (f *fakeServer) Start(cc *control.Context) error {
	if f.arrived != nil {
		f.arrived <- struct{}{}
		<-f.release
	}
	if f.panics {
		panic("start")
	}
	if f.startErr != nil {
		return f.startErr
	}
	f.started.Add(1)
	return nil
}

func (f *fakeServer) Stop() error {
	f.stopped.Add(1)
	return nil
}

func newContext(hooks *lifecycle.Registry) *control.Context {
	return control.NewContext(context.Background(), hooks, zap.NewNop())
}

func TestManager_StartAll(t *testing.T) {
	hooks := lifecycle.NewRegistry(zap.NewNop())
	cc := newContext(hooks)

	api := &fakeServer{name: "api", enabled: true}
	robot := &fakeServer{name: "robot", enabled: true, startErr: errors.New("address in use")}
	broken := &fakeServer{name: "broken", enabled: true, panics: true}
	off := &fakeServer{name: "off", enabled: false}

	m := loader.NewManager(zap.NewNop())
	m.Register(api)
	m.Register(robot)
	m.Register(broken)
	m.Register(off)

	results := m.StartAll(cc)
	require.Len(t, results, 3)

	assert.Equal(t, "api", results[0].Name)
	assert.True(t, results[0].Started)
	assert.Equal(t, "robot", results[1].Name)
	assert.False(t, results[1].Started)
	assert.Error(t, results[1].Err)
	assert.False(t, results[2].Started)
	assert.ErrorContains(t, results[2].Err, "panic")

	assert.Equal(t, []string{"api"}, hooks.Names())
	assert.Equal(t, 1, cc.ActiveServers())
	assert.Equal(t, int32(0), off.started.Load())

	hooks.TriggerBeforeExit()
	assert.Equal(t, int32(1), api.stopped.Load())
	assert.Equal(t, int32(0), robot.stopped.Load())
}

func TestManager_StartAllConcurrently(t *testing.T) {
	hooks := lifecycle.NewRegistry(zap.NewNop())
	cc := newContext(hooks)

	// Both servers block inside Start until both have entered it, which only
	// completes if they start at the same time.
	arrived := make(chan struct{})
	release := make(chan struct{})
	a := &fakeServer{name: "api", enabled: true, arrived: arrived, release: release}
	b := &fakeServer{name: "robot", enabled: true, arrived: arrived, release: release}

	m := loader.NewManager(nil)
	m.Register(a)
	m.Register(b)

	go func() {
		<-arrived
		<-arrived
		close(release)
	}()

	results := m.StartAll(cc)
	require.Len(t, results, 2)
	assert.ElementsMatch(t, []string{"api", "robot"}, hooks.Names())
}

func TestManager_RegistryDraining(t *testing.T) {
	hooks := lifecycle.NewRegistry(zap.NewNop())
	hooks.TriggerBeforeExit()
	cc := newContext(hooks)

	s := &fakeServer{name: "late", enabled: true}
	m := loader.NewManager(zap.NewNop())
	m.Register(s)

	results := m.StartAll(cc)
	require.Len(t, results, 1)
	assert.False(t, results[0].Started)
	assert.ErrorIs(t, results[0].Err, lifecycle.ErrDraining)
	assert.Equal(t, int32(1), s.stopped.Load())
}
