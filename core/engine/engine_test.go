package engine_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/asdfjk123/renode/core/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e, err := engine.New(zap.NewNop(), engine.Config{})
	require.NoError(t, err)
	return e
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		logger  *zap.Logger
		cfg     engine.Config
		wantErr bool
	}{
		{"Valid", zap.NewNop(), engine.Config{}, false},
		{"CustomQueue", zap.NewNop(), engine.Config{QueueSize: 4}, false},
		{"NilLogger", nil, engine.Config{}, true},
		{"NegativeQueue", zap.NewNop(), engine.Config{QueueSize: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := engine.New(tt.logger, tt.cfg)
			if tt.wantErr {
				var initErr *engine.InitError
				assert.ErrorAs(t, err, &initErr)
				assert.Nil(t, e)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, e)
		})
	}
}

func TestEngine_FinishBeforeRun(t *testing.T) {
	e := newEngine(t)
	e.Finish()
	e.Finish()

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not observe an earlier Finish")
	}
}

func TestEngine_Invoke(t *testing.T) {
	e := newEngine(t)
	go e.Run()
	defer e.Finish()

	var state engine.State
	err := e.Invoke(context.Background(), func() {
		e.Start()
		state = e.Status().State
	})
	require.NoError(t, err)
	assert.Equal(t, engine.StateRunning, state)
	assert.Equal(t, uint64(1), e.Status().Dispatched)
}

func TestEngine_InvokeSurvivesPanic(t *testing.T) {
	e := newEngine(t)
	go e.Run()
	defer e.Finish()

	err := e.Invoke(context.Background(), func() { panic("action") })
	require.NoError(t, err)

	err = e.Invoke(context.Background(), func() {})
	assert.NoError(t, err)
}

func TestEngine_PostAfterFinish(t *testing.T) {
	e := newEngine(t)
	e.Finish()
	assert.ErrorIs(t, e.Post(func() {}), engine.ErrFinished)
}

func TestEngine_PostRacingFinish(t *testing.T) {
	for round := 0; round < 50; round++ {
		e, err := engine.New(zap.NewNop(), engine.Config{QueueSize: 4})
		require.NoError(t, err)

		runDone := make(chan struct{})
		go func() {
			e.Run()
			close(runDone)
		}()

		var accepted, executed atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 20; j++ {
					if e.Post(func() { executed.Add(1) }) == nil {
						accepted.Add(1)
					}
				}
			}()
		}
		e.Finish()
		wg.Wait()
		<-runDone

		// Every accepted action ran before Run returned.
		assert.Equal(t, accepted.Load(), executed.Load(), "round %d", round)
	}
}

func TestEngine_Dispose(t *testing.T) {
	e := newEngine(t)

	assert.True(t, e.Dispose())
	assert.False(t, e.Dispose())
	assert.True(t, e.Finished())
	assert.True(t, e.Status().Disposed)
	assert.ErrorIs(t, e.Post(func() {}), engine.ErrDisposed)
}
