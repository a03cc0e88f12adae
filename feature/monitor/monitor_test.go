package monitor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/asdfjk123/renode/core/control"
	"github.com/asdfjk123/renode/core/engine"
	"github.com/asdfjk123/renode/core/lifecycle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	mu      sync.Mutex
	state   engine.State
	invoked int
	err     error
}

func (f *fakeEngine) Invoke(_ context.Context, fn func()) error {
	f.mu.Lock()
	f.invoked++
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return err
	}
	fn()
	return nil
}

func (f *fakeEngine) Start() { f.state = engine.StateRunning }
func (f *fakeEngine) Pause() { f.state = engine.StatePaused }
func (f *fakeEngine) Status() engine.Status {
	return engine.Status{State: f.state, Uptime: 90 * time.Second, Dispatched: 7}
}

type fakeSettings map[string]string

func (s fakeSettings) Get(section, key string) (string, bool) {
	v, ok := s[section+"."+key]
	return v, ok
}

type fakeFetcher struct{ path string }

func (f fakeFetcher) Fetch(_ context.Context, object string) (string, error) {
	return filepath.Join(f.path, object), nil
}

func newTestMonitor(t *testing.T) (*Monitor, *fakeEngine, *control.Context) {
	t.Helper()
	eng := &fakeEngine{state: engine.StatePaused}
	m := New(Config{
		Engine:   eng,
		Settings: fakeSettings{"general.terminal": "Termsharp"},
		Version:  "Renode v1.0.0",
	})
	cc := control.NewContext(context.Background(), lifecycle.NewRegistry(nil), nil)
	m.Attach(cc)
	return m, eng, cc
}

func TestExecute_Commands(t *testing.T) {
	m, _, cc := newTestMonitor(t)
	ctx := cc.Context()

	tests := []struct {
		name     string
		line     string
		contains string
		wantErr  string
	}{
		{"Version", "version", "Renode v1.0.0", ""},
		{"Status", "status", "state: paused", ""},
		{"Start", "start", "Starting emulation", ""},
		{"Settings", "settings general terminal", "general.terminal = Termsharp", ""},
		{"Settings Missing", "settings general other", "general.other is not set", ""},
		{"Help", "help", "Available Commands", ""},
		{"Unknown", "frobnicate", "", "unknown command"},
		{"Bad Args", "settings general", "", "accepts 2 arg(s)"},
		{"Unterminated Quote", `include "abc`, "", "unterminated quote"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := m.Execute(ctx, tt.line)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out, tt.contains)
		})
	}
}

func TestExecute_EngineCommandsRunThroughInvoke(t *testing.T) {
	m, eng, cc := newTestMonitor(t)

	_, err := m.Execute(cc.Context(), "start")
	require.NoError(t, err)
	assert.Equal(t, engine.StateRunning, eng.state)

	_, err = m.Execute(cc.Context(), "pause")
	require.NoError(t, err)
	assert.Equal(t, engine.StatePaused, eng.state)
	assert.Equal(t, 2, eng.invoked)

	eng.err = engine.ErrFinished
	_, err = m.Execute(cc.Context(), "status")
	assert.ErrorIs(t, err, engine.ErrFinished)
}

func TestExecute_BlankAndComment(t *testing.T) {
	m, _, cc := newTestMonitor(t)

	for _, line := range []string{"", "   ", "# a comment"} {
		out, err := m.Execute(cc.Context(), line)
		assert.NoError(t, err)
		assert.Empty(t, out)
	}

	recent, err := m.cfg.History.Recent(cc.Context(), 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestExecute_Quit(t *testing.T) {
	m, _, cc := newTestMonitor(t)

	out, err := m.Execute(cc.Context(), "q")
	require.NoError(t, err)
	assert.Contains(t, out, "quitting")

	select {
	case <-cc.Done():
	default:
		t.Fatal("quit did not request shutdown")
	}
}

func TestExecute_History(t *testing.T) {
	m, _, cc := newTestMonitor(t)
	ctx := cc.Context()

	for _, l := range []string{"version", "status", "start"} {
		_, err := m.Execute(ctx, l)
		require.NoError(t, err)
	}

	out, err := m.Execute(ctx, "history 2")
	require.NoError(t, err)
	assert.Contains(t, out, "start")
	assert.Contains(t, out, "history 2")
	assert.NotContains(t, out, "version")

	_, err = m.Execute(ctx, "history zero")
	assert.ErrorContains(t, err, "invalid count")
}

func TestExecute_Fetch(t *testing.T) {
	m, _, cc := newTestMonitor(t)

	_, err := m.Execute(cc.Context(), "fetch zephyr.elf")
	assert.ErrorIs(t, err, ErrNoFetcher)

	control.Provide[Fetcher](cc, fakeFetcher{path: "/cache"})
	out, err := m.Execute(cc.Context(), "fetch zephyr.elf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/cache", "zephyr.elf")+"\n", out)
}

func TestAttach_PublishesExecutor(t *testing.T) {
	m, _, cc := newTestMonitor(t)

	exec, ok := control.Lookup[Executor](cc)
	require.True(t, ok)
	assert.Same(t, m, exec)
}

func TestRunScript(t *testing.T) {
	m, eng, cc := newTestMonitor(t)
	dir := t.TempDir()
	m.cfg.WorkingDir = dir

	script := "# boot\nstart\n\nstatus\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "boot.resc"), []byte(script), 0o644))

	var out bytes.Buffer
	require.NoError(t, m.RunScript(cc.Context(), "boot.resc", &out))
	assert.Equal(t, engine.StateRunning, eng.state)
	assert.Contains(t, out.String(), "state: running")

	t.Run("Include", func(t *testing.T) {
		res, err := m.Execute(cc.Context(), "include boot.resc")
		require.NoError(t, err)
		assert.Contains(t, res, "Starting emulation")
	})

	t.Run("Failing Line", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.resc"), []byte("version\nbogus\nquit\n"), 0o644))
		err := m.RunScript(cc.Context(), "bad.resc", &out)
		assert.ErrorContains(t, err, "bad.resc:2")
		assert.NoError(t, cc.Context().Err())
	})

	t.Run("Missing File", func(t *testing.T) {
		err := m.RunScript(cc.Context(), "nope.resc", &out)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
}

func TestStartup_ContinuesAfterFailure(t *testing.T) {
	m, eng, cc := newTestMonitor(t)

	var out bytes.Buffer
	m.Startup(cc.Context(), []string{filepath.Join(t.TempDir(), "missing.resc")}, []string{"bogus", "start"}, &out)

	assert.Equal(t, engine.StateRunning, eng.state)
	assert.Equal(t, 2, strings.Count(out.String(), "error:"))
}

func runLoop(t *testing.T, m *Monitor, cc *control.Context, input string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	done := make(chan error, 1)
	go func() { done <- m.Run(cc, strings.NewReader(input), &out) }()

	select {
	case err := <-done:
		return out.String(), err
	case <-time.After(2 * time.Second):
		t.Fatal("monitor loop did not return")
		return "", nil
	}
}

func TestRun_QuitEndsLoop(t *testing.T) {
	m, _, cc := newTestMonitor(t)

	out, err := runLoop(t, m, cc, "version\nquit\nstart\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Renode v1.0.0")
	assert.True(t, strings.HasPrefix(out, Prompt))

	recent, _ := m.cfg.History.Recent(context.Background(), 10)
	assert.Equal(t, []string{"version", "quit"}, recent)
}

func TestRun_EOFWithoutServers(t *testing.T) {
	m, _, cc := newTestMonitor(t)

	out, err := runLoop(t, m, cc, "bogus\n")
	require.NoError(t, err)
	assert.Contains(t, out, "error: unknown command")
}

func TestRun_EOFWaitsForRemoteShutdown(t *testing.T) {
	m, _, cc := newTestMonitor(t)
	cc.ServerStarted()

	done := make(chan error, 1)
	go func() { done <- m.Run(cc, strings.NewReader(""), &bytes.Buffer{}) }()

	select {
	case <-done:
		t.Fatal("loop returned while a server was running")
	case <-time.After(50 * time.Millisecond):
	}

	cc.RequestShutdown()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop ignored shutdown request")
	}
}

func TestRun_NoInputWaitsForShutdown(t *testing.T) {
	m, _, cc := newTestMonitor(t)

	done := make(chan error, 1)
	go func() { done <- m.Run(cc, nil, &bytes.Buffer{}) }()

	cc.RequestShutdown()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop ignored shutdown request")
	}
}

func TestSplitArgs(t *testing.T) {
	args, err := splitArgs(`include "my script.resc"  extra`)
	require.NoError(t, err)
	assert.Equal(t, []string{"include", "my script.resc", "extra"}, args)

	args, err = splitArgs(`settings "" key`)
	require.NoError(t, err)
	assert.Equal(t, []string{"settings", "", "key"}, args)
}
