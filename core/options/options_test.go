package options_test

import (
	"testing"

	"github.com/asdfjk123/renode/core/console"
	"github.com/asdfjk123/renode/core/options"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		raw      options.Raw
		wantFlag string
		wantErr  bool
	}{
		{"Defaults", options.Raw{}, "", false},
		{"ServerModeScan", options.Raw{ServerMode: true}, "", false},
		{"ServerModeExplicit", options.Raw{ServerMode: true, ServerPort: 9999}, "", false},
		{"PortWithoutServerMode", options.Raw{ServerPort: 9999}, "server-mode-port", true},
		{"ServerPortOutOfRange", options.Raw{ServerMode: true, ServerPort: 70000}, "server-mode-port", true},
		{"RobotPortNegative", options.Raw{RobotPort: -1}, "robot-server-port", true},
		{"ConflictingDisplay", options.Raw{Console: true, DisableGUI: true}, "", true},
		{"UnknownPolicy", options.Raw{BindFailure: "retry"}, "bind-failure", true},
		{"DisablePolicy", options.Raw{BindFailure: "Disable"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := options.Parse(tt.raw)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var argErr *options.ArgumentError
			require.ErrorAs(t, err, &argErr)
			assert.Equal(t, tt.wantFlag, argErr.Flag)
		})
	}
}

func TestParse_DisplayMode(t *testing.T) {
	opts, err := options.Parse(options.Raw{})
	require.NoError(t, err)
	assert.Equal(t, console.ModeWindow, opts.DisplayMode)
	assert.Equal(t, options.BindFailureAbort, opts.BindFailure)

	opts, err = options.Parse(options.Raw{Console: true})
	require.NoError(t, err)
	assert.Equal(t, console.ModeConsole, opts.DisplayMode)

	opts, err = options.Parse(options.Raw{DisableGUI: true})
	require.NoError(t, err)
	assert.Equal(t, console.ModeHeadless, opts.DisplayMode)
}

func TestStartupOptions_CopiesSlices(t *testing.T) {
	raw := options.Raw{Execute: []string{"start"}, Scripts: []string{"a.resc"}}
	opts, err := options.Parse(raw)
	require.NoError(t, err)

	raw.Execute[0] = "pause"
	cmds := opts.Execute()
	cmds[0] = "quit"

	assert.Equal(t, []string{"start"}, opts.Execute())
	assert.Equal(t, []string{"a.resc"}, opts.Scripts())
}
