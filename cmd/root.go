package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/asdfjk123/renode/core/bootstrap"
	"github.com/asdfjk123/renode/core/logger"
	"github.com/asdfjk123/renode/core/options"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// @title Renode Control API
// @version 1.0
// @description Remote control of a running emulation.
// @BasePath /

// environment holds the process-level inputs of a run.
type environment struct {
	stdin  io.Reader
	stdout io.Writer
	// envDir is where the .env file is looked up.
	envDir string
	// boot overrides sequencer defaults.
	boot bootstrap.Config
}

func defaultEnvironment() *environment {
	return &environment{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		envDir: ".",
	}
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = newRootCmd(defaultEnvironment())

func newRootCmd(env *environment) *cobra.Command {
	var (
		raw  options.Raw
		opts options.StartupOptions
	)

	cmd := &cobra.Command{
		Use:   "renode [flags] [script...]",
		Short: "Renode emulation framework",
		Long: `Renode runs embedded software on emulated hardware.
Scripts given as arguments are executed in the monitor before it accepts input.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			raw.Scripts = args
			var err error
			opts, err = options.Parse(raw)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, env)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&raw.Version, "version", false, "print version information and exit")
	f.BoolVar(&raw.Console, "console", false, "run the monitor in the current terminal")
	f.BoolVar(&raw.DisableGUI, "disable-gui", false, "run without any monitor window")
	f.StringVar(&raw.ConfigFile, "config", "", "path to renode.config")
	f.BoolVar(&raw.ServerMode, "server-mode", false, "start the API server")
	f.IntVar(&raw.ServerPort, "server-mode-port", 0, fmt.Sprintf("API server port (default: first free port in %d-%d)", options.DefaultPortRangeStart, options.DefaultPortRangeEnd))
	f.IntVar(&raw.RobotPort, "robot-server-port", 0, "start the test automation server on this port")
	f.StringVar(&raw.BindFailure, "bind-failure", string(options.BindFailureAbort), "what to do when the API server port cannot be bound (abort, disable)")
	f.BoolVar(&raw.Plain, "plain", false, "disable colors in log output")
	f.StringVar(&raw.PIDFile, "pid-file", "", "write the process ID to this file")
	f.StringArrayVarP(&raw.Execute, "execute", "e", nil, "monitor command to run at startup (repeatable)")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &options.ArgumentError{Err: err}
	})
	cmd.SetOut(env.stdout)
	f.SortFlags = false
	return cmd
}

// Execute runs the root command and exits with status 1 on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
