package monitor

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/asdfjk123/renode/core/control"
	"github.com/asdfjk123/renode/core/engine"

	"github.com/spf13/cobra"
)

// ErrNoFetcher is returned by fetch when no artifact store is configured.
var ErrNoFetcher = errors.New("remote artifacts are not configured")

func (m *Monitor) commandTree(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "monitor",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(out)
	root.SetErr(out)

	root.AddCommand(
		m.versionCmd(),
		m.quitCmd(),
		m.statusCmd(),
		m.startCmd(),
		m.pauseCmd(),
		m.historyCmd(),
		m.settingsCmd(),
		m.fetchCmd(),
		m.includeCmd(),
	)
	return root
}

func (m *Monitor) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build identification",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(m.cfg.Version)
		},
	}
}

func (m *Monitor) quitCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "quit",
		Aliases: []string{"q"},
		Short:   "Shut down",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("Renode is quitting")
			if m.cc != nil {
				m.cc.RequestShutdown()
			}
		},
	}
}

func (m *Monitor) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show engine state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var st engine.Status
			if err := m.cfg.Engine.Invoke(cmd.Context(), func() { st = m.cfg.Engine.Status() }); err != nil {
				return err
			}
			cmd.Printf("state: %s\n", st.State)
			cmd.Printf("uptime: %s\n", st.Uptime.Truncate(time.Second))
			cmd.Printf("dispatched: %d\n", st.Dispatched)
			return nil
		},
	}
}

func (m *Monitor) startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the emulation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := m.cfg.Engine.Invoke(cmd.Context(), m.cfg.Engine.Start); err != nil {
				return err
			}
			cmd.Println("Starting emulation...")
			return nil
		},
	}
}

func (m *Monitor) pauseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause the emulation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := m.cfg.Engine.Invoke(cmd.Context(), m.cfg.Engine.Pause); err != nil {
				return err
			}
			cmd.Println("Pausing emulation...")
			return nil
		},
	}
}

func (m *Monitor) historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [n]",
		Short: "Show recent commands",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := 20
			if len(args) == 1 {
				v, err := strconv.Atoi(args[0])
				if err != nil || v <= 0 {
					return fmt.Errorf("invalid count %q", args[0])
				}
				n = v
			}
			lines, err := m.cfg.History.Recent(cmd.Context(), n)
			if err != nil {
				return err
			}
			for i, l := range lines {
				cmd.Printf("%4d  %s\n", i+1, l)
			}
			return nil
		},
	}
}

func (m *Monitor) settingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settings <section> <key>",
		Short: "Read a renode.config value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if m.cfg.Settings == nil {
				return errors.New("settings are not loaded")
			}
			v, ok := m.cfg.Settings.Get(args[0], args[1])
			if !ok {
				cmd.Printf("%s.%s is not set\n", args[0], args[1])
				return nil
			}
			cmd.Printf("%s.%s = %s\n", args[0], args[1], v)
			return nil
		},
	}
}

func (m *Monitor) fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <object>",
		Short: "Download a remote artifact into the cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if m.cc == nil {
				return ErrNoFetcher
			}
			f, ok := control.Lookup[Fetcher](m.cc)
			if !ok {
				return ErrNoFetcher
			}
			path, err := f.Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cmd.Println(path)
			return nil
		},
	}
}

func (m *Monitor) includeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "include <file>",
		Aliases: []string{"i"},
		Short:   "Run commands from a script file",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return m.RunScript(cmd.Context(), args[0], cmd.OutOrStdout())
		},
	}
}
