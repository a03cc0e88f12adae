package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/asdfjk123/renode/core/bootstrap"
	"github.com/asdfjk123/renode/core/config"
	"github.com/asdfjk123/renode/core/console"
	"github.com/asdfjk123/renode/core/control"
	"github.com/asdfjk123/renode/core/coordinator"
	"github.com/asdfjk123/renode/core/database"
	"github.com/asdfjk123/renode/core/lifecycle"
	"github.com/asdfjk123/renode/core/loader"
	"github.com/asdfjk123/renode/core/logger"
	"github.com/asdfjk123/renode/core/options"
	"github.com/asdfjk123/renode/core/settings"
	"github.com/asdfjk123/renode/core/storage"
	"github.com/asdfjk123/renode/feature/api"
	"github.com/asdfjk123/renode/feature/artifacts"
	"github.com/asdfjk123/renode/feature/monitor"
	"github.com/asdfjk123/renode/feature/robot"
	"github.com/asdfjk123/renode/feature/terminal"

	"go.uber.org/zap"
)

// run performs the whole process lifecycle for one invocation.
func run(ctx context.Context, opts options.StartupOptions, env *environment) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// 1. Version query short-circuits everything else.
	info := bootstrap.CurrentInfo()
	if bootstrap.HandleVersionQuery(opts, env.stdout, info) {
		return nil
	}

	// 2. Load Configuration
	cfg, err := config.LoadConfig(env.envDir)
	if err != nil {
		return err
	}
	if opts.Plain {
		cfg.Log.Plain = true
	}

	// 3. Initialize Logger
	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return err
	}
	defer logg.Sync()
	zap.ReplaceGlobals(logg)

	hooks := lifecycle.NewRegistry(logg)
	defer hooks.OnProcessExit()
	// Early returns below still drain hooks such as PID file removal.
	defer hooks.TriggerBeforeExit()

	// 4. Bootstrap: environment, engine, control listener.
	boot := env.boot
	boot.Engine = cfg.Engine
	boot.Host = cfg.Server.Host
	if boot.Stdout == nil {
		boot.Stdout = env.stdout
	}
	seq := bootstrap.New(opts, boot, logg, hooks)

	store, err := seq.ConfigureEnvironment()
	if err != nil {
		return err
	}
	eng, err := seq.InitializeEngine()
	if err != nil {
		return err
	}
	ln, err := seq.MaybeBindControlListener()
	if err != nil {
		return err
	}

	// 5. Signals: the first one requests shutdown, a second one forces exit.
	sigCtx, stopSignals := coordinator.HandleSignals(ctx, hooks, logg)
	defer stopSignals()

	workDir := cfg.Server.WorkingDir
	if workDir == "" {
		workDir, _ = os.Getwd()
	}
	version := info.String()

	var mon *monitor.Monitor
	startup := func(cc *control.Context) {
		history, closeHistory := openHistory(cfg.Database, seq.UserDir(), logg)

		mon = monitor.New(monitor.Config{
			Engine:     eng,
			Settings:   store,
			History:    history,
			Logger:     logg,
			Version:    version,
			WorkingDir: workDir,
		})
		mon.Attach(cc)

		var features []api.Feature
		if feat := openArtifacts(cfg.Storage, seq.UserDir(), logg); feat != nil {
			control.Provide[monitor.Fetcher](cc, feat.Service())
			features = append(features, feat)
		}

		mgr := loader.NewManager(logg)
		mgr.Register(api.New(ln, cfg.Server, eng, version, logg, features...))
		mgr.Register(robot.New(cfg.Server.Host, opts.RobotPort, version, logg))
		for _, res := range mgr.StartAll(cc) {
			if res.Err != nil {
				logg.Error("Control server unavailable", zap.String("server", res.Name), zap.Error(res.Err))
			}
		}

		// Registered after the servers so they stop before history goes away.
		if closeHistory != nil {
			if err := cc.OnShutdown("history-db", closeHistory); err != nil {
				logg.Warn("Could not register history shutdown", zap.Error(err))
			}
		}
	}

	loop := func(cc *control.Context) error {
		mon.Startup(cc.Context(), opts.Scripts(), opts.Execute(), env.stdout)
		switch {
		case !opts.DisplayMode.Interactive():
			return mon.Run(cc, nil, env.stdout)
		case useTerminal(opts.DisplayMode, store, env.stdout):
			return terminal.Run(cc, mon, info.Name+" monitor", env.stdin, env.stdout)
		default:
			return mon.Run(cc, env.stdin, env.stdout)
		}
	}

	// 6. Engine on this thread, monitor on the control thread.
	runErr := coordinator.New(eng, hooks, logg).Run(sigCtx, startup, loop)

	// 7. Graceful Shutdown
	logg.Info("Shutting down")
	if failures := hooks.TriggerBeforeExit(); len(failures) > 0 {
		logg.Warn("Some shutdown hooks failed", zap.Int("failed", len(failures)))
	}
	hooks.OnProcessExit()
	return runErr
}

// useTerminal reports whether the full-screen terminal replaces the line monitor.
func useTerminal(mode console.Mode, store *settings.Store, w io.Writer) bool {
	if mode != console.ModeWindow || !console.IsTerminal(w) {
		return false
	}
	name, _ := store.Get("general", "terminal")
	return strings.EqualFold(name, terminal.Name)
}

// openHistory connects the history database, falling back to memory.
func openHistory(cfg database.Config, userDir string, logg *zap.Logger) (monitor.History, func() error) {
	if !cfg.Enabled {
		return monitor.NewMemoryHistory(monitor.DefaultHistorySize), nil
	}
	if cfg.Driver == database.DriverSQLite && cfg.Path == "" {
		cfg.Path = filepath.Join(userDir, "history.db")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logg.Warn("History database unavailable, keeping history in memory", zap.Error(err))
		return monitor.NewMemoryHistory(monitor.DefaultHistorySize), nil
	}
	history, err := monitor.NewGormHistory(db)
	if err != nil {
		logg.Warn("History table unavailable, keeping history in memory", zap.Error(err))
		_ = database.Close(db)
		return monitor.NewMemoryHistory(monitor.DefaultHistorySize), nil
	}
	logg.Debug("Monitor history persisted", zap.String("driver", cfg.Driver))
	return history, func() error { return database.Close(db) }
}

// openArtifacts creates the artifact feature when remote storage is enabled.
func openArtifacts(cfg storage.Config, userDir string, logg *zap.Logger) *artifacts.Feature {
	if !cfg.Enabled {
		return nil
	}
	client, err := storage.NewClient(cfg)
	if err != nil {
		logg.Warn("Remote artifacts disabled", zap.Error(err))
		return nil
	}
	return artifacts.NewFeature(client, cfg.Bucket, filepath.Join(userDir, "cache"), logg)
}
