// Package logger provides a structured logging facility based on Zap.
//
// The logger is built once, first thing during bootstrap, and handed explicitly
// to every component that needs it, the engine included. Nothing in Renode
// constructs a logger lazily.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json or console
//   - Plain: console output without colors
//
// Output goes to stderr because the monitor writes to stdout.
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	log.Info("Engine ready")
//
//	// In a request handler of a network control server:
//	l := logger.WithRayID(log, c)
//	l.Error("Command failed", zap.Error(err))
package logger
