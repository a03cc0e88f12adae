// Package bootstrap is the startup sequencer.
//
// It turns validated StartupOptions into a configured process in a fixed
// order, before any goroutine besides main exists:
//
//  1. HandleVersionQuery: print identification and stop, if requested.
//  2. ConfigureEnvironment: display mode, settings file, PID file.
//  3. InitializeEngine: construct the engine exactly once and install its
//     teardown with the hook registry.
//  4. MaybeBindControlListener: bind the server-mode listener, explicitly or by
//     scanning the default port range.
//
// The logger is built by the caller and passed in, so the engine never has to
// construct logging lazily and the two never depend on each other's
// initialization order.
package bootstrap
