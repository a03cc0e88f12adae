// Package monitor is the interactive control loop run on the control thread.
//
// Commands are parsed with a cobra command tree built per invocation. Commands
// that touch the engine are executed on the engine thread through
// engine.Invoke; the monitor itself never calls into the engine from its own
// goroutine.
//
// # Capabilities
//
// Attach publishes the monitor as the Executor capability of the control
// context, so the network control servers can run commands without importing
// this package's internals. The monitor in turn looks up a Fetcher capability
// for the fetch command; when none is provided the command reports that remote
// artifacts are not configured.
//
// # Commands
//
//   - version: print build identification
//   - quit, q: request shutdown
//   - status, start, pause: engine state
//   - history [n]: recent commands
//   - settings <section> <key>: read renode.config
//   - fetch <object>: download a remote artifact into the cache
//   - include <file>: run commands from a script file
package monitor
