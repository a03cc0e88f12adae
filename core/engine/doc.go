// Package engine provides the emulation engine handle.
//
// The Engine is created by an explicit call to New, never lazily. Its Run method
// is the engine's event loop and must be called on the process's primary OS
// thread; other goroutines hand work to that thread with Post or Invoke.
//
// # Lifecycle
//
//   - New: construct with an already-built logger.
//   - Run: block, executing dispatched actions, until Finish is called.
//   - Finish: release Run. Safe to call before Run and more than once.
//   - Dispose: tear the engine down. Only the first call does any work.
package engine
