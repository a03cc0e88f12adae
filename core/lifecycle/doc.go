// Package lifecycle holds the process-wide shutdown hook registry.
//
// Hooks are zero-argument callbacks registered during startup or by optional
// servers while they start. They are drained exactly once, in registration
// order, when the control loop has finished and before the engine is torn down.
//
// # Drain
//
// TriggerBeforeExit runs every hook even if earlier ones fail. Errors and panics
// are converted to HookFailure values and logged; they never block the remaining
// hooks or the final teardown.
//
// # Teardown
//
// The engine teardown is not a hook. It is installed with SetTeardown and run by
// OnProcessExit, which every exit path calls. A guard flag makes repeat calls a
// no-op, so a normal shutdown followed by a forced exit tears down only once.
//
// # Usage
//
//	hooks := lifecycle.NewRegistry(log)
//	defer hooks.OnProcessExit()
//
//	hooks.Register("api-server", srv.Stop)
//	...
//	hooks.TriggerBeforeExit()
package lifecycle
