// Package coordinator binds the engine to the primary OS thread and runs the
// control loop beside it.
//
// Exactly two long-lived threads exist. The calling goroutine, which main has
// locked to the process's primary OS thread, blocks in the engine's run loop.
// One spawned goroutine, locked to its own OS thread, runs the startup callback
// (which starts the optional servers) and then the control loop.
//
// The control goroutine is running before the engine loop starts, and it
// releases the engine loop from a deferred call, so neither a normal return
// nor a panic in the loop can leave the primary thread blocked.
package coordinator
