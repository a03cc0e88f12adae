// Package console holds the process-wide display mode.
//
// The mode is configured once during bootstrap, before any second goroutine
// exists and before any console or window title is set. SetTitle refuses to run
// until the mode is known.
package console
