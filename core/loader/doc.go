// Package loader starts the optional network control servers.
//
// Each server implements the Server interface. The Manager holds the registry
// of servers and starts the enabled ones from the control thread's startup
// callback.
//
// # Server Interface
//
//	type Server interface {
//	    Name() string
//	    IsEnabled() bool
//	    Start(cc *control.Context) error
//	    Stop() error
//	}
//
// # Manager
//
// StartAll starts the enabled servers concurrently. A server that fails to
// start is logged and skipped; the others are unaffected. A server that starts
// has its Stop registered as a shutdown hook straight away, so it is asked to
// stop even if something else fails later.
package loader
