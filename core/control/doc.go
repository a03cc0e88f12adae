// Package control provides the Context handed to the control thread's startup
// callback.
//
// A Context is a typed capability registry: components publish an
// implementation of an interface with Provide and consumers find it with
// Lookup, keyed by the interface type. The coordinator never needs to know
// which optional servers exist; each one registers its own stop routine with
// OnShutdown as part of starting.
//
// # Usage
//
//	control.Provide[monitor.Executor](cc, mon)
//	...
//	if exec, ok := control.Lookup[monitor.Executor](cc); ok {
//	    out, err := exec.Execute(ctx, "status")
//	}
package control
