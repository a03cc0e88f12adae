// Package server holds what the network control servers (the websocket/API
// server and the test-automation server) share: their configuration and the
// Fiber application constructor, which uses json-iterator as the JSON codec.
//
// Ports are not configured here: they come from the command line through
// StartupOptions, because the server-mode listener is bound by the bootstrap
// sequencer before any goroutine is spawned.
package server
