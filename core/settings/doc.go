// Package settings is the process-wide key/value configuration store backed by
// an INI file (renode.config or the per-user config).
//
// The store is opened once during bootstrap. Defaults are filled in with
// EnsureDefault, which also persists the value so users can discover it. After
// Freeze the store is read-only and safe to share between goroutines.
//
// # Usage
//
//	store, err := settings.Open(path)
//	terminal, err := store.EnsureDefault("general", "terminal", settings.DefaultTerminal)
//	store.Freeze()
package settings
