// Package options defines StartupOptions, the validated snapshot of the command
// line handed to the bootstrap sequencer.
//
// StartupOptions is a value type. It is built once by the cmd package from
// parsed flags, validated with Validate, and only ever copied afterwards.
package options
