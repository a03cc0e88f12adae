// Package terminal is the full-screen monitor used in window display mode.
//
// It is a bubbletea program: an output viewport above a single-line input.
// Each submitted line runs through the monitor Executor off the UI loop and
// its output is appended to the viewport. A shutdown request cancels the
// program; closing the terminal with ctrl+c or ctrl+d requests shutdown.
package terminal
