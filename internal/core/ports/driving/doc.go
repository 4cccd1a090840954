// Package driving provides interfaces through which external actors
// (CLI, TUI) drive the core pipeline.
package driving
