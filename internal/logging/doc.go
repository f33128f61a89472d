// Package logging assembles structured slog loggers for tunepull.
//
// It owns the console and JSON handlers, routes output to the state directory
// log file (optionally mirrored to stderr), and stamps records logged with a
// context carrying run IDs, record positions, or step names. A no-op logger is
// provided for tests and wiring code that cannot fail.
package logging
