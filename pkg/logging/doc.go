// Package logging provides a process-wide structured logger for tablekit.
//
// The package wraps [log/slog] and exposes a single global logger instance
// that is initialized once and then retrieved via GetLogger. All subsystems
// should obtain a logger through this package rather than constructing their
// own slog.Logger values, so that log level and output destination are
// controlled from a single place.
//
// Call Init (or InitDefault for sensible defaults) once at program startup.
// Library code that runs before initialization gets a lazily created default
// logger writing text to stderr at INFO level.
package logging
