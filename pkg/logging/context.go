package logging

import (
	"log/slog"
)

// WithTable creates a logger with table context.
//
// Example:
//
//	log := logging.WithTable(t.Title())
//	log.Debug("filtering", "rows", t.Len())
func WithTable(title string) *slog.Logger {
	return GetLogger().With("table", title)
}

// WithOp creates a logger with operation context.
//
// Example:
//
//	log := logging.WithOp("Table.Join")
//	log.Debug("progress", "row", i, "of", total)
func WithOp(op string) *slog.Logger {
	return GetLogger().With("op", op)
}

// WithPath creates a logger with file path context, used by the persistence
// codec and CSV export.
func WithPath(path string) *slog.Logger {
	return GetLogger().With("path", path)
}
