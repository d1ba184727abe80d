package xrbridge

import (
	"log/slog"

	"github.com/gogpu/xrbridge/internal/logging"
)

// SetLogger configures the logger for xrbridge and all its sub-packages.
// By default, xrbridge produces no log output. Call SetLogger to enable
// logging.
//
// SetLogger is safe for concurrent use: it stores the new logger
// atomically. Pass nil to disable logging (restore default silent
// behavior).
//
// Log levels used by xrbridge:
//   - [slog.LevelDebug]: internal diagnostics (state transitions, binding tables)
//   - [slog.LevelInfo]: important lifecycle events (runtime selected, swapchains created)
//   - [slog.LevelWarn]: non-fatal issues (fallback profile engaged, overlay upload failed)
//   - [slog.LevelError]: frame waits timing out, session loss
//
// Example:
//
//	// Enable info-level logging to stderr:
//	xrbridge.SetLogger(slog.Default())
//
//	// Enable debug-level logging for full diagnostics:
//	xrbridge.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.SetLogger(l)
}

// Logger returns the current logger used by xrbridge. Sub-packages share
// the same logger configuration through internal/logging.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.Logger()
}
