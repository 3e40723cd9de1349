// Package debug provides conditional debug logging for gc.
//
// Debug logging is enabled by setting the GC_DEBUG environment variable:
//
//	GC_DEBUG=1 gc -data sales.csv
//
// When enabled, structured debug messages are written to stderr with
// timestamps. When disabled (default), all debug functions are no-ops.
//
// Usage:
//
//	debug.Log("chart detached", "chart", id)
//	defer debug.LogEnterExit("reload")()
package debug

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

var (
	// enabled is true when GC_DEBUG env var is set
	enabled bool
	logger  *log.Logger
)

func init() {
	if os.Getenv("GC_DEBUG") != "" {
		enabled = true
		logger = newLogger(os.Stderr)
	}
}

func newLogger(w io.Writer) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		Prefix:          "GC_DEBUG",
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000000",
	})
	l.SetLevel(log.DebugLevel)
	return l
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	enabled = e
	if e && logger == nil {
		logger = newLogger(os.Stderr)
	}
}

// SetOutput redirects debug output, e.g. to a file while the TUI owns the
// terminal.
func SetOutput(w io.Writer) {
	logger = newLogger(w)
}

// Log writes a debug message with optional key/value pairs.
func Log(msg string, keyvals ...any) {
	if !enabled {
		return
	}
	logger.Debug(msg, keyvals...)
}

// LogTiming writes a timing message.
func LogTiming(name string, d time.Duration) {
	if !enabled {
		return
	}
	logger.Debug("timing", "op", name, "took", d)
}

// LogIf writes a debug message only if the condition is true.
func LogIf(cond bool, msg string, keyvals ...any) {
	if !enabled || !cond {
		return
	}
	logger.Debug(msg, keyvals...)
}

// LogEnterExit logs function entry and exit with timing.
//
//	func reload() {
//	    defer debug.LogEnterExit("reload")()
//	}
func LogEnterExit(name string) func() {
	if !enabled {
		return func() {}
	}
	logger.Debug("enter", "fn", name)
	start := time.Now()
	return func() {
		logger.Debug("exit", "fn", name, "took", time.Since(start))
	}
}

// Dump logs a value with its type for debugging complex structures.
func Dump(name string, v any) {
	if !enabled {
		return
	}
	logger.Debug("dump", "name", name, "value", v)
}
