// ABOUTME: Structured logging with verbosity control and level-based output
// ABOUTME: Thin wrapper over the standard log package used by the daemons

package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

var verbose = false

// SetVerbose enables or disables verbose (DEBUG) logging
func SetVerbose(v bool) {
	verbose = v
}

// IsVerbose returns current verbose setting
func IsVerbose() bool {
	return verbose
}

// SetOutput sets the output destination for logs
func SetOutput(w io.Writer) {
	if w == nil {
		log.SetOutput(os.Stderr)
		return
	}
	log.SetOutput(w)
}

// Debug logs at DEBUG level (only shown when verbose)
func Debug(format string, args ...interface{}) {
	if verbose {
		logf("DEBUG", format, args...)
	}
}

// Info logs at INFO level (always shown)
func Info(format string, args ...interface{}) {
	logf("INFO", format, args...)
}

// Warn logs at WARN level (always shown)
func Warn(format string, args ...interface{}) {
	logf("WARN", format, args...)
}

// Error logs at ERROR level (always shown)
func Error(format string, args ...interface{}) {
	logf("ERROR", format, args...)
}

func logf(level, format string, args ...interface{}) {
	log.Printf("[%s] %s", level, fmt.Sprintf(format, args...))
}
