// =============================================================================
// ADV Filing Extractor - Default Logger
// =============================================================================

package extractor

import (
	"fmt"
	"os"
)

// defaultLogger writes leveled messages to standard output, with debug
// gated behind the verbose flag. Warnings and errors go to standard error.
type defaultLogger struct {
	verbose bool
}

// NewDefaultLogger creates the default logger.
func NewDefaultLogger(verbose bool) Logger {
	return &defaultLogger{verbose: verbose}
}

func (l *defaultLogger) Debug(msg string, args ...interface{}) {
	if l.verbose {
		fmt.Printf("[DEBUG] "+msg+"\n", args...)
	}
}

func (l *defaultLogger) Info(msg string, args ...interface{}) {
	fmt.Printf("[INFO] "+msg+"\n", args...)
}

func (l *defaultLogger) Warn(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[WARN] "+msg+"\n", args...)
}

func (l *defaultLogger) Error(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[ERROR] "+msg+"\n", args...)
}
