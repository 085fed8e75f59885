package logger

import (
	"io"
	"log"
	"os"
)

// Log represents singleton access to the default logger
var Log = NewLogger(os.Stderr, "")

// Logger represents a levelled logger. Debug lines are dropped unless enabled.
type Logger struct {
	logger *log.Logger
	debug  *bool
}

// NewLogger creates a new Logger writing to w
func NewLogger(w io.Writer, prefix string) Logger {
	debug := false
	return Logger{
		logger: log.New(w, prefix, log.LUTC|log.Ldate|log.Ltime|log.Lmicroseconds),
		debug:  &debug,
	}
}

// SetDebug toggles DEBG output
func (l Logger) SetDebug(enabled bool) {
	*l.debug = enabled
}

func (l Logger) print(level string, format string, args ...interface{}) {
	l.logger.Printf(level+" "+format, args...)
}

func (l Logger) Debug(format string, args ...interface{}) {
	if !*l.debug {
		return
	}
	l.print("DEBG", format, args...)
}

func (l Logger) Info(format string, args ...interface{}) {
	l.print("INFO", format, args...)
}

func (l Logger) Warn(format string, args ...interface{}) {
	l.print("WARN", format, args...)
}

func (l Logger) Error(format string, args ...interface{}) {
	l.print("ERRO", format, args...)
}

func (l Logger) Fatal(format string, args ...interface{}) {
	l.logger.Fatalf("FATL "+format, args...)
}
