// Package logger provides a stdlib-log adapter for the domain Logger.
package logger

import "log"

// StdLogger logs through the standard library logger. Debug output is
// gated by the verbose flag.
type StdLogger struct {
	verbose bool
}

// NewStdLogger creates a logger; verbose enables debug output.
func NewStdLogger(verbose bool) *StdLogger {
	return &StdLogger{verbose: verbose}
}

func (l *StdLogger) Debug(message string) {
	if l.verbose {
		log.Printf("DEBUG: %s", message)
	}
}

func (l *StdLogger) Error(message string) {
	log.Printf("ERROR: %s", message)
}
