package logger

import (
	"io"
	"log"
	"os"
)

// New returns a basic stdout logger; swap in structured logging when needed.
func New() *log.Logger {
	return log.New(os.Stdout, "", log.LstdFlags)
}

// NewWithPrefix returns a stdout logger tagged with a subsystem prefix,
// e.g. "nfccard: ".
func NewWithPrefix(prefix string) *log.Logger {
	return log.New(os.Stdout, prefix, log.LstdFlags)
}

// Discard returns a logger that drops everything; handy for tests and for
// components where the caller opted out of logging.
func Discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}
