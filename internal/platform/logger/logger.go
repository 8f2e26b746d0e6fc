package logger

import (
	"io"
	"log"
	"os"
)

// New returns a basic stderr logger; swap in structured logging when needed.
// Stderr keeps CLI command output on stdout clean.
func New() *log.Logger {
	return log.New(os.Stderr, "", log.LstdFlags)
}

// Discard returns a logger that drops everything. Test helper.
func Discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}
