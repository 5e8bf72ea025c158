package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/m0hashi/citrees"
)

// Logf writes a progress message to STDERR when the verbose flag is set.
func (c *rootCmdConfig) Logf(format string, a ...interface{}) {
	if !c.verbose {
		return
	}
	fmt.Fprintf(os.Stderr, format, a...)
	fmt.Fprintln(os.Stderr, "")
}

// logger returns the Logger handed to the models: a slog-backed one when
// verbose, a no-op otherwise.
func (c *rootCmdConfig) logger() citrees.Logger {
	if !c.verbose {
		return citrees.NopLogger{}
	}
	return citrees.SlogLogger{L: slog.New(slog.NewTextHandler(os.Stderr, nil))}
}
