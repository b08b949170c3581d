// SPDX-License-Identifier: MIT

// Package logging configures the shared application logger.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu     sync.RWMutex
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		Prefix:          "aer",
	})
)

// Logger returns the shared application logger.
func Logger() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Setup applies the configured log level. Verbose forces debug level
// regardless of the configured value.
func Setup(level string, verbose bool) {
	mu.Lock()
	defer mu.Unlock()

	if verbose {
		logger.SetLevel(log.DebugLevel)
		return
	}
	logger.SetLevel(parseLevel(level))
}

// SetOutput redirects log output, primarily for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger.SetOutput(w)
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "trace":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
