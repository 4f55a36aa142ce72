package loadcheck

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/mergington/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging initialises the global logger on stdout and, when logFile is
// set, on that file as well.
func SetupLogging(logFile string, verbose bool) error {
	var w io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, file)
	}
	if err := logger.InitWith(w, logger.FormatText); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the signup load tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Mergington Signup Load Tool
===========================

Fires concurrent signups for generated students at one activity, then
unregisters them and checks that capacity and uniqueness held and that the
roster returned to its original state.

Usage:
  signup-load [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8000")
  -activity string
        Activity to sign students up for (default "Chess Club")
  -students int
        Number of distinct students (default 100)
  -duplicates int
        Extra signups repeating a student in upper case (default 20)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -output string
        Write a JSON report of every attempt to this file
  -log string
        Also write logs to this file
  -verbose
        Enable debug logging
  -help
        Show this help message

Examples:
  signup-load -activity "Programming Class" -students 500 -workers 32
  signup-load -url http://localhost:8080 -duplicates 100 -output report.json
`)
}
