// Package logging configures the global logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Options selects where and how much to log
type Options struct {
	// File receives JSON logs; empty means Fallback
	File  string
	Level string
	// Verbose forces debug level
	Verbose bool
	// Fallback is used when File is empty; nil means stderr
	Fallback io.Writer
}

// Setup configures logrus and returns a closer for the log file, if any.
// The TUI owns the terminal, so it logs to a file; one-shot commands log to
// stderr.
func Setup(opts Options) (io.Closer, error) {
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	if opts.Verbose {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)

	if opts.File == "" {
		out := opts.Fallback
		if out == nil {
			out = os.Stderr
		}
		logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
		logrus.SetOutput(out)
		return nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logrus.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	logrus.SetOutput(f)
	return f, nil
}

// For returns a log entry tagged with a component name
func For(component string) *logrus.Entry {
	return logrus.WithField("component", component)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
