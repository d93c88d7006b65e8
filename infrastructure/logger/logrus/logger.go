// ABOUTME: Logrus-backed implementation of the core Logger interface
// ABOUTME: Writes text or JSON entries to the console and optionally to a rotated log file

package logrus

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures a Logger
type Options struct {
	// Level is one of debug, info, warn, error
	Level string

	// Format is text or json
	Format string

	// File, when set, receives a copy of every entry and is rotated
	File string

	// Output replaces the console writer; defaults to stderr
	Output io.Writer
}

// Logger implements interfaces.Logger on top of logrus
type Logger struct {
	log     *logrus.Logger
	rotator *lumberjack.Logger
}

// New creates a Logger from opts
func New(opts Options) (*Logger, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(defaultString(opts.Level, "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}
	log.SetLevel(level)

	switch strings.ToLower(defaultString(opts.Format, "text")) {
	case "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("invalid log format %q", opts.Format)
	}

	var out io.Writer = os.Stderr
	if opts.Output != nil {
		out = opts.Output
	}

	l := &Logger{log: log}
	if opts.File != "" {
		l.rotator = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		out = io.MultiWriter(out, l.rotator)
	}
	log.SetOutput(out)

	return l, nil
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.log.WithFields(fields).Debug(msg)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.log.WithFields(fields).Info(msg)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.log.WithFields(fields).Warn(msg)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.log.WithFields(fields).Error(msg)
}

// Close flushes and closes the log file, if any
func (l *Logger) Close() error {
	if l.rotator == nil {
		return nil
	}
	return l.rotator.Close()
}

func defaultString(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}
