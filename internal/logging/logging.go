// Package logging wraps charmbracelet/log with the defaults uicatalog needs.
//
// The MCP server speaks JSON-RPC on stdout, so every logger built here writes
// to stderr (or to a debug file) and never to stdout.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DebugEnv switches to debug level and logs to DebugLogFile in the
	// working directory when set.
	DebugEnv = "UICATALOG_DEBUG"

	// LevelEnv overrides the stderr log level (debug, info, warn, error).
	LevelEnv = "UICATALOG_LOG_LEVEL"

	DebugLogFile = "uicatalog.log"

	prefix = "uicatalog"
)

// AppLogger is the structured logger passed through the application.
type AppLogger struct {
	logger *log.Logger
}

var (
	defaultLogger *AppLogger
	once          sync.Once
)

// GetDefault returns the process-wide logger, building it on first use.
func GetDefault() *AppLogger {
	once.Do(func() {
		defaultLogger = NewAppLogger()
	})
	return defaultLogger
}

func Info(msg string, keyvals ...any)  { GetDefault().Info(msg, keyvals...) }
func Warn(msg string, keyvals ...any)  { GetDefault().Warn(msg, keyvals...) }
func Error(msg string, keyvals ...any) { GetDefault().Error(msg, keyvals...) }
func Debug(msg string, keyvals ...any) { GetDefault().Debug(msg, keyvals...) }

func LogPerformance(operation string, start time.Time) {
	GetDefault().LogPerformance(operation, start)
}

// NewAppLogger builds the logger described by the environment. With
// UICATALOG_DEBUG set it logs everything, with caller info, to a file that
// is truncated on each run; otherwise it logs warnings and errors to stderr
// unless UICATALOG_LOG_LEVEL says otherwise.
func NewAppLogger() *AppLogger {
	if os.Getenv(DebugEnv) != "" {
		l, err := newFileLogger()
		if err == nil {
			return l
		}
		fmt.Fprintf(os.Stderr, "uicatalog: debug log unavailable, using stderr: %v\n", err)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          prefix,
	})
	logger.SetLevel(levelFromEnv(log.WarnLevel))
	return &AppLogger{logger: logger}
}

func newFileLogger() (*AppLogger, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	logPath := filepath.Join(cwd, DebugLogFile)

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create debug log file: %w", err)
	}

	logger := log.NewWithOptions(f, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          prefix,
	})
	logger.SetLevel(log.DebugLevel)
	logger.Info("Debug logging enabled", "log_file", logPath)

	return &AppLogger{logger: logger}, nil
}

func levelFromEnv(fallback log.Level) log.Level {
	raw := strings.TrimSpace(os.Getenv(LevelEnv))
	if raw == "" {
		return fallback
	}
	level, err := log.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return fallback
	}
	return level
}

// With returns a child logger that attaches keyvals to every entry.
func (al *AppLogger) With(keyvals ...any) *AppLogger {
	return &AppLogger{logger: al.logger.With(keyvals...)}
}

func (al *AppLogger) Info(msg string, keyvals ...any)  { al.logger.Info(msg, keyvals...) }
func (al *AppLogger) Warn(msg string, keyvals ...any)  { al.logger.Warn(msg, keyvals...) }
func (al *AppLogger) Error(msg string, keyvals ...any) { al.logger.Error(msg, keyvals...) }
func (al *AppLogger) Debug(msg string, keyvals ...any) { al.logger.Debug(msg, keyvals...) }

// DebugEnabled reports whether debug entries are written.
func (al *AppLogger) DebugEnabled() bool {
	return al.logger.GetLevel() <= log.DebugLevel
}

// LogPerformance records how long an operation took. Meant for defer:
//
//	defer logger.LogPerformance("search components", time.Now())
func (al *AppLogger) LogPerformance(operation string, start time.Time) {
	if al.DebugEnabled() {
		al.logger.Debug("Performance", "operation", operation, "duration", time.Since(start))
	}
}

// LogRequest records an incoming catalog operation and its arguments.
func (al *AppLogger) LogRequest(operation string, args map[string]any) {
	if al.DebugEnabled() {
		al.logger.Debug("Request", "operation", operation, "args", fmt.Sprintf("%v", args))
	}
}

// NewTestLogger creates a debug logger that writes to a buffer.
func NewTestLogger() (*AppLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Prefix: "test"})
	logger.SetLevel(log.DebugLevel)
	return &AppLogger{logger: logger}, &buf
}

// NewDiscardLogger returns a logger that drops everything.
func NewDiscardLogger() *AppLogger {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	logger.SetLevel(log.FatalLevel)
	return &AppLogger{logger: logger}
}
