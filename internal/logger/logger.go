// Package logger provides a dual-output leveled logger that writes to stderr
// and to a timestamped log file inside the workspace's .che directory.
// The file always receives debug output; stderr is filtered by the
// configured level.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	clog "github.com/charmbracelet/log"
)

// Logger writes to both stderr and a log file simultaneously.
type Logger struct {
	console *clog.Logger
	file    *clog.Logger
	f       *os.File
}

// New creates a logger that writes to stderr at level and to
// <workspaceDir>/.che/logs/che-plugins-<ts>.log at debug level.
func New(workspaceDir string, level clog.Level) (*Logger, error) {
	logsDir := LogsDir(workspaceDir)
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create logs dir: %w", err)
	}

	ts := time.Now().Format("20060102-150405")
	logPath := filepath.Join(logsDir, fmt.Sprintf("che-plugins-%s.log", ts))

	f, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	return &Logger{
		console: NewWriter(os.Stderr, level).console,
		file: clog.NewWithOptions(f, clog.Options{
			Level:           clog.DebugLevel,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
		}),
		f: f,
	}, nil
}

// NewWriter returns a logger that writes only to w.
func NewWriter(w io.Writer, level clog.Level) *Logger {
	return &Logger{console: clog.NewWithOptions(w, clog.Options{Level: level})}
}

// NewDiscard returns a logger that drops everything (used when no workspace is known yet).
func NewDiscard() *Logger {
	return NewWriter(io.Discard, clog.FatalLevel)
}

// ParseLevel converts a level name such as "info" or "debug".
func ParseLevel(s string) (clog.Level, error) {
	return clog.ParseLevel(s)
}

// LogPath returns the path of the current log file, or empty string if there is none.
func (l *Logger) LogPath() string {
	if l.f == nil {
		return ""
	}
	return l.f.Name()
}

func (l *Logger) Debugf(format string, args ...any) {
	l.each(func(c *clog.Logger) { c.Debugf(format, args...) })
}

func (l *Logger) Infof(format string, args ...any) {
	l.each(func(c *clog.Logger) { c.Infof(format, args...) })
}

func (l *Logger) Warnf(format string, args ...any) {
	l.each(func(c *clog.Logger) { c.Warnf(format, args...) })
}

func (l *Logger) Errorf(format string, args ...any) {
	l.each(func(c *clog.Logger) { c.Errorf(format, args...) })
}

// Printf logs at info level.
func (l *Logger) Printf(format string, args ...any) { l.Infof(format, args...) }

func (l *Logger) each(fn func(*clog.Logger)) {
	fn(l.console)
	if l.file != nil {
		fn(l.file)
	}
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	if l.f != nil {
		return l.f.Close()
	}
	return nil
}

// LogsDir returns the directory holding log files for workspaceDir.
func LogsDir(workspaceDir string) string {
	return filepath.Join(workspaceDir, ".che", "logs")
}

// LatestLogPath returns the path to the most recent log in <workspaceDir>.
// Returns "" if no logs exist.
func LatestLogPath(workspaceDir string) string {
	logsDir := LogsDir(workspaceDir)
	entries, err := os.ReadDir(logsDir)
	if err != nil || len(entries) == 0 {
		return ""
	}
	// ReadDir returns sorted by name; che-plugins-<ts> logs sort chronologically.
	latest := ""
	for _, e := range entries {
		if !e.IsDir() {
			latest = filepath.Join(logsDir, e.Name())
		}
	}
	return latest
}
