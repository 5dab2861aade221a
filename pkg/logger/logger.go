// Package logger provides the structured logger injected into every
// translator-runner component.
//
// Each Logger writes to two sinks: a daily log file that receives every level,
// and a console stream filtered at the configured level.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const componentField = "component"

// Options configures New.
type Options struct {
	Dir     string           // Log directory; empty disables the file sink
	Name    string           // File name prefix, e.g. translator-runner
	Level   string           // Console level: debug, info, warn, error
	Console io.Writer        // Console sink; nil uses os.Stderr
	Now     func() time.Time // Clock for the daily file name; nil uses time.Now
}

// Logger is a printf-style logger scoped to a component.
type Logger struct {
	entry *logrus.Entry
	file  *os.File
}

// New creates a logger with a daily file sink and a console sink.
func New(opts Options) (*Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	name := opts.Name
	if name == "" {
		name = "translator-runner"
	}

	base := logrus.New()
	base.SetOutput(io.Discard) // all output goes through hooks
	base.SetLevel(logrus.DebugLevel)
	base.AddHook(&writerHook{
		w:         console,
		levels:    levelsUpTo(level),
		formatter: consoleFormatter{},
	})

	l := &Logger{entry: logrus.NewEntry(base)}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log dir: %w", err)
		}
		path := filepath.Join(opts.Dir, fmt.Sprintf("%s_%s.log", name, now().Format("20060102")))
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		l.file = f
		base.AddHook(&writerHook{
			w:      f,
			levels: levelsUpTo(logrus.DebugLevel),
			formatter: &logrus.TextFormatter{
				DisableColors:   true,
				FullTimestamp:   true,
				TimestampFormat: "2006-01-02 15:04:05",
			},
		})
	}

	return l, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return &Logger{entry: logrus.NewEntry(base)}
}

// ParseLevel maps a config level name to a logrus level. Empty means info.
func ParseLevel(name string) (logrus.Level, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return logrus.InfoLevel, nil
	}
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q", name)
	}
	return level, nil
}

// With returns a logger that tags every entry with the component name.
// The returned logger shares sinks with l.
func (l *Logger) With(component string) *Logger {
	return &Logger{entry: l.entry.WithField(componentField, component), file: l.file}
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, v ...interface{}) {
	l.entry.Debugf(format, v...)
}

// Info logs an info message.
func (l *Logger) Info(format string, v ...interface{}) {
	l.entry.Infof(format, v...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, v ...interface{}) {
	l.entry.Warnf(format, v...)
}

// Error logs an error message.
func (l *Logger) Error(format string, v ...interface{}) {
	l.entry.Errorf(format, v...)
}

// Close closes the log file. Loggers derived with With share the file, so
// only the root logger should be closed.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// levelsUpTo returns every level at or above the given severity.
func levelsUpTo(level logrus.Level) []logrus.Level {
	var out []logrus.Level
	for _, lv := range logrus.AllLevels {
		if lv <= level {
			out = append(out, lv)
		}
	}
	return out
}

// writerHook formats entries for one sink.
type writerHook struct {
	mu        sync.Mutex
	w         io.Writer
	levels    []logrus.Level
	formatter logrus.Formatter
}

func (h *writerHook) Levels() []logrus.Level {
	return h.levels
}

func (h *writerHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.w.Write(line)
	return err
}

// consoleFormatter prints "LEVEL - message".
type consoleFormatter struct{}

func (consoleFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	level := strings.ToUpper(entry.Level.String())
	if level == "WARNING" {
		level = "WARN"
	}
	return []byte(level + " - " + entry.Message + "\n"), nil
}
