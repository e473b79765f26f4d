package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case DEBUG:
		return slog.LevelDebug
	case WARN:
		return slog.LevelWarn
	case ERROR:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel maps a case-insensitive level name to a LogLevel. Unknown names
// yield INFO and false.
func ParseLevel(name string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return DEBUG, true
	case "INFO":
		return INFO, true
	case "WARN", "WARNING":
		return WARN, true
	case "ERROR":
		return ERROR, true
	default:
		return INFO, false
	}
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Logger is a leveled printf-style logger on top of slog.
type Logger struct {
	mu       sync.Mutex
	out      io.Writer
	level    *slog.LevelVar
	format   string
	colorize bool
	attrs    []any
	sl       *slog.Logger
}

var (
	defaultLogger *Logger
	once          sync.Once
)

type Config struct {
	Level    LogLevel
	Format   string // FormatText or FormatJSON
	Colorize bool   // Only honoured by the text format
	Output   io.Writer
}

// DefaultConfig logs INFO and above as text to stderr, coloured when stderr
// is a terminal.
func DefaultConfig() Config {
	return Config{
		Level:    INFO,
		Format:   FormatText,
		Colorize: isTerminal(os.Stderr),
		Output:   os.Stderr,
	}
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	if cfg.Format == "" {
		cfg.Format = FormatText
	}

	l := &Logger{
		out:      cfg.Output,
		level:    new(slog.LevelVar),
		format:   cfg.Format,
		colorize: cfg.Colorize && cfg.Format == FormatText,
	}
	l.level.Set(cfg.Level.slogLevel())
	l.rebuild()
	return l
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return New(Config{Level: ERROR, Output: io.Discard})
}

func GetLogger() *Logger {
	once.Do(func() {
		cfg := DefaultConfig()
		if lvl, ok := ParseLevel(os.Getenv("LOG_LEVEL")); ok {
			cfg.Level = lvl
		}
		if strings.EqualFold(os.Getenv("LOG_FORMAT"), FormatJSON) {
			cfg.Format = FormatJSON
		}
		defaultLogger = New(cfg)
	})
	return defaultLogger
}

// rebuild recreates the slog handler; callers hold l.mu or own l exclusively.
func (l *Logger) rebuild() {
	opts := &slog.HandlerOptions{Level: l.level}
	if l.colorize {
		opts.ReplaceAttr = colorLevel
	}

	var h slog.Handler
	if l.format == FormatJSON {
		h = slog.NewJSONHandler(l.out, opts)
	} else {
		h = slog.NewTextHandler(l.out, opts)
	}
	l.sl = slog.New(h).With(l.attrs...)
}

func colorLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	lvl, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	color := colorBlue
	switch {
	case lvl >= slog.LevelError:
		color = colorRed
	case lvl >= slog.LevelWarn:
		color = colorYellow
	case lvl < slog.LevelInfo:
		color = colorGray
	}
	a.Value = slog.StringValue(color + lvl.String() + colorReset)
	return a
}

// With returns a child logger that adds key=value to every record. The child
// shares the parent's level.
func (l *Logger) With(key string, value any) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	child := &Logger{
		out:      l.out,
		level:    l.level,
		format:   l.format,
		colorize: l.colorize,
		attrs:    append(append([]any(nil), l.attrs...), key, value),
	}
	child.rebuild()
	return child
}

// Component is shorthand for With("component", name).
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}

func (l *Logger) SetLevel(level LogLevel) {
	l.level.Set(level.slogLevel())
}

func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
	l.rebuild()
}

func (l *Logger) SetColorize(colorize bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.colorize = colorize && l.format == FormatText
	l.rebuild()
}

func (l *Logger) log(level LogLevel, msg string, args ...any) {
	l.mu.Lock()
	sl := l.sl
	l.mu.Unlock()

	lvl := level.slogLevel()
	if !sl.Enabled(context.Background(), lvl) {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	sl.Log(context.Background(), lvl, msg)
}

// Debugf logs a formatted message at DEBUG level
func (l *Logger) Debugf(format string, args ...any) {
	l.log(DEBUG, format, args...)
}

// Infof logs a formatted message at INFO level
func (l *Logger) Infof(format string, args ...any) {
	l.log(INFO, format, args...)
}

// Warnf logs a formatted message at WARN level
func (l *Logger) Warnf(format string, args ...any) {
	l.log(WARN, format, args...)
}

// Errorf logs a formatted message at ERROR level
func (l *Logger) Errorf(format string, args ...any) {
	l.log(ERROR, format, args...)
}

// Fatalf logs at ERROR level and exits the program
func (l *Logger) Fatalf(format string, args ...any) {
	l.log(ERROR, format, args...)
	os.Exit(1)
}

// Package-level convenience functions using the default logger

func Debugf(format string, args ...any) {
	GetLogger().Debugf(format, args...)
}

func Infof(format string, args ...any) {
	GetLogger().Infof(format, args...)
}

func Warnf(format string, args ...any) {
	GetLogger().Warnf(format, args...)
}

func Errorf(format string, args ...any) {
	GetLogger().Errorf(format, args...)
}

func Fatalf(format string, args ...any) {
	GetLogger().Fatalf(format, args...)
}

// SetLevel sets the log level for the default logger
func SetLevel(level LogLevel) {
	GetLogger().SetLevel(level)
}

// SetOutput sets the output for the default logger
func SetOutput(w io.Writer) {
	GetLogger().SetOutput(w)
}
