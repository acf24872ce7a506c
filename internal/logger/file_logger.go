package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog logger with the helpers used across the engine
type Logger struct {
	zl      zerolog.Logger
	logFile *os.File
	logPath string
	mu      sync.Mutex
}

// Options configures where a Logger writes
type Options struct {
	Level    string // debug, info, warn, error
	Console  bool   // human readable console output on stderr
	LogDir   string // when set, JSON lines are appended to {LogDir}/{symbol}_{interval}_{date}.log
	Symbol   string
	Interval string
}

// New creates a logger from options
func New(opts Options) (*Logger, error) {
	var writers []io.Writer
	if opts.Console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"})
	}

	l := &Logger{}
	if opts.LogDir != "" {
		if err := os.MkdirAll(opts.LogDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		filename := fmt.Sprintf("%s_%s_%s.log", nonEmpty(opts.Symbol, "all"), nonEmpty(opts.Interval, "any"),
			time.Now().Format("2006-01-02"))
		l.logPath = filepath.Join(opts.LogDir, filename)

		file, err := os.OpenFile(l.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.logFile = file
		writers = append(writers, file)
	}

	var out io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		out = writers[0]
	default:
		out = zerolog.MultiLevelWriter(writers...)
	}

	l.zl = zerolog.New(out).With().Timestamp().Logger().Level(ParseLevel(opts.Level))
	return l, nil
}

// NewConsole creates a console-only logger at the given level
func NewConsole(level string) *Logger {
	l, _ := New(Options{Level: level, Console: true})
	return l
}

// NewWriter creates a JSON logger writing to w, mostly for tests
func NewWriter(w io.Writer, level string) *Logger {
	return &Logger{zl: zerolog.New(w).With().Timestamp().Logger().Level(ParseLevel(level))}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// ParseLevel maps a textual level onto zerolog, defaulting to info
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// Zerolog exposes the underlying logger for structured events
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zl
}

// With returns a child logger carrying a component field
func (l *Logger) With(component string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", component).Logger()}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.zl.Debug().Msgf(format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msgf(format, args...)
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.zl.Warn().Msgf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
}

// LogError logs error with context
func (l *Logger) LogError(context string, err error) {
	l.zl.Error().Err(err).Msg(context)
}

// LogSignal records one computed signal
func (l *Logger) LogSignal(symbol, rule, direction string, price, entry, stop float64, reason string) {
	l.zl.Info().
		Str("symbol", symbol).
		Str("rule", rule).
		Str("direction", direction).
		Float64("price", price).
		Float64("entry", entry).
		Float64("stop_loss", stop).
		Str("reason", reason).
		Msg("signal computed")
}

// LogBacktest records the aggregate of one backtest run
func (l *Logger) LogBacktest(symbol, rule string, trades, wins, losses int, accuracy, cumulative float64) {
	l.zl.Info().
		Str("symbol", symbol).
		Str("rule", rule).
		Int("trades", trades).
		Int("wins", wins).
		Int("losses", losses).
		Float64("accuracy_pct", accuracy).
		Float64("cumulative_return_pct", cumulative).
		Msg("backtest completed")
}

// GetLogPath returns the current log file path, empty when logging to console only
func (l *Logger) GetLogPath() string {
	return l.logPath
}

// Close closes the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile != nil {
		err := l.logFile.Close()
		l.logFile = nil
		return err
	}
	return nil
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
