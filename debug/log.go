package debug

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.Mutex
	logger  = zap.NewNop()
	file    *os.File
	enabled bool
)

// DefaultPath is ~/.config/go-juno/debug.log.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "go-juno", "debug.log")
}

// Enable starts logging to path at the given level ("debug", "info", ...).
// The terminal belongs to the UI, so logs only go to the file.
func Enable(path, level string) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}
	if path == "" {
		path = DefaultPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(f), lvl)

	file = f
	logger = zap.New(core)
	enabled = true
	logger.Info("=== debug logging started ===", zap.String("cat", "debug"))
	return nil
}

// Disable flushes and stops logging.
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	_ = logger.Sync()
	logger = zap.NewNop()
	if file != nil {
		file.Close()
		file = nil
	}
	enabled = false
}

// L returns the current logger for structured fields. It is a no-op
// logger until Enable succeeds.
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Log writes an info line tagged with category.
func Log(category, format string, args ...any) {
	L().Sugar().With("cat", category).Infof(format, args...)
}

// Warn writes a warning line tagged with category.
func Warn(category, format string, args ...any) {
	L().Sugar().With("cat", category).Warnf(format, args...)
}

// Debugf writes a debug-level line; dropped unless the level is "debug".
func Debugf(category, format string, args ...any) {
	L().Sugar().With("cat", category).Debugf(format, args...)
}

var counters = make(map[string]int)

// LogEvery logs only every n calls (use for high-frequency events).
func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if n <= 1 || count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}

type lineWriter struct {
	category string
}

func (w lineWriter) Write(p []byte) (int, error) {
	Log(w.category, "%s", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// Writer adapts line-oriented loggers (e.g. HTTP access logs) to Log.
func Writer(category string) io.Writer {
	return lineWriter{category: category}
}
