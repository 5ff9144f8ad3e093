package logging

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

const (
	EnvLogLevel = "GAUFRE_LOG_LEVEL"
	EnvLogFile  = "GAUFRE_LOG_FILE"

	defaultLogFile = "gaufre.log"
)

var (
	mu     sync.Mutex
	logger = zerolog.Nop()
	file   *os.File
)

// Configure opens path for appending and routes all log output there. The
// terminal belongs to the display adapter, so nothing is written to stderr.
func Configure(path, level string) error {
	mu.Lock()
	defer mu.Unlock()

	lvl, ok := ParseLevel(level)
	if !ok {
		lvl = zerolog.InfoLevel
	}
	if lvl == zerolog.Disabled {
		closeLocked()
		logger = zerolog.Nop()
		return nil
	}

	if strings.TrimSpace(path) == "" {
		path = defaultLogFile
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	closeLocked()
	file = f
	logger = newLogger(f, lvl)
	return nil
}

// ConfigureWriter is used by tests to capture output.
func ConfigureWriter(w io.Writer, level zerolog.Level) {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
	logger = newLogger(w, level)
}

func newLogger(w io.Writer, lvl zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Close flushes and releases the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
	logger = zerolog.Nop()
}

func closeLocked() {
	if file != nil {
		_ = file.Close()
		file = nil
	}
}

// L returns the process logger.
func L() *zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	l := logger
	return &l
}

func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "disable", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond
}
