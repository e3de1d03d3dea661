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
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	corelogger "github.com/kilianp07/roomload/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.NopLogger

var (
	mu      sync.RWMutex
	fileOut io.Writer
)

// SetLevel sets the global minimum level ("debug", "info", "warn", "error").
// An empty string keeps the current level.
func SetLevel(level string) error {
	if level == "" {
		return nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}

// FileOptions configures the rotating log file.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// LogToFile makes loggers created afterwards also write JSON records to a
// rotating file. The returned closer restores stdout-only logging.
func LogToFile(opts FileOptions) (io.Closer, error) {
	if dir := filepath.Dir(opts.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	lj := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}
	mu.Lock()
	fileOut = lj
	mu.Unlock()
	return closerFunc(func() error {
		mu.Lock()
		fileOut = nil
		mu.Unlock()
		return lj.Close()
	}), nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// New returns a Logger for the given component writing to stdout. Output is
// human readable when APP_ENV=dev or stdout is a terminal, JSON otherwise.
func New(component string) Logger {
	console := consoleOutput(os.Stdout)
	mu.RLock()
	f := fileOut
	mu.RUnlock()
	if f == nil {
		return NewZerologLogger(component, os.Stdout, console)
	}
	var std io.Writer = os.Stdout
	if console {
		std = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return NewZerologLogger(component, zerolog.MultiLevelWriter(std, f), false)
}

func consoleOutput(f *os.File) bool {
	if strings.EqualFold(os.Getenv("APP_ENV"), "dev") {
		return true
	}
	return term.IsTerminal(int(f.Fd()))
}
