package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls the global logger.
type Options struct {
	Level   string    // "debug", "info", ...; defaults to info
	File    string    // rotate JSON lines into this file instead of writing to Output
	Console bool      // human readable output instead of JSON lines
	Output  io.Writer // defaults to os.Stderr
}

var (
	mu      sync.RWMutex
	base    = zerolog.New(os.Stderr).With().Timestamp().Logger()
	rotator *lumberjack.Logger
)

// Configure installs the global logger. Later calls replace earlier ones.
func Configure(opts Options) zerolog.Logger {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		if parsed, err := zerolog.ParseLevel(opts.Level); err == nil {
			level = parsed
		}
	}
	zerolog.TimeFieldFormat = time.RFC3339

	writer := opts.Output
	if writer == nil {
		writer = os.Stderr
	}
	var file *lumberjack.Logger
	switch {
	case opts.File != "":
		file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
		writer = file
	case opts.Console:
		writer = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.Kitchen}
	}

	logger := zerolog.New(writer).Level(level).With().Timestamp().Logger()

	mu.Lock()
	prev := rotator
	base, rotator = logger, file
	mu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
	return logger
}

// Close releases the log file opened by Configure, if any.
func Close() error {
	mu.Lock()
	file := rotator
	rotator = nil
	mu.Unlock()
	if file == nil {
		return nil
	}
	return file.Close()
}

// Base returns the configured logger.
func Base() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// WithComponent returns a child logger annotated with the given component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str("component", component).Logger()
}
