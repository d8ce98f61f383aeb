package logger

import (
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	defaultLogger zerolog.Logger
	once          sync.Once
)

// Init initializes the default logger. Format "console" gives human-readable
// output for interactive use; anything else emits JSON lines suitable for a
// container log stream. It ensures that the logger is initialized only once.
func Init(level string, format string) {
	once.Do(func() {
		lvl, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil || lvl == zerolog.NoLevel {
			lvl = zerolog.InfoLevel
		}

		var out = zerolog.New(os.Stdout)
		if format == "console" {
			out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
		}
		defaultLogger = out.Level(lvl).With().Timestamp().Logger()
	})
}

// Get returns the initialized default logger. It calls Init() with defaults
// to ensure the logger is ready before returning it.
func Get() *zerolog.Logger {
	Init("info", "json")
	return &defaultLogger
}

// Debug logs a debug message using the default logger.
func Debug(msg string) {
	Get().Debug().Msg(msg)
}

// Info logs an informational message using the default logger.
func Info(msg string) {
	Get().Info().Msg(msg)
}

// Warn logs a warning message using the default logger.
func Warn(msg string) {
	Get().Warn().Msg(msg)
}

// Error logs an error message using the default logger.
func Error(msg string, err error) {
	Get().Error().Err(err).Msg(msg)
}
