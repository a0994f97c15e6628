package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

type contextKey string

const LoggerKey contextKey = "logger"

// LogFileName is the file the companion writes its log stream to inside
// the log directory. Rotation is handled by external logrotate where used.
const LogFileName = "octoeverywhere.log"

// InitLogger builds the process logger and stores it in the context.
// logDir may be empty, in which case only the console writer is used.
func InitLogger(ctx context.Context, logLevel, logDir string) (context.Context, *zerolog.Logger) {
	log := NewLogger(logLevel, logDir)
	ctx = context.WithValue(ctx, LoggerKey, log)
	return ctx, log
}

// NewLogger creates a zerolog logger writing to the console and, when
// logDir is set, to the companion log file. Sets the global log level.
func NewLogger(logLevel, logDir string) *zerolog.Logger {
	zerolog.SetGlobalLevel(getLogLevel(logLevel))

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"}
	console.FormatLevel = func(i interface{}) string {
		var l string
		if ll, ok := i.(string); ok {
			switch ll {
			case "debug":
				l = colorize(ll, 36) // cyan
			case "info":
				l = colorize(ll, 34) // blue
			case "warn":
				l = colorize(ll, 33) // yellow
			case "error":
				l = colorize(ll, 31) // red
			case "fatal":
				l = colorize(ll, 35) // magenta
			default:
				l = colorize(ll, 37) // white
			}
		} else {
			lStr := strings.ToUpper(fmt.Sprintf("%s", i))
			if len(lStr) > 3 {
				lStr = lStr[:3]
			}
			l = lStr
		}
		return fmt.Sprintf("| %s |", l)
	}

	var w io.Writer = console
	if logDir != "" {
		if f, err := openLogFile(logDir); err == nil {
			w = zerolog.MultiLevelWriter(console, f)
		}
	}

	logger := zerolog.New(w).With().Timestamp().Logger()
	return &logger
}

// FromContext extracts the process logger from the context.
func FromContext(ctx context.Context) *zerolog.Logger {
	logger, ok := ctx.Value(LoggerKey).(*zerolog.Logger)
	if !ok {
		defaultLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		defaultLogger.Error().Msg("Failed to extract logger from context")
		return &defaultLogger
	}
	return logger
}

// SetGlobalLevel updates the process-wide log level, used when a config
// hot reload changes the configured level.
func SetGlobalLevel(logLevel string) {
	zerolog.SetGlobalLevel(getLogLevel(logLevel))
}

func openLogFile(logDir string) (*os.File, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(logDir, LogFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

func getLogLevel(logLevel string) zerolog.Level {
	switch strings.ToLower(logLevel) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

func colorize(s string, color int) string {
	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", color, s)
}
