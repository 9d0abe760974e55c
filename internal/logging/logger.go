// Package logging provides structured logging for both CLI and TUI modes.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps zerolog with mode-specific behavior.
//
// In CLI mode log lines go to stderr (stdout is reserved for command output
// and progress bars). In TUI mode the terminal belongs to the renderer, so
// console output is suppressed entirely and lines go only to the rotating
// log file, if one is configured.
type Logger struct {
	zlog   zerolog.Logger
	mode   string // "cli" or "tui"
	output io.Writer
}

// Options configures logger construction.
type Options struct {
	Mode    string // "cli" or "tui"
	File    string // optional log file path, rotated via lumberjack
	Verbose bool
}

// New creates a logger for the given options.
func New(opts Options) *Logger {
	var sinks []io.Writer

	if opts.Mode != "tui" {
		sinks = append(sinks, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
		})
	}

	if opts.File != "" {
		_ = os.MkdirAll(filepath.Dir(opts.File), 0o700)
		sinks = append(sinks, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    5, // MB
			MaxBackups: 2,
		})
	}

	var output io.Writer
	switch len(sinks) {
	case 0:
		output = io.Discard
	case 1:
		output = sinks[0]
	default:
		output = zerolog.MultiLevelWriter(sinks...)
	}

	zlog := zerolog.New(output).With().Timestamp().Logger()
	if opts.Verbose {
		zlog = zlog.Level(zerolog.DebugLevel)
	} else {
		zlog = zlog.Level(zerolog.InfoLevel)
	}

	return &Logger{
		zlog:   zlog,
		mode:   opts.Mode,
		output: output,
	}
}

// NewDefaultCLILogger creates a default CLI logger.
func NewDefaultCLILogger() *Logger {
	return New(Options{Mode: "cli"})
}

// Info returns an info level event.
func (l *Logger) Info() *zerolog.Event {
	return l.zlog.Info()
}

// Error returns an error level event.
func (l *Logger) Error() *zerolog.Event {
	return l.zlog.Error()
}

// Debug returns a debug level event.
func (l *Logger) Debug() *zerolog.Event {
	return l.zlog.Debug()
}

// Warn returns a warn level event.
func (l *Logger) Warn() *zerolog.Event {
	return l.zlog.Warn()
}

// Fatal returns a fatal level event.
func (l *Logger) Fatal() *zerolog.Event {
	return l.zlog.Fatal()
}

// With creates a child logger context with additional fields.
func (l *Logger) With() zerolog.Context {
	return l.zlog.With()
}

// Output returns the current output writer.
func (l *Logger) Output() io.Writer {
	return l.output
}

// SetGlobalLevel sets the global log level.
func SetGlobalLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	})
}
