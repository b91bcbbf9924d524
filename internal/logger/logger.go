// Package logger builds the zerolog logger used across hostprobe.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultMaxSizeMB  = 10
	defaultMaxBackups = 3
)

// Options configures the logger. Console output is human readable; the
// optional file receives JSON lines and is rotated by size.
type Options struct {
	// Level applies to the file writer and is the floor for the console.
	Level zerolog.Level
	// ConsoleLevel hides console events below it; set it above Level to keep
	// the terminal quiet while the file still records everything.
	ConsoleLevel zerolog.Level
	NoColor      bool
	// Console defaults to stderr.
	Console io.Writer

	File       string
	MaxSizeMB  int
	MaxBackups int
}

// ParseLevel maps a config level name to a zerolog level. verbose forces
// debug. Unknown or empty names give info.
func ParseLevel(name string, verbose bool) zerolog.Level {
	if verbose {
		return zerolog.DebugLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// New builds a logger from opts. The returned close function flushes and
// closes the log file, if any.
func New(opts Options) (zerolog.Logger, func() error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	consoleLevel := opts.ConsoleLevel
	if consoleLevel < opts.Level {
		consoleLevel = opts.Level
	}

	writers := []io.Writer{
		&zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: zerolog.ConsoleWriter{
				Out:        console,
				NoColor:    opts.NoColor,
				TimeFormat: time.RFC3339,
			}},
			Level: consoleLevel,
		},
	}

	closeFn := func() error { return nil }
	if opts.File != "" {
		file := newFileWriter(opts)
		writers = append(writers, file)
		closeFn = file.Close
	}

	log := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(opts.Level).
		With().
		Timestamp().
		Logger()
	return log, closeFn
}

func newFileWriter(opts Options) *lumberjack.Logger {
	maxSize := opts.MaxSizeMB
	if maxSize <= 0 {
		maxSize = defaultMaxSizeMB
	}
	maxBackups := opts.MaxBackups
	if maxBackups <= 0 {
		maxBackups = defaultMaxBackups
	}

	return &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		LocalTime:  true,
	}
}
