package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger construction
type Options struct {
	Service string
	Level   string
	File    string
	Debug   bool
	Out     io.Writer
}

// New builds a zerolog logger tagged with the service name. Output goes to
// a console writer on a terminal and JSON otherwise; when File is set, a
// rotating JSON log is written as well.
func New(opts Options) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		out = zerolog.ConsoleWriter{Out: f, TimeFormat: "2006-01-02 15:04:05"}
	}

	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // Megabytes
			MaxBackups: 5,
			MaxAge:     30, // Days
			Compress:   true,
		}
		out = zerolog.MultiLevelWriter(out, rotator)
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", opts.Service).
		Logger()
}
