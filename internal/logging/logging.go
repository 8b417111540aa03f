// Package logging builds the zerolog logger shared by bridle commands and the profile engine.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bridle-dev/bridle/internal/messages"
	"github.com/bridle-dev/bridle/internal/terminal"
)

// Environment overrides read by FromEnv.
const (
	EnvLevel  = "BRIDLE_LOG_LEVEL"
	EnvFormat = "BRIDLE_LOG_FORMAT"
)

// Output formats.
const (
	FormatAuto    = "auto"
	FormatConsole = "console"
	FormatJSON    = "json"
)

const consoleTimeFormat = "15:04:05"

// Config controls logger construction.
type Config struct {
	// Verbose lowers the default level from warn to debug.
	Verbose bool
	// Level overrides Verbose when set: trace, debug, info, warn, error or disabled.
	Level string
	// Format is "console", "json" or "auto" (console when the output is a terminal).
	Format string
}

var isTerminalFn = terminal.IsTerminal

// FromEnv returns a Config with Level and Format taken from the environment.
func FromEnv(verbose bool, lookupEnv func(string) (string, bool)) Config {
	cfg := Config{Verbose: verbose}
	if lookupEnv == nil {
		return cfg
	}
	if value, ok := lookupEnv(EnvLevel); ok {
		cfg.Level = value
	}
	if value, ok := lookupEnv(EnvFormat); ok {
		cfg.Format = value
	}
	return cfg
}

// New returns a logger writing to out. Unknown levels and formats fall back to
// the defaults and are reported as a warning on the returned logger.
func New(out io.Writer, cfg Config) zerolog.Logger {
	level := zerolog.WarnLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	badLevel := false
	if raw := strings.TrimSpace(cfg.Level); raw != "" {
		parsed, ok := parseLevel(raw)
		if ok {
			level = parsed
		} else {
			badLevel = true
		}
	}
	writer, badFormat := selectWriter(out, cfg.Format)

	logger := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	if badLevel {
		logger.Warn().Str("value", cfg.Level).Msg(messages.LogInvalidLevel)
	}
	if badFormat {
		logger.Warn().Str("value", cfg.Format).Msg(messages.LogInvalidFormat)
	}
	return logger
}

func parseLevel(level string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
	case "disabled", "off":
		return zerolog.Disabled, true
	default:
		return zerolog.NoLevel, false
	}
}

func selectWriter(out io.Writer, format string) (io.Writer, bool) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatConsole:
		return newConsoleWriter(out), false
	case FormatJSON:
		return out, false
	case FormatAuto, "":
		return autoWriter(out), false
	default:
		return autoWriter(out), true
	}
}

func autoWriter(out io.Writer) io.Writer {
	if f, ok := out.(*os.File); ok && isTerminalFn(f) {
		return newConsoleWriter(out)
	}
	return out
}

func newConsoleWriter(out io.Writer) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: consoleTimeFormat,
	}
}
