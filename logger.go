package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

const (
	EnvLogLevel  = "VMX_LOG_LEVEL"
	EnvLogFormat = "VMX_LOG_FORMAT"
)

// NewLogger builds the process logger. Output is human-readable unless
// VMX_LOG_FORMAT=json; colour is used only when out is a terminal.
func NewLogger(out *os.File, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	if lvl, ok := parseLevel(os.Getenv(EnvLogLevel)); ok {
		level = lvl
	}

	var w io.Writer = out
	if !strings.EqualFold(strings.TrimSpace(os.Getenv(EnvLogFormat)), "json") {
		w = zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    !term.IsTerminal(int(out.Fd())),
			TimeFormat: time.DateTime,
		}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func parseLevel(raw string) (zerolog.Level, bool) {
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
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}
