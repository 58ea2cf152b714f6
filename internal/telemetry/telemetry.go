// Package telemetry builds the process logger and bridges lifecycle
// events into it. The core packages never log directly; they emit events
// and the CLI decides where those go.
package telemetry

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Format selects the log output encoding.
type Format string

const (
	// FormatAuto picks text on a terminal and JSON otherwise
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Options configure the process logger.
type Options struct {
	// Verbosity raises the level: 0 warn, 1 info, 2+ debug
	Verbosity int

	Format Format
}

// ParseFormat validates a format name from a flag or settings file.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatAuto, FormatText, FormatJSON:
		return Format(name), nil
	case "":
		return FormatAuto, nil
	}
	return "", fmt.Errorf("unknown log format %q (expected auto, text, or json)", name)
}

// NewLogger builds a zap logger writing to stderr. Stdout stays reserved
// for command output.
func NewLogger(opts Options) *zap.Logger {
	level := zapcore.WarnLevel
	switch {
	case opts.Verbosity >= 2:
		level = zapcore.DebugLevel
	case opts.Verbosity == 1:
		level = zapcore.InfoLevel
	}

	format := opts.Format
	if format == "" || format == FormatAuto {
		if term.IsTerminal(int(os.Stderr.Fd())) {
			format = FormatText
		} else {
			format = FormatJSON
		}
	}

	var encoder zapcore.Encoder
	if format == FormatJSON {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "time"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if !term.IsTerminal(int(os.Stderr.Fd())) {
			cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		}
		encoder = zapcore.NewConsoleEncoder(cfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level)
	return zap.New(core)
}
