// Package logger builds the zap loggers used by the mixlab commands.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel maps a level name to a zap level. The empty string means warn.
func ParseLevel(name string) (zapcore.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return zapcore.WarnLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return lvl, errors.WithHint(
			errors.Newf("unknown log level %q", name),
			"use one of debug, info, warn, error")
	}
	return lvl, nil
}

// New builds a console logger on stderr. Verbose forces debug level;
// otherwise level applies.
func New(verbose bool, level string) (*zap.SugaredLogger, error) {
	return NewWithWriter(os.Stderr, verbose, level)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, verbose bool, level string) (*zap.SugaredLogger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}

	cfg := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		NameKey:        "logger",
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg),
		zapcore.AddSync(w),
		lvl,
	)
	return zap.New(core).Sugar(), nil
}
