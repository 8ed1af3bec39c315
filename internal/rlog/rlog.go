// Package rlog wires up the compiler's structured logger: a zap.Logger
// tagged with a per-invocation run id, so a batch of compiler runs over
// many domain/instance pairs can be correlated in aggregated log output.
package rlog

import (
	"os"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger for one compiler invocation. debug raises the
// level to Debug; otherwise only Info and above are emitted. Output goes to stderr so stdout stays reserved for
// the synthesised PDDL text (spec.md §6).
func New(debug bool) *zap.Logger {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if isatty.IsTerminal(os.Stderr.Fd()) {
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		// zap's own config construction failed; fall back to a logger
		// that still works rather than leaving the caller with nil.
		logger = zap.NewNop()
	}
	return logger.With(zap.String("run_id", uuid.NewString()))
}
