package main

import (
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var convertLog = zap.NewNop()
var workerLog = zap.NewNop()

func enableLogging(l *zap.Logger) {
	convertLog = l.Named("convert")
	workerLog = l.Named("worker")
}

// newLogger prints human readable logs on a terminal and JSON otherwise.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if isatty.IsTerminal(os.Stderr.Fd()) {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
