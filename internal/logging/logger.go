// Package logging builds the service logger: a zap logger fanned out to a
// colour-coded console sink and a Loki push sink, plus dedicated streams for
// uncaught panics and failed background tasks.
package logging

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New.
type Options struct {
	Service     string
	Environment string
	Level       string
	LokiHost    string // empty disables the remote sink

	// Console defaults to stdout.
	Console zapcore.WriteSyncer
	// OnConnectionError receives Loki push failures. Defaults to stderr.
	OnConnectionError func(error)
}

// Logger is the process-wide structured logger.
type Logger struct {
	*zap.Logger

	local      *zap.Logger
	exceptions *zap.Logger
	rejections *zap.Logger
	sinks      []*LokiSink
}

// remoteFactory returns the remote core for a stream identified by labels.
type remoteFactory func(labels map[string]string) zapcore.Core

// New creates a logger writing to the console and, when configured, to Loki.
func New(opts Options) (*Logger, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if opts.Level != "" {
		lvl, err := zap.ParseAtomicLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		level = lvl
	}

	out := opts.Console
	if out == nil {
		out = zapcore.Lock(os.Stdout)
	}
	console := zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig()), out, level)

	var (
		sinks   []*LokiSink
		sinkErr error
	)
	remote := func(labels map[string]string) zapcore.Core {
		if opts.LokiHost == "" || sinkErr != nil {
			return zapcore.NewNopCore()
		}
		sink, err := NewLokiSink(LokiConfig{
			Host:              opts.LokiHost,
			Labels:            labels,
			OnConnectionError: opts.OnConnectionError,
		})
		if err != nil {
			sinkErr = err
			return zapcore.NewNopCore()
		}
		sinks = append(sinks, sink)
		return NewLokiCore(sink, level)
	}

	l := build(opts, console, remote)
	l.sinks = sinks
	if sinkErr != nil {
		_ = l.Close(context.Background())
		return nil, sinkErr
	}
	return l, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	nop := zap.NewNop()
	return &Logger{Logger: nop, local: nop, exceptions: nop, rejections: nop}
}

func build(opts Options, console zapcore.Core, remote remoteFactory) *Logger {
	zopts := []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(
			zap.String("service", opts.Service),
			zap.String("environment", opts.Environment),
		),
	}

	stream := func(kind string) *zap.Logger {
		core := zapcore.NewTee(console, remote(map[string]string{"app": opts.Service, "type": kind}))
		return zap.New(core, zopts...).With(zap.String("type", kind))
	}

	root := zapcore.NewTee(console, remote(map[string]string{
		"app":         opts.Service,
		"environment": opts.Environment,
	}))

	return &Logger{
		Logger:     zap.New(root, zopts...),
		local:      zap.New(console, zopts...),
		exceptions: stream("exception"),
		rejections: stream("rejection"),
	}
}

// Local returns a console-only logger, used to report failures of the
// logging and metrics path itself.
func (l *Logger) Local() *zap.Logger {
	return l.local
}

// Close syncs the console and drains every Loki sink until ctx expires.
// The embedded Sync only flushes the console; Loki delivery ends here.
func (l *Logger) Close(ctx context.Context) error {
	_ = l.Logger.Sync()
	var firstErr error
	for _, s := range l.sinks {
		if err := s.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func consoleEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

func jsonEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.MessageKey = "message"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}
