package logging

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const flushTimeout = 2 * time.Second

// Recover logs an in-flight panic as an uncaught exception, flushes every
// sink and re-panics. Use it directly with defer.
func (l *Logger) Recover() {
	v := recover()
	if v == nil {
		return
	}
	l.exceptions.Error("Uncaught exception", zap.Any("error", v))

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	_ = l.Close(ctx)
	cancel()

	panic(v)
}

// Go runs fn in its own goroutine. An error returned by fn is logged as an
// unhandled rejection and delivered on the returned channel, which is closed
// once fn finishes. A panic in fn is logged the same way before crashing.
func (l *Logger) Go(name string, fn func() error) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		defer func() {
			if v := recover(); v != nil {
				l.rejections.Error("Unhandled rejection", zap.String("task", name), zap.Any("error", v))
				ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
				_ = l.Close(ctx)
				cancel()
				panic(fmt.Sprintf("%s: %v", name, v))
			}
		}()

		if err := fn(); err != nil {
			l.rejections.Error("Unhandled rejection", zap.String("task", name), zap.Error(err))
			errc <- err
		}
	}()
	return errc
}
