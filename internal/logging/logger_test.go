package logging

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type observedStreams struct {
	mu      sync.Mutex
	streams map[string]*observer.ObservedLogs
}

func (o *observedStreams) factory(labels map[string]string) zapcore.Core {
	core, logs := observer.New(zapcore.DebugLevel)
	key := labels["type"]
	if key == "" {
		key = "main"
	}
	o.mu.Lock()
	o.streams[key] = logs
	o.mu.Unlock()
	return core
}

func newObserved(t *testing.T) (*Logger, *observer.ObservedLogs, *observedStreams) {
	t.Helper()
	console, consoleLogs := observer.New(zapcore.DebugLevel)
	remote := &observedStreams{streams: map[string]*observer.ObservedLogs{}}
	l := build(Options{Service: "test-app-docker", Environment: "test"}, console, remote.factory)
	return l, consoleLogs, remote
}

func TestLoggerAddsDefaultFields(t *testing.T) {
	l, console, remote := newObserved(t)

	l.Info("Status endpoint accessed", zap.String("status", "running"))

	for _, logs := range []*observer.ObservedLogs{console, remote.streams["main"]} {
		entries := logs.All()
		require.Len(t, entries, 1)
		ctx := entries[0].ContextMap()
		assert.Equal(t, "test-app-docker", ctx["service"])
		assert.Equal(t, "test", ctx["environment"])
		assert.Equal(t, "running", ctx["status"])
		assert.False(t, entries[0].Time.IsZero())
	}
}

func TestLoggerCapturesStackAtErrorLevel(t *testing.T) {
	l, console, _ := newObserved(t)

	l.Warn("Warning log test")
	l.Error("Error log test", zap.String("code", "TEST_ERROR"))

	entries := console.All()
	require.Len(t, entries, 2)
	assert.Empty(t, entries[0].Stack)
	assert.NotEmpty(t, entries[1].Stack)
}

func TestLocalLoggerSkipsRemote(t *testing.T) {
	l, console, remote := newObserved(t)

	l.Local().Warn("diagnostic")

	assert.Equal(t, 1, console.Len())
	assert.Equal(t, 0, remote.streams["main"].Len())
}

func TestGoLogsRejection(t *testing.T) {
	l, console, remote := newObserved(t)
	boom := errors.New("listen tcp :3000: bind: address already in use")

	errc := l.Go("http-server", func() error { return boom })

	assert.ErrorIs(t, <-errc, boom)
	_, open := <-errc
	assert.False(t, open)

	entries := remote.streams["rejection"].FilterMessage("Unhandled rejection").All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "rejection", ctx["type"])
	assert.Equal(t, "http-server", ctx["task"])
	assert.Equal(t, 1, console.FilterField(zap.String("type", "rejection")).Len())
}

func TestGoSuccessfulTaskLogsNothing(t *testing.T) {
	l, console, _ := newObserved(t)

	errc := l.Go("noop", func() error { return nil })

	_, open := <-errc
	assert.False(t, open)
	assert.Equal(t, 0, console.Len())
}

func TestRecoverLogsExceptionAndRepanics(t *testing.T) {
	l, _, remote := newObserved(t)

	assert.PanicsWithValue(t, "boom", func() {
		defer l.Recover()
		panic("boom")
	})

	entries := remote.streams["exception"].FilterMessage("Uncaught exception").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "exception", entries[0].ContextMap()["type"])
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
}

func TestNewRejectsInvalidLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Sync() error { return nil }

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestConsoleKeepsLoggingDuringLokiOutage(t *testing.T) {
	out := &syncBuffer{}
	errs := make(chan error, 16)

	l, err := New(Options{
		Service:           "test-app-docker",
		Environment:       "test",
		Level:             "debug",
		LokiHost:          "http://127.0.0.1:1",
		Console:           out,
		OnConnectionError: func(err error) { errs <- err },
	})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		l.Info("HTTP Request", zap.String("route", "/health"))
		l.Error("HTTP Request Error", zap.Int("status", 500))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, l.Close(ctx))

	assert.Contains(t, out.String(), "HTTP Request")
	assert.Contains(t, out.String(), "HTTP Request Error")
	assert.NotEmpty(t, errs)
}

func TestCloseDrainsRemoteSinks(t *testing.T) {
	rec := &pushRecorder{}
	srv := httptest.NewServer(rec.handler(t))
	defer srv.Close()

	l, err := New(Options{
		Service:     "test-app-docker",
		Environment: "test",
		LokiHost:    srv.URL,
		Console:     &syncBuffer{},
	})
	require.NoError(t, err)

	l.Info("drained on close")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, l.Close(ctx))

	assert.Contains(t, string(rec.payload()), "drained on close")
	assert.Contains(t, string(rec.payload()), "test-app-docker")
}
