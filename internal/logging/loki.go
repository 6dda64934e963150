package logging

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/grafana/loki-client-go/loki"
	"github.com/prometheus/common/model"
	"go.uber.org/zap/zapcore"
)

const lokiPushPath = "/loki/api/v1/push"

// LokiConfig configures a LokiSink.
type LokiConfig struct {
	Host       string
	Labels     map[string]string
	BatchSize  int // bytes
	BatchWait  time.Duration
	BufferSize int
	Timeout    time.Duration

	// OnConnectionError receives every failed push. Defaults to a line on stderr.
	OnConnectionError func(error)
}

// LokiSink ships log lines to Loki through a loki-client-go client.
// The client's Handle blocks while a batch is in flight, so lines pass through
// a bounded queue first: Push never blocks, and lines are dropped when the
// queue is full or the sink is closed.
type LokiSink struct {
	client *loki.Client
	labels model.LabelSet

	mu      sync.Mutex
	closed  bool
	entries chan lokiEntry
	done    chan struct{}
	dropped atomic.Int64
}

type lokiEntry struct {
	ts   time.Time
	line string
}

// NewLokiSink starts a sink pushing to cfg.Host.
func NewLokiSink(cfg LokiConfig) (*LokiSink, error) {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1024
	}
	if cfg.OnConnectionError == nil {
		cfg.OnConnectionError = func(err error) {
			fmt.Fprintf(os.Stderr, "Loki connection error: %v\n", err)
		}
	}

	clientCfg, err := loki.NewDefaultConfig(strings.TrimRight(cfg.Host, "/") + lokiPushPath)
	if err != nil {
		return nil, fmt.Errorf("loki config: %w", err)
	}
	if cfg.BatchSize > 0 {
		clientCfg.BatchSize = cfg.BatchSize
	}
	if cfg.BatchWait > 0 {
		clientCfg.BatchWait = cfg.BatchWait
	}
	if cfg.Timeout > 0 {
		clientCfg.Timeout = cfg.Timeout
	}
	// a single attempt per batch
	clientCfg.BackoffConfig.MaxRetries = 1
	clientCfg.BackoffConfig.MinBackoff = 10 * time.Millisecond
	clientCfg.BackoffConfig.MaxBackoff = 10 * time.Millisecond

	client, err := loki.NewWithLogger(clientCfg, connErrorLogger{report: cfg.OnConnectionError})
	if err != nil {
		return nil, fmt.Errorf("loki client: %w", err)
	}

	labels := make(model.LabelSet, len(cfg.Labels))
	for k, v := range cfg.Labels {
		labels[model.LabelName(k)] = model.LabelValue(v)
	}

	s := &LokiSink{
		client:  client,
		labels:  labels,
		entries: make(chan lokiEntry, cfg.BufferSize),
		done:    make(chan struct{}),
	}
	go s.run()
	return s, nil
}

// Push enqueues a line. It reports false when the line was dropped.
func (s *LokiSink) Push(ts time.Time, line string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.dropped.Add(1)
		return false
	}
	select {
	case s.entries <- lokiEntry{ts: ts, line: line}:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

// Dropped returns the number of lines discarded so far.
func (s *LokiSink) Dropped() int64 {
	return s.dropped.Load()
}

// Close stops accepting lines, flushes everything accepted and stops the client.
func (s *LokiSink) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.entries)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *LokiSink) run() {
	defer close(s.done)
	for e := range s.entries {
		_ = s.client.Handle(s.labels, e.ts, e.line)
	}
	s.client.Stop()
}

// connErrorLogger adapts the client's go-kit style logger to OnConnectionError.
// Only error-level records carrying an error are reported.
type connErrorLogger struct {
	report func(error)
}

func (l connErrorLogger) Log(keyvals ...interface{}) error {
	var lvl, msg string
	var err error
	for i := 0; i+1 < len(keyvals); i += 2 {
		switch fmt.Sprint(keyvals[i]) {
		case "level":
			lvl = fmt.Sprint(keyvals[i+1])
		case "msg":
			msg = fmt.Sprint(keyvals[i+1])
		case "error", "err":
			if e, ok := keyvals[i+1].(error); ok {
				err = e
			} else {
				err = fmt.Errorf("%v", keyvals[i+1])
			}
		}
	}
	if lvl == "error" && err != nil {
		l.report(fmt.Errorf("%s: %w", msg, err))
	}
	return nil
}

// lokiCore is a zapcore.Core that JSON-encodes entries into a LokiSink.
type lokiCore struct {
	zapcore.LevelEnabler
	enc  zapcore.Encoder
	sink *LokiSink
}

// NewLokiCore returns a core writing JSON lines to sink.
func NewLokiCore(sink *LokiSink, enab zapcore.LevelEnabler) zapcore.Core {
	return &lokiCore{
		LevelEnabler: enab,
		enc:          zapcore.NewJSONEncoder(jsonEncoderConfig()),
		sink:         sink,
	}
}

func (c *lokiCore) With(fields []zapcore.Field) zapcore.Core {
	clone := &lokiCore{LevelEnabler: c.LevelEnabler, enc: c.enc.Clone(), sink: c.sink}
	for _, f := range fields {
		f.AddTo(clone.enc)
	}
	return clone
}

func (c *lokiCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

// Write never fails on delivery; undeliverable lines are the sink's concern.
func (c *lokiCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	buf, err := c.enc.EncodeEntry(ent, fields)
	if err != nil {
		return err
	}
	line := strings.TrimSuffix(buf.String(), "\n")
	buf.Free()
	c.sink.Push(ent.Time, line)
	return nil
}

func (c *lokiCore) Sync() error {
	return nil
}
