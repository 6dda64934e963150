package metrics

import (
	"fmt"
	"runtime"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Sampler refreshes runtime gauges on a fixed interval.
type Sampler struct {
	scheduler gocron.Scheduler
	log       *zap.Logger
	started   time.Time

	goroutines prometheus.Gauge
	heapInuse  prometheus.Gauge
	uptime     prometheus.Gauge
}

// NewSampler registers the runtime gauges on r and schedules sampling every interval.
func NewSampler(r *Registry, interval time.Duration, log *zap.Logger) (*Sampler, error) {
	s := &Sampler{
		log:     log,
		started: time.Now(),
		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "app_runtime_goroutines",
			Help: "Goroutines alive at the last sample",
		}),
		heapInuse: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "app_runtime_heap_inuse_bytes",
			Help: "Heap bytes in use at the last sample",
		}),
		uptime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Seconds since the process started, as of the last sample",
		}),
	}
	if err := r.Register(s.goroutines, s.heapInuse, s.uptime); err != nil {
		return nil, fmt.Errorf("register runtime gauges: %w", err)
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	if _, err := sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.Sample),
		gocron.WithName("runtime-metrics"),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	); err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to create sampling job: %w", err)
	}
	s.scheduler = sched
	return s, nil
}

// Start begins periodic sampling.
func (s *Sampler) Start() {
	s.log.Debug("starting runtime metrics sampler")
	s.scheduler.Start()
}

// Stop halts sampling.
func (s *Sampler) Stop() error {
	return s.scheduler.Shutdown()
}

// Sample takes one reading of the runtime gauges.
func (s *Sampler) Sample() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	s.goroutines.Set(float64(runtime.NumGoroutine()))
	s.heapInuse.Set(float64(ms.HeapInuse))
	s.uptime.Set(time.Since(s.started).Seconds())
}
