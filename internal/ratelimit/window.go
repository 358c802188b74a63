package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// WindowConfig bounds failed logins: at most MaxAttempts failures per key
// within Window.
type WindowConfig struct {
	MaxAttempts int
	Window      time.Duration
	Prefix      string
}

// MemoryWindow is an in-process sliding window limiter. A gocron job sweeps
// keys whose failures have all aged out of the window.
type MemoryWindow struct {
	mu    sync.Mutex
	cfg   WindowConfig
	hits  map[string][]time.Time
	now   func() time.Time
	log   *zap.Logger
	sched gocron.Scheduler
}

func NewMemoryWindow(cfg WindowConfig, log *zap.Logger) *MemoryWindow {
	return &MemoryWindow{
		cfg:  cfg,
		hits: make(map[string][]time.Time),
		now:  time.Now,
		log:  log,
	}
}

// Start schedules the sweeper to run every interval.
func (w *MemoryWindow) Start(every time.Duration) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = s.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() {
			if n := w.Sweep(); n > 0 {
				w.log.Debug("login limiter swept", zap.Int("keys", n))
			}
		}),
	)
	if err != nil {
		_ = s.Shutdown()
		return err
	}
	s.Start()
	w.sched = s
	return nil
}

// Stop shuts the sweeper down.
func (w *MemoryWindow) Stop() error {
	if w.sched == nil {
		return nil
	}
	return w.sched.Shutdown()
}

func (w *MemoryWindow) Allow(_ context.Context, key string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	return len(w.prune(key)) < w.cfg.MaxAttempts, nil
}

func (w *MemoryWindow) Fail(_ context.Context, key string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	hits := append(w.prune(key), w.now())
	w.hits[key] = hits
	return len(hits), nil
}

func (w *MemoryWindow) Reset(_ context.Context, key string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.hits, key)
	return nil
}

// Sweep drops expired failures and returns how many keys were removed.
func (w *MemoryWindow) Sweep() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	removed := 0
	for key := range w.hits {
		if len(w.prune(key)) == 0 {
			removed++
		}
	}
	return removed
}

// prune must be called with mu held.
func (w *MemoryWindow) prune(key string) []time.Time {
	hits := w.hits[key]
	cutoff := w.now().Add(-w.cfg.Window)
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	hits = hits[i:]
	if len(hits) == 0 {
		delete(w.hits, key)
		return nil
	}
	w.hits[key] = hits
	return hits
}
