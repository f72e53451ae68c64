// internal/app/system/workers/libraryeviction.go
package workers

import (
	"sync"
	"time"

	"github.com/dalemusser/edulibrary/internal/app/system/metrics"
	"go.uber.org/zap"
)

// Evictor is the part of the libraries registry the worker drives.
type Evictor interface {
	EvictIdle(threshold time.Duration) int
	Len() int
}

// LibraryEviction is a background worker that drops per-session libraries
// nobody has touched for a while, so abandoned browser sessions do not pin
// memory forever.
type LibraryEviction struct {
	registry      Evictor
	log           *zap.Logger
	interval      time.Duration
	idleThreshold time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup
}

// NewLibraryEviction creates a new eviction worker.
//
// Parameters:
//   - registry: the libraries registry
//   - logger: zap logger for logging
//   - interval: how often to sweep (e.g., 1 minute)
//   - idleThreshold: how long a library must be idle before it is dropped (e.g., 30 minutes)
func NewLibraryEviction(registry Evictor, logger *zap.Logger, interval, idleThreshold time.Duration) *LibraryEviction {
	return &LibraryEviction{
		registry:      registry,
		log:           logger,
		interval:      interval,
		idleThreshold: idleThreshold,
		stopCh:        make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *LibraryEviction) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("library eviction worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("idle_threshold", w.idleThreshold))
}

// Stop signals the worker to stop and waits for it to finish. Calling Stop
// more than once is safe.
func (w *LibraryEviction) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("library eviction worker stopped")
	})
}

func (w *LibraryEviction) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Sweep()
		}
	}
}

// Sweep runs one eviction pass and returns how many libraries were dropped.
func (w *LibraryEviction) Sweep() int {
	n := w.registry.EvictIdle(w.idleThreshold)
	metrics.AddLibrariesEvicted(n)
	metrics.SetLibrariesOpen(w.registry.Len())

	if n > 0 {
		w.log.Info("evicted idle libraries",
			zap.Int("count", n),
			zap.Int("remaining", w.registry.Len()))
	}
	return n
}
