// internal/app/store/libraries/registry.go
package libraries

import (
	"sync"
	"time"

	resourcestore "github.com/dalemusser/edulibrary/internal/app/store/resources"
	"github.com/dalemusser/edulibrary/internal/domain/models"
	"go.uber.org/zap"
)

// Registry hands each browser session its own resource store. Stores are
// created from the seed catalog on first use and live until they are
// dropped at logout or evicted for being idle.
type Registry struct {
	mu   sync.Mutex
	libs map[string]*Library
	seed []models.Resource
	log  *zap.Logger
	now  func() time.Time
}

// Library is one session's store plus the mutex that serializes calls
// into it.
type Library struct {
	mu       sync.Mutex
	store    *resourcestore.Store
	lastUsed time.Time
	reg      *Registry
}

// New returns a registry that seeds every new library from seed. The seed
// is validated once here so Open never fails.
func New(seed []models.Resource, logger *zap.Logger) (*Registry, error) {
	if _, err := resourcestore.New(seed); err != nil {
		return nil, err
	}
	cp := make([]models.Resource, len(seed))
	for i := range seed {
		cp[i] = seed[i].Clone()
	}
	return &Registry{
		libs: make(map[string]*Library),
		seed: cp,
		log:  logger,
		now:  time.Now,
	}, nil
}

// SetClock replaces the time source. Tests use it to drive eviction.
func (g *Registry) SetClock(now func() time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
}

// Open returns the library for key, creating it from the seed if needed.
func (g *Registry) Open(key string) *Library {
	g.mu.Lock()
	defer g.mu.Unlock()

	if lib, ok := g.libs[key]; ok {
		// A held lock means a Do is running and has just stamped lastUsed.
		if lib.mu.TryLock() {
			lib.lastUsed = g.now()
			lib.mu.Unlock()
		}
		return lib
	}

	// The seed was validated in New.
	store, _ := resourcestore.New(g.seed)
	lib := &Library{store: store, lastUsed: g.now(), reg: g}
	g.libs[key] = lib
	g.log.Debug("library opened", zap.Int("libraries", len(g.libs)))
	return lib
}

// Drop forgets the library for key. The next Open starts from the seed.
func (g *Registry) Drop(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.libs, key)
}

// Len returns the number of live libraries.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.libs)
}

// EvictIdle drops every library not used within threshold and returns how
// many were dropped. A library whose lock is held is busy and is skipped.
func (g *Registry) EvictIdle(threshold time.Duration) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	cutoff := g.now().Add(-threshold)
	n := 0
	for key, lib := range g.libs {
		if !lib.mu.TryLock() {
			continue
		}
		idle := lib.lastUsed.Before(cutoff)
		lib.mu.Unlock()
		if idle {
			delete(g.libs, key)
			n++
		}
	}
	return n
}

func (g *Registry) clock() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.now()
}

// Do runs fn with exclusive access to the store.
func (l *Library) Do(fn func(*resourcestore.Store) error) error {
	now := l.reg.clock()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastUsed = now
	return fn(l.store)
}

// View runs a read under the same lock as Do.
func (l *Library) View(fn func(*resourcestore.Store)) {
	_ = l.Do(func(s *resourcestore.Store) error {
		fn(s)
		return nil
	})
}
