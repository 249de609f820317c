// Package engine contains the shared-resource lifecycle manager, the request
// admission limiter and the transcription pipeline that composes them.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/voxgate/voxgate/internal/core/speech"
)

// ErrConstructionFailed wraps factory errors from Acquire. The manager resets
// to the absent state, so a later Acquire retries from scratch.
var ErrConstructionFailed = errors.New("recognizer construction failed")

// ResourceStatus is the advisory lifecycle state of the shared recognizer.
type ResourceStatus string

const (
	StatusAbsent ResourceStatus = "absent"
	StatusReady  ResourceStatus = "ready"
)

// ManagerConfig controls idle eviction of the shared recognizer.
type ManagerConfig struct {
	// IdleTimeout is how long the recognizer may sit unused before the
	// sweep evicts it.
	IdleTimeout time.Duration

	// SweepInterval is how often the background sweep checks for idleness.
	SweepInterval time.Duration

	// Clock overrides time.Now for tests.
	Clock func() time.Time

	// OnEvict, when set, runs after the sweep destroys an idle recognizer.
	// It is called outside the manager lock.
	OnEvict func()
}

// Manager owns the single lazily-constructed speech recognizer.
//
// Construction, eviction and the last-used refresh all serialize on one
// mutex: a handle returned by Acquire cannot be evicted before the caller's
// acquisition completes. The manager deliberately does not track a borrow
// count across the inference call itself; a long-running transcription may
// race with an eviction decision.
type Manager struct {
	factory       speech.Factory
	idleTimeout   time.Duration
	sweepInterval time.Duration
	clock         func() time.Time
	onEvict       func()

	mu       sync.Mutex
	rec      speech.Recognizer
	builtAt  time.Time
	lastUsed time.Time

	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewManager creates a manager around the injected recognizer factory.
// The background sweep does not run until Start is called.
func NewManager(factory speech.Factory, cfg ManagerConfig) *Manager {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 10 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 5 * time.Minute
	}
	clock := cfg.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}

	return &Manager{
		factory:       factory,
		idleTimeout:   cfg.IdleTimeout,
		sweepInterval: cfg.SweepInterval,
		clock:         clock,
		onEvict:       cfg.OnEvict,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Acquire returns the shared recognizer, constructing it on first use.
//
// Concurrent callers during construction block on the mutex and observe the
// single outcome: the one constructed instance, or the construction error.
// Every successful acquisition refreshes the last-used timestamp before the
// handle is returned.
func (m *Manager) Acquire(ctx context.Context) (speech.Recognizer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rec == nil {
		rec, err := m.factory()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConstructionFailed, err)
		}
		m.rec = rec
		m.builtAt = m.clock()
	}

	m.lastUsed = m.clock()
	return m.rec, nil
}

// Status reports whether a recognizer is currently loaded. It never triggers
// construction; readers must treat the value as advisory.
func (m *Manager) Status() ResourceStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rec == nil {
		return StatusAbsent
	}
	return StatusReady
}

// Start launches the background idle sweep. Call Stop to terminate it.
func (m *Manager) Start() {
	if !m.started.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer close(m.done)

		ticker := time.NewTicker(m.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-m.stop:
				return
			case <-ticker.C:
				m.EvictIfIdle()
			}
		}
	}()
}

// Stop terminates the sweep and evicts any loaded recognizer. Safe to call
// when Start never ran.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		if m.started.Load() {
			<-m.done
		}
		m.evict()
	})
}

// EvictIfIdle destroys the recognizer when it has been unused for longer
// than the idle timeout. Exposed for deterministic tests; the sweep calls it
// on every tick.
func (m *Manager) EvictIfIdle() bool {
	m.mu.Lock()

	if m.rec == nil {
		m.mu.Unlock()
		return false
	}
	if m.clock().Sub(m.lastUsed) <= m.idleTimeout {
		m.mu.Unlock()
		return false
	}

	_ = m.rec.Close()
	m.rec = nil
	m.mu.Unlock()

	if m.onEvict != nil {
		m.onEvict()
	}
	return true
}

func (m *Manager) evict() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rec != nil {
		_ = m.rec.Close()
		m.rec = nil
	}
}
