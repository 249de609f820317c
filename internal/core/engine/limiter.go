package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// LimiterConfig describes one protected operation's admission budget.
type LimiterConfig struct {
	// MaxRequests is the number of requests admitted per sliding window.
	MaxRequests int

	// Window is the trailing window duration.
	Window time.Duration

	// SweepInterval is how often abandoned caller keys are swept out.
	SweepInterval time.Duration

	// Clock overrides time.Now for tests.
	Clock func() time.Time
}

// Limiter is a sliding-window request limiter keyed by caller identity.
//
// The window boundary is recomputed relative to now on every check, so a
// caller admitted at second 0 of a one-hour window becomes eligible again
// exactly one hour after that specific request. One mutex guards the whole
// key map; the read-purge-append sequence for a key is atomic.
type Limiter struct {
	maxRequests   int
	window        time.Duration
	sweepInterval time.Duration
	clock         func() time.Time

	mu      sync.Mutex
	windows map[string][]time.Time

	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewLimiter builds a limiter for one protected operation. Operations get
// independent Limiter instances; exhausting one never affects another.
func NewLimiter(cfg LimiterConfig) *Limiter {
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 100
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Hour
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 5 * time.Minute
	}
	clock := cfg.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}

	return &Limiter{
		maxRequests:   cfg.MaxRequests,
		window:        cfg.Window,
		sweepInterval: cfg.SweepInterval,
		clock:         clock,
		windows:       make(map[string][]time.Time),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Allow records and admits the request when the caller's trailing window has
// budget left. A rejected attempt is not recorded; rejection is terminal for
// that attempt, with no queuing or partial credit.
func (l *Limiter) Allow(key string) bool {
	now := l.clock()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.windows[key][:0]
	for _, ts := range l.windows[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= l.maxRequests {
		l.windows[key] = kept
		return false
	}

	l.windows[key] = append(kept, now)
	return true
}

// MaxRequests returns the configured per-window budget.
func (l *Limiter) MaxRequests() int { return l.maxRequests }

// Window returns the configured sliding window duration.
func (l *Limiter) Window() time.Duration { return l.window }

// Start launches the background sweep that drops caller keys whose windows
// have fully expired, so abandoned callers do not accumulate forever.
func (l *Limiter) Start() {
	if !l.started.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer close(l.done)

		ticker := time.NewTicker(l.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-l.stop:
				return
			case <-ticker.C:
				l.SweepIdleKeys()
			}
		}
	}()
}

// Stop terminates the key sweep. Safe to call when Start never ran.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.stop)
		if l.started.Load() {
			<-l.done
		}
	})
}

// SweepIdleKeys removes keys with no timestamp inside the trailing window.
// Exposed for deterministic tests; the sweep calls it on every tick.
func (l *Limiter) SweepIdleKeys() int {
	cutoff := l.clock().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, window := range l.windows {
		live := false
		for _, ts := range window {
			if ts.After(cutoff) {
				live = true
				break
			}
		}
		if !live {
			delete(l.windows, key)
			removed++
		}
	}
	return removed
}
