// Package ratelimit provides per-source admission control for acquisition
// requests. Each source gets an isolated sliding window and adaptive delay;
// sources never block each other.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/jobsift/jobsift/internal/utils"

	"go.uber.org/zap"
)

const (
	// Admission never returns a delay below this floor, even for sources
	// with a perfect success rate.
	minDelay = 100 * time.Millisecond

	burstPenaltyStep = 500 * time.Millisecond
)

// Config bounds request frequency for one source.
type Config struct {
	MaxRequests int           `mapstructure:"max-requests"`
	TimeWindow  time.Duration `mapstructure:"time-window"`
	BurstLimit  int           `mapstructure:"burst-limit"`
	RetryAfter  time.Duration `mapstructure:"retry-after"`
}

// DefaultConfig applies to sources without an explicit entry.
func DefaultConfig() Config {
	return Config{
		MaxRequests: 15,
		TimeWindow:  time.Minute,
		BurstLimit:  5,
		RetryAfter:  time.Second,
	}
}

// Stats is a read-only snapshot of one source's limiter state.
type Stats struct {
	Requests        int
	Successes       int
	Failures        int
	SuccessRate     float64
	CurrentDelay    time.Duration
	WindowOccupancy int
}

type sourceState struct {
	mu        sync.Mutex
	window    []time.Time
	delay     time.Duration
	requests  int
	successes int
	failures  int
}

// Limiter tracks admission windows and adaptive delays per source key.
type Limiter struct {
	mu      sync.Mutex
	configs map[string]Config
	states  map[string]*sourceState
	logger  *zap.Logger

	// Overridable in tests.
	now  func() time.Time
	wait func(ctx context.Context, d time.Duration) error
}

func New(configs map[string]Config, logger *zap.Logger) *Limiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Limiter{
		configs: configs,
		states:  make(map[string]*sourceState),
		logger:  logger,
		now:     time.Now,
		wait:    utils.WaitFor,
	}
}

func (l *Limiter) config(source string) Config {
	if cfg, ok := l.configs[source]; ok {
		return cfg
	}
	if cfg, ok := l.configs["default"]; ok {
		return cfg
	}
	return DefaultConfig()
}

func (l *Limiter) state(source string) *sourceState {
	l.mu.Lock()
	defer l.mu.Unlock()
	st, ok := l.states[source]
	if !ok {
		st = &sourceState{delay: l.config(source).RetryAfter}
		l.states[source] = st
	}
	return st
}

// Admit blocks until the source's window has room, then records the request
// timestamp. Requests are only ever delayed, never dropped; the wait is
// cancellable through ctx.
func (l *Limiter) Admit(ctx context.Context, source string) error {
	cfg := l.config(source)
	st := l.state(source)

	for {
		st.mu.Lock()
		now := l.now()
		st.prune(now, cfg.TimeWindow)

		if len(st.window) < cfg.MaxRequests {
			st.window = append(st.window, now)
			st.requests++
			st.mu.Unlock()
			return nil
		}

		wait := cfg.TimeWindow - now.Sub(st.window[0])
		st.mu.Unlock()

		l.logger.Debug("rate limited, waiting for window slot",
			zap.String("source", source),
			zap.Duration("wait", wait),
		)

		if err := l.wait(ctx, wait); err != nil {
			return err
		}
	}
}

// RecordOutcome folds a request result into the source's rolling counters and
// returns the recomputed adaptive delay the caller should apply before its
// next request.
func (l *Limiter) RecordOutcome(source string, success bool) time.Duration {
	cfg := l.config(source)
	st := l.state(source)

	st.mu.Lock()
	defer st.mu.Unlock()

	if success {
		st.successes++
	} else {
		st.failures++
	}

	rate := 1.0
	if st.requests > 0 {
		rate = float64(st.successes) / float64(st.requests)
	}

	base := cfg.RetryAfter.Seconds()
	var delay float64
	switch {
	case rate < 0.8:
		delay = base * (1.5 - rate)
	case rate > 0.95:
		delay = base * maxFloat(0.5, rate-0.5)
	default:
		delay = base
	}

	adaptive := time.Duration(delay * float64(time.Second))

	st.prune(l.now(), cfg.TimeWindow)
	if occupancy := len(st.window); occupancy > cfg.BurstLimit {
		adaptive += burstPenaltyStep * time.Duration(occupancy-cfg.BurstLimit)
	}

	if adaptive < minDelay {
		adaptive = minDelay
	}

	st.delay = adaptive
	return adaptive
}

// Stats returns a snapshot for one source.
func (l *Limiter) Stats(source string) Stats {
	cfg := l.config(source)
	st := l.state(source)

	st.mu.Lock()
	defer st.mu.Unlock()

	st.prune(l.now(), cfg.TimeWindow)

	rate := 1.0
	if st.requests > 0 {
		rate = float64(st.successes) / float64(st.requests)
	}

	return Stats{
		Requests:        st.requests,
		Successes:       st.successes,
		Failures:        st.failures,
		SuccessRate:     rate,
		CurrentDelay:    st.delay,
		WindowOccupancy: len(st.window),
	}
}

// StatsAll returns snapshots for every source seen so far.
func (l *Limiter) StatsAll() map[string]Stats {
	l.mu.Lock()
	sources := make([]string, 0, len(l.states))
	for source := range l.states {
		sources = append(sources, source)
	}
	l.mu.Unlock()

	all := make(map[string]Stats, len(sources))
	for _, source := range sources {
		all[source] = l.Stats(source)
	}
	return all
}

func (st *sourceState) prune(now time.Time, window time.Duration) {
	cut := 0
	for cut < len(st.window) && now.Sub(st.window[cut]) >= window {
		cut++
	}
	if cut > 0 {
		st.window = append(st.window[:0], st.window[cut:]...)
	}
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
