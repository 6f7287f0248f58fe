package crawl

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/docdex"
	"golang.org/x/time/rate"
)

// Tuning constants for the adaptive limiter. The thresholds match the
// provider's observed throttling behavior: speed up cautiously, back off
// hard, recover automatically once the remote stops pushing back.
const (
	speedupSuccesses  = 50               // consecutive successes before speeding up
	speedupInterval   = 10 * time.Second // minimum gap between speed-ups
	slowdownInterval  = time.Second      // minimum gap between rate-limit slowdowns
	rateLimitResetAge = 30 * time.Second // quiet period before restoring full speed
	failureStreak     = 5                // consecutive plain failures before a mild slowdown

	minDelayFloor        = 50 * time.Millisecond
	rateLimitDelayMin    = 500 * time.Millisecond
	rateLimitDelayMax    = 5 * time.Second
	plainFailureDelayMax = time.Second
)

// rateLimitPhrases are provider-specific and generic throttling messages,
// including multilingual variants, used when a response carries no usable
// status code.
var rateLimitPhrases = []string{
	"rate limit",
	"too many requests",
	"request throttling",
	"flow control",
	"frequency limit",
	"access frequency",
	"请求过于频繁",
	"访问频率过高",
	"操作太频繁",
}

// IsRateLimitError reports whether an error indicates remote throttling:
// HTTP 429/403/503, or a message matching a known throttling phrase.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	switch docdex.ErrorStatus(err) {
	case 429, 403, 503:
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, phrase := range rateLimitPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

// LimiterConfig configures an AdaptiveLimiter.
type LimiterConfig struct {
	// MaxConcurrent caps concurrency. Defaults to 10.
	MaxConcurrent int

	// MinConcurrent floors concurrency under throttling. Defaults to 2.
	MinConcurrent int

	// InitialConcurrent is the starting concurrency. Defaults to
	// MaxConcurrent.
	InitialConcurrent int

	// MinDelay is the inter-dispatch delay floor. Defaults to 50ms.
	MinDelay time.Duration

	// InitialDelay is the starting inter-dispatch delay. Defaults to
	// MinDelay.
	InitialDelay time.Duration

	// Clock abstracts time for tests. Defaults to SystemClock.
	Clock Clock
}

func (c LimiterConfig) withDefaults() LimiterConfig {
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 10
	}
	if c.MinConcurrent <= 0 {
		c.MinConcurrent = 2
	}
	if c.InitialConcurrent <= 0 {
		c.InitialConcurrent = c.MaxConcurrent
	}
	if c.MinDelay <= 0 {
		c.MinDelay = minDelayFloor
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = c.MinDelay
	}
	if c.Clock == nil {
		c.Clock = SystemClock()
	}
	return c
}

// LimiterStats is a snapshot of the limiter's state.
type LimiterStats struct {
	CurrentConcurrent    int
	CurrentDelay         time.Duration
	InFlight             int
	ConsecutiveSuccesses int
	ConsecutiveFailures  int
	TotalRequests        int64
	TotalSuccesses       int64
	TotalFailures        int64
	TotalRateLimits      int64
	LastRateLimit        time.Time
}

// AdaptiveLimiter is the single admission-control point for outbound
// requests. It bounds in-flight operations and paces dispatches, widening or
// narrowing both based on observed success and failure patterns.
//
// AdaptiveLimiter is safe for concurrent use. State is mutated only while
// recording an operation's outcome; Execute never swallows the operation's
// own error.
type AdaptiveLimiter struct {
	cfg   LimiterConfig
	clock Clock
	pacer *rate.Limiter

	mu   sync.Mutex
	cond *sync.Cond

	current int
	delay   time.Duration
	running int

	consecSuccess int
	consecFailure int

	totalRequests   int64
	totalSuccesses  int64
	totalFailures   int64
	totalRateLimits int64

	lastSpeedup   time.Time
	lastSlowdown  time.Time
	lastRateLimit time.Time
	resetAt       time.Time // pending restore-to-full transition, zero if none
}

// NewAdaptiveLimiter creates a limiter with the given configuration.
func NewAdaptiveLimiter(cfg LimiterConfig) *AdaptiveLimiter {
	cfg = cfg.withDefaults()
	l := &AdaptiveLimiter{
		cfg:     cfg,
		clock:   cfg.Clock,
		current: cfg.InitialConcurrent,
		delay:   cfg.InitialDelay,
		pacer:   rate.NewLimiter(delayLimit(cfg.InitialDelay), 1),
	}
	l.cond = sync.NewCond(&l.mu)
	return l
}

func delayLimit(d time.Duration) rate.Limit {
	if d <= 0 {
		return rate.Inf
	}
	return rate.Every(d)
}

// Execute submits an operation through the limiter. It blocks until an
// admission slot and the pacing interval allow dispatch, runs fn, records the
// outcome as a side effect, and returns fn's own result.
func (l *AdaptiveLimiter) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := l.acquire(ctx); err != nil {
		return err
	}
	if err := l.pacer.Wait(ctx); err != nil {
		l.mu.Lock()
		l.running--
		l.cond.Broadcast()
		l.mu.Unlock()
		return err
	}

	err := fn(ctx)

	l.mu.Lock()
	l.running--
	l.record(err, l.clock.Now())
	l.cond.Broadcast()
	l.mu.Unlock()

	return err
}

// acquire blocks until the caller may run, respecting currentConcurrent.
// Scheduled state transitions (the rate-limit reset) are evaluated here, so
// the state machine advances whenever work flows through the limiter.
func (l *AdaptiveLimiter) acquire(ctx context.Context) error {
	// Wake waiters when the context is canceled.
	stop := context.AfterFunc(ctx, func() {
		l.mu.Lock()
		l.cond.Broadcast()
		l.mu.Unlock()
	})
	defer stop()

	l.mu.Lock()
	defer l.mu.Unlock()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.evaluate(l.clock.Now())
		if l.running < l.current {
			l.running++
			return nil
		}
		l.cond.Wait()
	}
}

// evaluate applies any scheduled transition that has come due.
// Must be called with l.mu held.
func (l *AdaptiveLimiter) evaluate(now time.Time) {
	if l.resetAt.IsZero() || now.Before(l.resetAt) {
		return
	}
	// No rate-limit event for the full quiet period: restore full speed.
	l.current = l.cfg.MaxConcurrent
	l.setDelay(l.cfg.MinDelay)
	l.resetAt = time.Time{}
	l.consecSuccess = 0
	l.consecFailure = 0
}

// record updates limiter state from one operation's outcome.
// Must be called with l.mu held.
func (l *AdaptiveLimiter) record(err error, now time.Time) {
	l.evaluate(now)
	l.totalRequests++

	if err == nil {
		l.totalSuccesses++
		l.consecSuccess++
		l.consecFailure = 0
		l.maybeSpeedup(now)
		return
	}

	l.totalFailures++
	l.consecSuccess = 0

	if IsRateLimitError(err) {
		l.totalRateLimits++
		l.consecFailure = 0
		l.onRateLimit(now)
		return
	}

	l.consecFailure++
	if l.consecFailure >= failureStreak {
		// Mild slowdown: repeated plain failures usually mean remote
		// strain rather than throttling.
		l.setDelay(min(scaleDuration(l.delay, 1.5), plainFailureDelayMax))
		l.consecFailure = 0
	}
}

// maybeSpeedup widens the limiter after a long unbroken success streak.
// Throttled so back-to-back streaks cannot oscillate the state.
func (l *AdaptiveLimiter) maybeSpeedup(now time.Time) {
	if l.consecSuccess < speedupSuccesses {
		return
	}
	if now.Sub(l.lastSpeedup) < speedupInterval || now.Sub(l.lastSlowdown) < speedupInterval {
		l.consecSuccess = 0
		return
	}
	l.current = min(l.current+2, l.cfg.MaxConcurrent)
	l.setDelay(max(scaleDuration(l.delay, 0.9), l.cfg.MinDelay))
	l.lastSpeedup = now
	l.consecSuccess = 0
	l.cond.Broadcast()
}

// onRateLimit narrows the limiter after remote throttling and schedules an
// automatic reset once the remote stays quiet.
func (l *AdaptiveLimiter) onRateLimit(now time.Time) {
	l.lastRateLimit = now
	l.resetAt = now.Add(rateLimitResetAge)

	if now.Sub(l.lastSlowdown) < slowdownInterval {
		return
	}
	l.current = max(l.current/2, l.cfg.MinConcurrent)
	delay := l.delay * 2
	if delay < rateLimitDelayMin {
		delay = rateLimitDelayMin
	}
	if delay > rateLimitDelayMax {
		delay = rateLimitDelayMax
	}
	l.setDelay(delay)
	l.lastSlowdown = now
}

// setDelay updates both the recorded delay and the pacer.
// Must be called with l.mu held.
func (l *AdaptiveLimiter) setDelay(d time.Duration) {
	l.delay = d
	l.pacer.SetLimit(delayLimit(d))
}

// Stats returns a snapshot of the limiter's state, advancing any scheduled
// transition first.
func (l *AdaptiveLimiter) Stats() LimiterStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.evaluate(l.clock.Now())
	return LimiterStats{
		CurrentConcurrent:    l.current,
		CurrentDelay:         l.delay,
		InFlight:             l.running,
		ConsecutiveSuccesses: l.consecSuccess,
		ConsecutiveFailures:  l.consecFailure,
		TotalRequests:        l.totalRequests,
		TotalSuccesses:       l.totalSuccesses,
		TotalFailures:        l.totalFailures,
		TotalRateLimits:      l.totalRateLimits,
		LastRateLimit:        l.lastRateLimit,
	}
}

// LogStats logs the current limiter state.
func (l *AdaptiveLimiter) LogStats(logger *slog.Logger) {
	s := l.Stats()
	logger.Info("rate limiter stats",
		"concurrent", s.CurrentConcurrent,
		"delay", s.CurrentDelay,
		"in_flight", s.InFlight,
		"requests", s.TotalRequests,
		"successes", s.TotalSuccesses,
		"failures", s.TotalFailures,
		"rate_limits", s.TotalRateLimits,
	)
}

func scaleDuration(d time.Duration, f float64) time.Duration {
	return time.Duration(float64(d) * f)
}
