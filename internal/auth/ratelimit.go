package auth

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RateLimitConfig tunes login throttling. Zero fields take the defaults.
type RateLimitConfig struct {
	MaxAttempts     int
	WindowDuration  time.Duration
	LockoutDuration time.Duration
	CleanupInterval time.Duration
}

// DefaultRateLimitConfig allows 5 failed logins per 15 minutes and then
// locks the pair out for 30 minutes.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxAttempts:     5,
		WindowDuration:  15 * time.Minute,
		LockoutDuration: 30 * time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

func (cfg RateLimitConfig) withDefaults() RateLimitConfig {
	def := DefaultRateLimitConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = def.WindowDuration
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}
	return cfg
}

// failureLog holds the recent failures of one client and identifier pair.
// failures stays sorted, oldest first.
type failureLog struct {
	failures    []time.Time
	lockedUntil time.Time
}

// trim drops failures older than the window starting at since.
func (l *failureLog) trim(since time.Time) {
	i := 0
	for i < len(l.failures) && l.failures[i].Before(since) {
		i++
	}
	l.failures = l.failures[i:]
}

func (l *failureLog) idle(now, since time.Time) bool {
	l.trim(since)
	return len(l.failures) == 0 && !now.Before(l.lockedUntil)
}

// RateLimiter throttles logins before they reach the catalog. It keeps a
// sliding window of failures per client IP and identifier; reaching the
// maximum inside the window locks the pair out.
type RateLimiter struct {
	cfg RateLimitConfig
	now func() time.Time

	mu   sync.Mutex
	logs map[string]*failureLog

	sweeper *cron.Cron
}

// NewRateLimiter starts a limiter whose idle entries are swept every
// CleanupInterval.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		cfg:     cfg.withDefaults(),
		now:     time.Now,
		logs:    make(map[string]*failureLog),
		sweeper: cron.New(),
	}
	// An @every spec with a positive duration always parses.
	_, _ = rl.sweeper.AddFunc(fmt.Sprintf("@every %s", rl.cfg.CleanupInterval), rl.sweep)
	rl.sweeper.Start()
	return rl
}

// Stop ends the sweeper. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	<-rl.sweeper.Stop().Done()
}

func pairKey(ip, identifier string) string {
	return ip + "|" + strings.ToLower(strings.TrimSpace(identifier))
}

// Wait returns how long the pair must wait before trying again, or 0 when
// a login may go ahead.
func (rl *RateLimiter) Wait(ip, identifier string) time.Duration {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.logs[pairKey(ip, identifier)]
	if !ok || !now.Before(l.lockedUntil) {
		return 0
	}
	return l.lockedUntil.Sub(now)
}

// Fail records a rejected login. It returns the lockout when this failure
// reached the limit, and 0 otherwise.
func (rl *RateLimiter) Fail(ip, identifier string) time.Duration {
	now := rl.now()
	key := pairKey(ip, identifier)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.logs[key]
	if !ok {
		l = &failureLog{}
		rl.logs[key] = l
	}
	l.trim(now.Add(-rl.cfg.WindowDuration))
	l.failures = append(l.failures, now)

	if len(l.failures) < rl.cfg.MaxAttempts {
		return 0
	}
	l.failures = nil
	l.lockedUntil = now.Add(rl.cfg.LockoutDuration)
	return rl.cfg.LockoutDuration
}

// Reset forgets the pair after a successful login.
func (rl *RateLimiter) Reset(ip, identifier string) {
	rl.mu.Lock()
	delete(rl.logs, pairKey(ip, identifier))
	rl.mu.Unlock()
}

func (rl *RateLimiter) sweep() {
	now := rl.now()
	since := now.Add(-rl.cfg.WindowDuration)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, l := range rl.logs {
		if l.idle(now, since) {
			delete(rl.logs, key)
		}
	}
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.logs)
}
