package check

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/keshon/lotr-bot/pkg/cmd"
)

const maxTrackedUsers = 10000

type userBucket struct {
	lim      *rate.Limiter
	rejected bool
}

// RateLimiter keeps a token bucket per user.
type RateLimiter struct {
	mu    sync.Mutex
	limit rate.Limit
	burst int
	users map[string]*userBucket
	now   func() time.Time
}

// NewRateLimiter allows perMinute invocations per user with the given burst.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limit: rate.Every(time.Minute / time.Duration(perMinute)),
		burst: burst,
		users: make(map[string]*userBucket),
		now:   time.Now,
	}
}

// Allow takes a token for userID or returns a *RateLimitedError.
func (r *RateLimiter) Allow(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	b, ok := r.users[userID]
	if !ok {
		if len(r.users) >= maxTrackedUsers {
			r.pruneLocked(now)
		}
		b = &userBucket{lim: rate.NewLimiter(r.limit, r.burst)}
		r.users[userID] = b
	}

	if b.lim.AllowN(now, 1) {
		b.rejected = false
		return nil
	}

	first := !b.rejected
	b.rejected = true
	missing := 1 - b.lim.TokensAt(now)
	wait := time.Duration(missing / float64(r.limit) * float64(time.Second))
	return &RateLimitedError{FirstTry: first, Wait: wait}
}

// pruneLocked forgets users whose bucket has refilled.
func (r *RateLimiter) pruneLocked(now time.Time) {
	for id, b := range r.users {
		if b.lim.TokensAt(now) >= float64(r.burst) {
			delete(r.users, id)
		}
	}
}

// RateLimit is the check form of l.
func RateLimit(l *RateLimiter) Check {
	return Check{
		Name: "rate_limit",
		Fn: func(_ context.Context, inv *cmd.Invocation) error {
			return l.Allow(inv.UserID)
		},
	}
}
