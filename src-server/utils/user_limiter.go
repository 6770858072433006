package utils

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// forget limiters that are back to a full bucket once the map grows past this
const userLimiterSweepSize = 1024

// UserLimiter allows one action per user per interval.
type UserLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	limiters map[string]*rate.Limiter
}

// NewUserLimiter returns a limiter; an interval of 0 allows everything.
func NewUserLimiter(interval time.Duration) *UserLimiter {
	return &UserLimiter{
		interval: interval,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (u *UserLimiter) Allow(userID string) bool {
	if u == nil || u.interval <= 0 {
		return true
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	limiter, ok := u.limiters[userID]
	if !ok {
		if len(u.limiters) >= userLimiterSweepSize {
			u.sweep()
		}
		limiter = rate.NewLimiter(rate.Every(u.interval), 1)
		u.limiters[userID] = limiter
	}
	return limiter.Allow()
}

func (u *UserLimiter) sweep() {
	for userID, limiter := range u.limiters {
		if limiter.Tokens() >= 1 {
			delete(u.limiters, userID)
		}
	}
}
