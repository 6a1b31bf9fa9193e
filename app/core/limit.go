package core

import (
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
	"golang.org/x/time/rate"
)

const defaultRatePerMinute = 120

type limiters struct {
	store cmap.ConcurrentMap[string, *rate.Limiter]
}

func newLimiters() *limiters {
	return &limiters{store: cmap.New[*rate.Limiter]()}
}

// UseLimiter returns the token-bucket limiter for key, creating it on first
// use. perMinute <= 0 falls back to the default rate.
func (s *Core) UseLimiter(key string, perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		perMinute = defaultRatePerMinute
	}

	if limiter, ok := s.limiters.store.Get(key); ok {
		return limiter
	}

	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute*2)
	s.limiters.store.SetIfAbsent(key, limiter)
	// 并发创建时以先写入者为准
	limiter, _ = s.limiters.store.Get(key)
	return limiter
}
