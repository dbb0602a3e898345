package config

import (
	"fmt"
	"strings"
	"time"
)

// Rate limit key strategies.  The limiter only guards unauthenticated
// routes, so buckets are keyed by client address and never by user.
const (
	RateKeyIP      = "ip"
	RateKeyIPRoute = "ip_route"
)

// RateLimitConfig tunes the Redis token bucket placed in front of the
// unauthenticated auth endpoints (login, register, forgot/reset password).
// Defaults allow a burst of ten attempts per client and route, refilled one
// every six seconds.
type RateLimitConfig struct {
	Enabled        bool          `env:"RATE_LIMIT_ENABLED" env-default:"true"`
	Capacity       int           `env:"RATE_LIMIT_CAPACITY" env-default:"10"`
	RefillTokens   int           `env:"RATE_LIMIT_REFILL_TOKENS" env-default:"1"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" env-default:"6s"`
	TTL            time.Duration `env:"RATE_LIMIT_TTL" env-default:"10m"`
	KeyStrategy    string        `env:"RATE_LIMIT_KEY_STRATEGY" env-default:"ip_route"`
	Prefix         string        `env:"RATE_LIMIT_PREFIX" env-default:"pv:rl"`
	Debug          bool          `env:"RATE_LIMIT_DEBUG" env-default:"false"`
}

// normalize clamps out-of-range numbers and rejects unknown key strategies.
func (r *RateLimitConfig) normalize() error {
	r.KeyStrategy = strings.ToLower(strings.TrimSpace(r.KeyStrategy))
	switch r.KeyStrategy {
	case RateKeyIP, RateKeyIPRoute:
	default:
		return fmt.Errorf("unsupported RATE_LIMIT_KEY_STRATEGY %q (want %s or %s)", r.KeyStrategy, RateKeyIP, RateKeyIPRoute)
	}
	if r.Capacity < 1 {
		r.Capacity = 1
	}
	if r.RefillTokens < 1 {
		r.RefillTokens = 1
	}
	if r.RefillInterval <= 0 {
		r.RefillInterval = time.Second
	}
	if minTTL := 5 * r.RefillInterval; r.TTL < minTTL {
		r.TTL = minTTL
	}
	return nil
}
