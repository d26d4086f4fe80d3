package config

import (
    "math"
    "time"
)

// BucketPolicy sizes one token bucket: Capacity requests may burst, after
// which RefillPerSec tokens come back every second.
type BucketPolicy struct {
    Capacity     int
    RefillPerSec float64
}

// fullRefill is the time an empty bucket needs to fill up again.
func (p BucketPolicy) fullRefill() time.Duration {
    return time.Duration(float64(p.Capacity) / p.RefillPerSec * float64(time.Second))
}

// RateLimitConfig configures the Redis token buckets placed in front of
// every endpoint.  Reads (GET, HEAD, OPTIONS) and writes draw from separate
// buckets so that browsing the room catalogue cannot starve logins and
// booking requests, and so that writes can be throttled harder.
type RateLimitConfig struct {
    Enabled     bool
    Read        BucketPolicy
    Write       BucketPolicy
    TTL         time.Duration
    KeyStrategy string
    Prefix      string
    Debug       bool
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables.  Non-positive sizes
// are clamped and TTL is raised so an idle bucket is never evicted before
// it has refilled.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled: envBool("RATE_LIMIT_ENABLED", true),
        Read: BucketPolicy{
            Capacity:     envInt("RATE_LIMIT_READ_CAPACITY", 60),
            RefillPerSec: envFloat("RATE_LIMIT_READ_REFILL_PER_SEC", 1),
        },
        Write: BucketPolicy{
            Capacity:     envInt("RATE_LIMIT_WRITE_CAPACITY", 10),
            RefillPerSec: envFloat("RATE_LIMIT_WRITE_REFILL_PER_SEC", 0.2),
        },
        TTL:         envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy: envStr("RATE_LIMIT_KEY_STRATEGY", "ip_user"),
        Prefix:      envStr("RATE_LIMIT_PREFIX", "hotel:rl"),
        Debug:       envBool("RATE_LIMIT_DEBUG", false),
    }
    for _, p := range []*BucketPolicy{&cfg.Read, &cfg.Write} {
        if p.Capacity < 1 {
            p.Capacity = 1
        }
        if p.RefillPerSec <= 0 || math.IsNaN(p.RefillPerSec) || math.IsInf(p.RefillPerSec, 0) {
            p.RefillPerSec = 1
        }
        if d := p.fullRefill(); cfg.TTL < d {
            cfg.TTL = d
        }
    }
    return cfg
}
