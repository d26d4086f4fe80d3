package middleware

import (
    "context"
    "fmt"
    "math"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/hotelmanager/hotel-booking/internal/config"
    "github.com/hotelmanager/hotel-booking/internal/utils"
)

// NewTokenBucket limits requests with a token bucket kept in Redis, so
// every replica spends from the same budget.  Reads and writes use the two
// policies of cfg.  The limiter runs before per-route authentication, so a
// valid bearer token is checked here with jwtSecret to key the bucket by
// user; anything else is treated as anonymous.  Redis errors let the
// request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, jwtSecret string) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    script := redis.NewScript(refillScript)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            class, policy := classify(cfg, c.Request().Method)
            key := rateKey(cfg, class, c.RealIP(), bearerSubject(c.Request(), jwtSecret))

            res, err := spend(c.Request().Context(), rdb, script, policy, cfg.TTL, key, time.Now())
            if err != nil {
                if cfg.Debug {
                    c.Logger().Warnf("ratelimit: %s: %v", key, err)
                }
                return next(c)
            }

            h := c.Response().Header()
            h.Set("X-RateLimit-Limit", strconv.Itoa(policy.Capacity))
            h.Set("X-RateLimit-Remaining", strconv.FormatInt(res.remaining, 10))
            if cfg.Debug {
                h.Set("X-RateLimit-Key", key)
            }
            if !res.allowed {
                secs := int(math.Ceil(float64(res.retryMs) / 1000))
                h.Set("Retry-After", strconv.Itoa(secs))
                return c.JSON(http.StatusTooManyRequests, echo.Map{
                    "statusCode":  http.StatusTooManyRequests,
                    "message":     "Too many requests, retry later",
                    "retry_after": secs,
                })
            }
            return next(c)
        }
    }
}

// classify picks the bucket for an HTTP method.
func classify(cfg config.RateLimitConfig, method string) (string, config.BucketPolicy) {
    switch method {
    case http.MethodGet, http.MethodHead, http.MethodOptions:
        return "read", cfg.Read
    }
    return "write", cfg.Write
}

// bearerSubject returns the user id of a valid access token, or "anon".
func bearerSubject(r *http.Request, secret string) string {
    raw, ok := BearerToken(r)
    if !ok || secret == "" {
        return "anon"
    }
    claims, err := utils.ParseAccessToken(secret, raw)
    if err != nil || claims.Subject == "" {
        return "anon"
    }
    return claims.Subject
}

// rateKey joins prefix, class and the identity parts chosen by
// cfg.KeyStrategy ("ip", "user" or the default "ip_user").  Anonymous
// callers are always keyed by IP.
func rateKey(cfg config.RateLimitConfig, class, ip, user string) string {
    if ip == "" {
        ip = "unknown"
    }
    parts := []string{cfg.Prefix, class}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "ip":
        parts = append(parts, "ip", ip)
    case "user":
        if user == "anon" {
            parts = append(parts, "ip", ip)
        } else {
            parts = append(parts, "user", user)
        }
    default:
        parts = append(parts, "ip", ip, "user", user)
    }
    return strings.Join(parts, ":")
}

type spendResult struct {
    allowed   bool
    remaining int64
    retryMs   int64
}

func spend(ctx context.Context, rdb *redis.Client, script *redis.Script, p config.BucketPolicy, ttl time.Duration, key string, now time.Time) (spendResult, error) {
    out, err := script.Run(ctx, rdb, []string{key},
        now.UnixMilli(), p.Capacity, p.RefillPerSec, ttl.Milliseconds()).Int64Slice()
    if err != nil {
        return spendResult{}, err
    }
    if len(out) != 3 {
        return spendResult{}, fmt.Errorf("ratelimit: unexpected script reply %v", out)
    }
    return spendResult{allowed: out[0] == 1, remaining: out[1], retryMs: out[2]}, nil
}

// refillScript refills continuously: tokens grow by rate per second since
// the last call, capped at capacity.  It replies {allowed, remaining,
// retry_ms}.
const refillScript = `
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local rate = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local tokens = tonumber(redis.call('HGET', KEYS[1], 't'))
local stamp = tonumber(redis.call('HGET', KEYS[1], 'ts'))
if tokens == nil or stamp == nil then
  tokens = capacity
  stamp = now
end
tokens = math.min(capacity, tokens + math.max(0, now - stamp) * rate / 1000)

local allowed = 0
local retry = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
else
  retry = math.ceil((1 - tokens) * 1000 / rate)
end

redis.call('HSET', KEYS[1], 't', tostring(tokens), 'ts', now)
redis.call('PEXPIRE', KEYS[1], ttl)
return {allowed, math.floor(tokens), retry}
`
