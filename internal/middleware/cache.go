package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/hex"
    "encoding/json"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/hotelmanager/hotel-booking/internal/config"
)

// cachedResponse is what the cache stores per key.
type cachedResponse struct {
    Status int         `json:"s"`
    Header http.Header `json:"h"`
    Body   []byte      `json:"b"`
}

// skipped headers are per-response and never replayed from the cache.
var skipped = map[string]bool{"Content-Length": true, "X-Cache": true, "Date": true}

// captureWriter forwards the response to the client while keeping a copy
// of at most limit bytes for the cache.
type captureWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    size   int64
    limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
    cw.status = code
    cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
    if room := cw.limit - int64(cw.buf.Len()); cw.limit <= 0 || room >= int64(len(b)) {
        cw.buf.Write(b)
    } else if room > 0 {
        cw.buf.Write(b[:room])
    }
    cw.size += int64(len(b))
    return cw.ResponseWriter.Write(b)
}

// truncated reports whether the captured copy is incomplete.
func (cw *captureWriter) truncated() bool { return cw.limit > 0 && cw.size > cw.limit }

// cacheKeyFrom hashes the route pattern, its parameter values and the
// query into "<prefix>:<sha1>".  Query parameters are sorted so that
// ?roomType=suite&x=1 and ?x=1&roomType=suite share an entry.  The
// "method_route_query" strategy also keys on the HTTP method; "route"
// ignores the query.
func cacheKeyFrom(cfg config.CacheConfig, c echo.Context) string {
    h := sha1.New()
    write := func(s string) {
        h.Write([]byte(s))
        h.Write([]byte{0})
    }
    strategy := strings.ToLower(cfg.KeyStrategy)
    if strategy == "method_route_query" {
        write(c.Request().Method)
    }
    write(c.Path())
    for _, v := range c.ParamValues() {
        write(v)
    }
    if strategy != "route" {
        write(c.QueryParams().Encode())
    }
    return cfg.Prefix + ":" + hex.EncodeToString(h.Sum(nil))
}

// NewRedisCache caches 200 responses of the configured methods in Redis,
// headers included, for cfg.TTL.  Bodies larger than MaxBodyBytes are
// served but not cached.  A nil client or disabled config yields a no-op.
// Entries are dropped early by PurgeCache when rooms change.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[c.Request().Method] {
                return next(c)
            }
            ctx := c.Request().Context()
            key := cacheKeyFrom(cfg, c)

            if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
                var hit cachedResponse
                if json.Unmarshal(raw, &hit) == nil && hit.Status != 0 {
                    return replay(c, hit)
                }
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: int64(cfg.MaxBodyBytes)}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }
            if cw.status != http.StatusOK || cw.truncated() {
                return nil
            }

            entry := cachedResponse{Status: cw.status, Header: http.Header{}, Body: cw.buf.Bytes()}
            for k, vals := range c.Response().Header() {
                if !skipped[http.CanonicalHeaderKey(k)] {
                    entry.Header[k] = vals
                }
            }
            if raw, err := json.Marshal(entry); err == nil {
                // the request context may already be done once the body is written
                _ = rdb.Set(context.Background(), key, raw, ttl).Err()
            }
            return nil
        }
    }
}

func replay(c echo.Context, hit cachedResponse) error {
    h := c.Response().Header()
    for k, vals := range hit.Header {
        for _, v := range vals {
            h.Add(k, v)
        }
    }
    h.Set("X-Cache", "HIT")
    c.Response().WriteHeader(hit.Status)
    _, err := c.Response().Write(hit.Body)
    return err
}

// PurgeCache deletes every cached response under prefix.  Room handlers
// call it after writes that change cached listings.
func PurgeCache(ctx context.Context, rdb *redis.Client, prefix string) error {
    if rdb == nil {
        return nil
    }
    var keys []string
    iter := rdb.Scan(ctx, 0, prefix+":*", 100).Iterator()
    for iter.Next(ctx) {
        keys = append(keys, iter.Val())
    }
    if err := iter.Err(); err != nil || len(keys) == 0 {
        return err
    }
    return rdb.Del(ctx, keys...).Err()
}
