package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
    PingContext(ctx context.Context) error
}

// HealthHandler reports whether the service and its backing stores are
// reachable.  Redis is optional: a nil client is reported as "disabled".
type HealthHandler struct {
    DB    Pinger
    Redis *redis.Client
}

// Health answers GET /healthz with 200 when the database responds and 503
// otherwise.
func (h *HealthHandler) Health(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
    defer cancel()

    status, code := "ok", http.StatusOK
    db := "up"
    if h.DB == nil || h.DB.PingContext(ctx) != nil {
        db, status, code = "down", "degraded", http.StatusServiceUnavailable
    }
    cache := "disabled"
    if h.Redis != nil {
        cache = "up"
        if err := h.Redis.Ping(ctx).Err(); err != nil {
            cache = "down"
        }
    }
    return c.JSON(code, echo.Map{"status": status, "db": db, "redis": cache})
}
