package middleware

// identity.go holds helpers that read the identity stored by JWTAuth.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// currentUserID returns the authenticated user id as a string for request
// logs, or "anon" for guests.
func currentUserID(c echo.Context) string {
    if id, ok := c.Get(CtxUserID).(uint64); ok && id != 0 {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}

// currentRole returns the role claim or "" for guests.
func currentRole(c echo.Context) string {
    r, _ := c.Get(CtxRole).(string)
    return r
}
