package handler

import (
    "context"
    "errors"
    "fmt"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/hotelmanager/hotel-booking/internal/model"
    "github.com/hotelmanager/hotel-booking/internal/repository"
    "github.com/hotelmanager/hotel-booking/internal/service"
)

// UserDirectory is the user store behind the /v1/users endpoints.
type UserDirectory interface {
    GetByID(ctx context.Context, id uint64) (*model.User, error)
    ListAll(ctx context.Context) ([]model.User, error)
    DeleteByID(ctx context.Context, id uint64) error
}

// UserHandler serves /v1/users and /v1/me.
type UserHandler struct {
    Users  UserDirectory
    Ledger Ledger
}

// NewUserHandler panics if a dependency is nil.
func NewUserHandler(users UserDirectory, ledger Ledger) *UserHandler {
    if users == nil || ledger == nil {
        panic("nil dependency passed to NewUserHandler")
    }
    return &UserHandler{Users: users, Ledger: ledger}
}

// ListUsers handles GET /v1/users (ADMIN).
func (h *UserHandler) ListUsers(c echo.Context) error {
    ctx, cancel := requestContext(c)
    defer cancel()
    users, err := h.Users.ListAll(ctx)
    if err != nil {
        return fail(c, userError(err, "Error getting all users"))
    }
    list := make([]model.UserDetail, 0, len(users))
    for _, u := range users {
        list = append(list, u.Detail())
    }
    env := success("successful")
    env.UserList = list
    return respond(c, env)
}

// GetUser handles GET /v1/users/:id (ADMIN).
func (h *UserHandler) GetUser(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, "invalid user id")
    }
    return h.writeUser(c, id)
}

// DeleteUser handles DELETE /v1/users/:id (ADMIN).  The user's bookings
// and sessions are removed with it.
func (h *UserHandler) DeleteUser(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, "invalid user id")
    }
    ctx, cancel := requestContext(c)
    defer cancel()
    if err := h.Users.DeleteByID(ctx, id); err != nil {
        return fail(c, userError(err, "Error deleting user"))
    }
    return respond(c, success(fmt.Sprintf("Successfully deleted user with id %d", id)))
}

// BookingHistory handles GET /v1/users/:id/bookings.  A USER may only read
// their own history.
func (h *UserHandler) BookingHistory(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, "invalid user id")
    }
    caller, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    if !isAdmin(c) && caller != id {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    ctx, cancel := requestContext(c)
    defer cancel()
    detail, err := h.Ledger.ListForUser(ctx, id)
    if err != nil {
        return fail(c, err)
    }
    env := success("successful")
    env.User = detail
    return respond(c, env)
}

// Me handles GET /v1/me.
func (h *UserHandler) Me(c echo.Context) error {
    id, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    return h.writeUser(c, id)
}

func (h *UserHandler) writeUser(c echo.Context, id uint64) error {
    ctx, cancel := requestContext(c)
    defer cancel()
    u, err := h.Users.GetByID(ctx, id)
    if err != nil {
        return fail(c, userError(err, "Error getting user"))
    }
    d := u.Detail()
    env := success("successful")
    env.User = &d
    return respond(c, env)
}

// userError maps user store errors onto service errors.
func userError(err error, msg string) error {
    if errors.Is(err, repository.ErrUserNotFound) {
        return service.ErrUserNotFound
    }
    return &service.Error{Kind: service.KindStorage, Message: msg, Err: err}
}
