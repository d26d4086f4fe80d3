package handler // handler defines http handlers

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/hotelmanager/hotel-booking/internal/middleware"
    "github.com/hotelmanager/hotel-booking/internal/model"
    "github.com/hotelmanager/hotel-booking/internal/service"
)

// dbTimeout bounds the store work of a single request.
const dbTimeout = 5 * time.Second

// envelope is the JSON body of every room, booking and user endpoint.  Only
// the fields relevant to the operation are set.
type envelope struct {
    StatusCode              int                 `json:"statusCode"`
    Message                 string              `json:"message"`
    BookingConfirmationCode string              `json:"bookingConfirmationCode,omitempty"`
    Booking                 *model.BookingView  `json:"booking,omitempty"`
    BookingList             []model.BookingView `json:"bookingList,omitempty"`
    Room                    *model.RoomDetail   `json:"room,omitempty"`
    RoomList                []model.RoomDetail  `json:"roomList,omitempty"`
    RoomTypes               []string            `json:"roomTypes,omitempty"`
    User                    *model.UserDetail   `json:"user,omitempty"`
    UserList                []model.UserDetail  `json:"userList,omitempty"`
}

// success builds a 200 envelope carrying message.
func success(message string) envelope {
    return envelope{StatusCode: http.StatusOK, Message: message}
}

// respond writes env with its own status code.
func respond(c echo.Context, env envelope) error {
    return c.JSON(env.StatusCode, env)
}

// fail converts err into an envelope through service.ResponseFor.
func fail(c echo.Context, err error) error {
    r := service.ResponseFor(err)
    return respond(c, envelope{StatusCode: r.StatusCode, Message: r.Message})
}

// badRequest writes a 400 envelope.
func badRequest(c echo.Context, message string) error {
    return respond(c, envelope{StatusCode: http.StatusBadRequest, Message: message})
}

// bindAndValidate binds the request into dst and runs the registered
// validator, writing a 400 envelope on failure.  The returned bool is false
// when a response has already been written.
func bindAndValidate(c echo.Context, dst interface{}) (bool, error) {
    if err := c.Bind(dst); err != nil {
        return false, badRequest(c, "invalid request body")
    }
    if err := c.Validate(dst); err != nil {
        return false, badRequest(c, validationMessage(err))
    }
    return true, nil
}

// getUserID extracts the user_id set by middleware.JWTAuth.
func getUserID(c echo.Context) (uint64, error) {
    if id, ok := c.Get(middleware.CtxUserID).(uint64); ok && id != 0 {
        return id, nil
    }
    return 0, errors.New("invalid user_id in context")
}

// isAdmin reports whether the caller carries the ADMIN role.
func isAdmin(c echo.Context) bool {
    role, _ := c.Get(middleware.CtxRole).(string)
    return role == model.RoleAdmin
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    return id, err == nil && id > 0
}

// requestContext derives a context bounded by dbTimeout.
func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), dbTimeout)
}
