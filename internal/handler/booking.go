package handler

import (
    "context"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/hotelmanager/hotel-booking/internal/model"
    "github.com/hotelmanager/hotel-booking/internal/service"
)

// Ledger is the booking behaviour the HTTP layer depends on.
type Ledger interface {
    CreateBooking(ctx context.Context, roomID, userID uint64, req service.BookingRequest) (string, error)
    FindByConfirmationCode(ctx context.Context, code string) (*model.BookingView, error)
    ListAll(ctx context.Context) ([]model.BookingView, error)
    ListForUser(ctx context.Context, userID uint64) (*model.UserDetail, error)
    Cancel(ctx context.Context, bookingID uint64) error
    CancelOwned(ctx context.Context, bookingID, userID uint64) error
}

// BookingHandler serves /v1/bookings.
type BookingHandler struct {
    Ledger Ledger
    now    func() time.Time
}

// NewBookingHandler panics if ledger is nil.
func NewBookingHandler(ledger Ledger) *BookingHandler {
    if ledger == nil {
        panic("nil ledger passed to NewBookingHandler")
    }
    return &BookingHandler{Ledger: ledger, now: time.Now}
}

type createBookingReq struct {
    CheckInDate   string `json:"checkInDate" validate:"required,date"`
    CheckOutDate  string `json:"checkOutDate" validate:"required,date"`
    NumOfAdults   int    `json:"numOfAdults" validate:"min=1"`
    NumOfChildren int    `json:"numOfChildren" validate:"min=0"`
}

// CreateBooking handles POST /v1/bookings/:roomId/:userId.  A USER may
// only book for themselves; an ADMIN may book for anyone.  The check-out
// date must lie in the future.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
    roomID, ok := pathID(c, "roomId")
    if !ok {
        return badRequest(c, "invalid room id")
    }
    userID, ok := pathID(c, "userId")
    if !ok {
        return badRequest(c, "invalid user id")
    }
    caller, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    if !isAdmin(c) && caller != userID {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }

    var req createBookingReq
    if done, err := bindAndValidate(c, &req); !done {
        return err
    }
    checkIn, _ := model.ParseDate(req.CheckInDate)
    checkOut, _ := model.ParseDate(req.CheckOutDate)
    if !checkOut.After(model.Day(h.now())) {
        return badRequest(c, "Check out date must be in the future")
    }

    ctx, cancel := requestContext(c)
    defer cancel()
    code, err := h.Ledger.CreateBooking(ctx, roomID, userID, service.BookingRequest{
        CheckInDate:   checkIn,
        CheckOutDate:  checkOut,
        NumOfAdults:   req.NumOfAdults,
        NumOfChildren: req.NumOfChildren,
    })
    if err != nil {
        return fail(c, err)
    }
    env := success("Booking successful")
    env.BookingConfirmationCode = code
    return respond(c, env)
}

// GetByConfirmationCode handles GET /v1/bookings/code/:code.
func (h *BookingHandler) GetByConfirmationCode(c echo.Context) error {
    code := strings.TrimSpace(c.Param("code"))
    if code == "" {
        return badRequest(c, "confirmation code is required")
    }
    ctx, cancel := requestContext(c)
    defer cancel()
    view, err := h.Ledger.FindByConfirmationCode(ctx, code)
    if err != nil {
        return fail(c, err)
    }
    env := success("Successfully found booking with confirmation code " + code)
    env.Booking = view
    return respond(c, env)
}

// ListBookings handles GET /v1/bookings (ADMIN).
func (h *BookingHandler) ListBookings(c echo.Context) error {
    ctx, cancel := requestContext(c)
    defer cancel()
    views, err := h.Ledger.ListAll(ctx)
    if err != nil {
        return fail(c, err)
    }
    env := success("Successfully found all bookings")
    env.BookingList = views
    return respond(c, env)
}

// CancelBooking handles DELETE /v1/bookings/:id.  Users can only cancel
// their own bookings.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, "invalid booking id")
    }
    ctx, cancel := requestContext(c)
    defer cancel()

    var err error
    if isAdmin(c) {
        err = h.Ledger.Cancel(ctx, id)
    } else {
        caller, uerr := getUserID(c)
        if uerr != nil {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
        }
        err = h.Ledger.CancelOwned(ctx, id, caller)
    }
    if err != nil {
        return fail(c, err)
    }
    return respond(c, success(fmt.Sprintf("Successfully deleted booking with id %d", id)))
}
