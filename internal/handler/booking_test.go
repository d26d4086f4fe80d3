package handler

import (
    "encoding/json"
    "errors"
    "net/http"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/hotelmanager/hotel-booking/internal/model"
    "github.com/hotelmanager/hotel-booking/internal/service"
)

const stayBody = `{"checkInDate":"2025-06-01","checkOutDate":"2025-06-05","numOfAdults":2,"numOfChildren":1}`

func setupBookings(t *testing.T, callerID uint64, role string) (*fakeLedger, func(method, target, body string) (int, envelope)) {
    t.Helper()
    ledger := &fakeLedger{code: "A1B2C3D4E5"}
    h := NewBookingHandler(ledger)
    h.now = func() time.Time { return time.Date(2025, 5, 20, 15, 0, 0, 0, time.UTC) }

    e := newEcho()
    id := identity(callerID, role)
    e.POST("/v1/bookings/:roomId/:userId", h.CreateBooking, id)
    e.GET("/v1/bookings/code/:code", h.GetByConfirmationCode)
    e.GET("/v1/bookings", h.ListBookings, id)
    e.DELETE("/v1/bookings/:id", h.CancelBooking, id)

    return ledger, func(method, target, body string) (int, envelope) {
        rec := doJSON(t, e, method, target, body)
        var env envelope
        if rec.Body.Len() > 0 {
            require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
        }
        return rec.Code, env
    }
}

func TestCreateBooking(t *testing.T) {
    ledger, call := setupBookings(t, 7, model.RoleUser)

    status, env := call(http.MethodPost, "/v1/bookings/3/7", stayBody)
    assert.Equal(t, http.StatusOK, status)
    assert.Equal(t, http.StatusOK, env.StatusCode)
    assert.Equal(t, "Booking successful", env.Message)
    assert.Equal(t, "A1B2C3D4E5", env.BookingConfirmationCode)

    require.Len(t, ledger.created, 1)
    assert.Equal(t, [2]uint64{3, 7}, ledger.createdFor[0])
    req := ledger.created[0]
    assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), req.CheckInDate)
    assert.Equal(t, time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC), req.CheckOutDate)
    assert.Equal(t, 2, req.NumOfAdults)
    assert.Equal(t, 1, req.NumOfChildren)
}

func TestCreateBooking_ForAnotherUser(t *testing.T) {
    ledger, call := setupBookings(t, 7, model.RoleUser)
    status, _ := call(http.MethodPost, "/v1/bookings/3/8", stayBody)
    assert.Equal(t, http.StatusForbidden, status)
    assert.Empty(t, ledger.created)

    ledger, call = setupBookings(t, 1, model.RoleAdmin)
    status, _ = call(http.MethodPost, "/v1/bookings/3/8", stayBody)
    assert.Equal(t, http.StatusOK, status)
    assert.Equal(t, [2]uint64{3, 8}, ledger.createdFor[0])
}

func TestCreateBooking_Unauthenticated(t *testing.T) {
    _, call := setupBookings(t, 0, "")
    status, _ := call(http.MethodPost, "/v1/bookings/3/7", stayBody)
    assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCreateBooking_BadRequests(t *testing.T) {
    cases := map[string]struct {
        target, body, message string
    }{
        "room id":       {"/v1/bookings/x/7", stayBody, "invalid room id"},
        "user id":       {"/v1/bookings/3/0", stayBody, "invalid user id"},
        "malformed":     {"/v1/bookings/3/7", `{"checkInDate":`, "invalid request body"},
        "missing dates": {"/v1/bookings/3/7", `{"numOfAdults":1}`, "CheckInDate is required; CheckOutDate is required"},
        "bad date":      {"/v1/bookings/3/7", `{"checkInDate":"06/01/2025","checkOutDate":"2025-06-05","numOfAdults":1}`, "CheckInDate must be a date in yyyy-mm-dd format"},
        "no adults":     {"/v1/bookings/3/7", `{"checkInDate":"2025-06-01","checkOutDate":"2025-06-05","numOfAdults":0}`, "NumOfAdults must be at least 1"},
        "past checkout": {"/v1/bookings/3/7", `{"checkInDate":"2025-05-01","checkOutDate":"2025-05-20","numOfAdults":1}`, "Check out date must be in the future"},
    }
    for name, tc := range cases {
        t.Run(name, func(t *testing.T) {
            ledger, call := setupBookings(t, 7, model.RoleUser)
            status, env := call(http.MethodPost, tc.target, tc.body)
            assert.Equal(t, http.StatusBadRequest, status)
            assert.Equal(t, http.StatusBadRequest, env.StatusCode)
            assert.Equal(t, tc.message, env.Message)
            assert.Empty(t, ledger.created)
        })
    }
}

func TestCreateBooking_LedgerErrors(t *testing.T) {
    cases := []struct {
        err    error
        status int
        msg    string
    }{
        {service.ErrRoomUnavailable, http.StatusBadRequest, "Room is not available for selected date range"},
        {service.ErrInvalidDateRange, http.StatusBadRequest, "Check in date should be before check out date"},
        {service.ErrRoomNotFound, http.StatusNotFound, "Room not found"},
        {service.ErrUserNotFound, http.StatusNotFound, "User not found"},
        {errors.New("boom"), http.StatusInternalServerError, "internal error"},
    }
    for _, tc := range cases {
        ledger, call := setupBookings(t, 7, model.RoleUser)
        ledger.err = tc.err
        status, env := call(http.MethodPost, "/v1/bookings/3/7", stayBody)
        assert.Equal(t, tc.status, status, tc.msg)
        assert.Equal(t, tc.status, env.StatusCode)
        assert.Equal(t, tc.msg, env.Message)
        assert.Empty(t, env.BookingConfirmationCode)
    }
}

func TestGetByConfirmationCode(t *testing.T) {
    ledger, call := setupBookings(t, 0, "")
    ledger.view = &model.BookingView{ID: 9, ConfirmationCode: "A1B2C3D4E5", CheckInDate: "2025-06-01", CheckOutDate: "2025-06-05"}

    status, env := call(http.MethodGet, "/v1/bookings/code/A1B2C3D4E5", "")
    assert.Equal(t, http.StatusOK, status)
    assert.Equal(t, "Successfully found booking with confirmation code A1B2C3D4E5", env.Message)
    require.NotNil(t, env.Booking)
    assert.Equal(t, uint64(9), env.Booking.ID)

    ledger.err = service.ErrBookingNotFound
    status, env = call(http.MethodGet, "/v1/bookings/code/ZZZZZZZZZZ", "")
    assert.Equal(t, http.StatusNotFound, status)
    assert.Equal(t, "Booking not found", env.Message)
    assert.Nil(t, env.Booking)
}

func TestListBookings(t *testing.T) {
    ledger, call := setupBookings(t, 1, model.RoleAdmin)
    ledger.views = []model.BookingView{{ID: 2}, {ID: 1}}

    status, env := call(http.MethodGet, "/v1/bookings", "")
    assert.Equal(t, http.StatusOK, status)
    assert.Equal(t, "Successfully found all bookings", env.Message)
    require.Len(t, env.BookingList, 2)
    assert.Equal(t, uint64(2), env.BookingList[0].ID)
}

func TestCancelBooking(t *testing.T) {
    ledger, call := setupBookings(t, 7, model.RoleUser)
    status, env := call(http.MethodDelete, "/v1/bookings/12", "")
    assert.Equal(t, http.StatusOK, status)
    assert.Equal(t, "Successfully deleted booking with id 12", env.Message)
    assert.Equal(t, []uint64{12}, ledger.cancelled)
    assert.Equal(t, []uint64{7}, ledger.cancelOwner, "users cancel through the ownership check")

    ledger, call = setupBookings(t, 1, model.RoleAdmin)
    status, _ = call(http.MethodDelete, "/v1/bookings/12", "")
    assert.Equal(t, http.StatusOK, status)
    assert.Equal(t, []uint64{12}, ledger.cancelled)
    assert.Empty(t, ledger.cancelOwner)

    ledger, call = setupBookings(t, 7, model.RoleUser)
    ledger.err = service.ErrBookingNotFound
    status, env = call(http.MethodDelete, "/v1/bookings/12", "")
    assert.Equal(t, http.StatusNotFound, status)
    assert.Equal(t, "Booking not found", env.Message)

    _, call = setupBookings(t, 7, model.RoleUser)
    status, _ = call(http.MethodDelete, "/v1/bookings/abc", "")
    assert.Equal(t, http.StatusBadRequest, status)
}
