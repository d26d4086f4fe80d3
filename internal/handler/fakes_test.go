package handler

import (
    "context"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/hotelmanager/hotel-booking/internal/middleware"
    "github.com/hotelmanager/hotel-booking/internal/model"
    "github.com/hotelmanager/hotel-booking/internal/repository"
    "github.com/hotelmanager/hotel-booking/internal/service"
)

// fakeLedger records calls and returns canned results.
type fakeLedger struct {
    code    string
    err     error
    view    *model.BookingView
    views   []model.BookingView
    history *model.UserDetail

    created     []service.BookingRequest
    createdFor  [][2]uint64
    cancelled   []uint64
    cancelOwner []uint64
}

func (f *fakeLedger) CreateBooking(_ context.Context, roomID, userID uint64, req service.BookingRequest) (string, error) {
    f.created = append(f.created, req)
    f.createdFor = append(f.createdFor, [2]uint64{roomID, userID})
    return f.code, f.err
}

func (f *fakeLedger) FindByConfirmationCode(context.Context, string) (*model.BookingView, error) {
    return f.view, f.err
}

func (f *fakeLedger) ListAll(context.Context) ([]model.BookingView, error) { return f.views, f.err }

func (f *fakeLedger) ListForUser(context.Context, uint64) (*model.UserDetail, error) {
    return f.history, f.err
}

func (f *fakeLedger) Cancel(_ context.Context, id uint64) error {
    f.cancelled = append(f.cancelled, id)
    return f.err
}

func (f *fakeLedger) CancelOwned(_ context.Context, id, owner uint64) error {
    f.cancelled = append(f.cancelled, id)
    f.cancelOwner = append(f.cancelOwner, owner)
    return f.err
}

// fakeRooms answers every RoomCatalog call with rooms/err.
type fakeRooms struct {
    rooms []model.RoomDetail
    err   error

    added     []service.NewRoom
    updated   []service.RoomUpdate
    available [][2]time.Time
    roomType  string
}

func (f *fakeRooms) first() *model.RoomDetail {
    if len(f.rooms) == 0 {
        return nil
    }
    return &f.rooms[0]
}

func (f *fakeRooms) AddRoom(_ context.Context, in service.NewRoom) (*model.RoomDetail, error) {
    f.added = append(f.added, in)
    return f.first(), f.err
}

func (f *fakeRooms) UpdateRoom(_ context.Context, _ uint64, in service.RoomUpdate) (*model.RoomDetail, error) {
    f.updated = append(f.updated, in)
    return f.first(), f.err
}

func (f *fakeRooms) DeleteRoom(context.Context, uint64) error { return f.err }

func (f *fakeRooms) GetRoom(context.Context, uint64) (*model.RoomDetail, error) {
    return f.first(), f.err
}

func (f *fakeRooms) ListRooms(context.Context) ([]model.RoomDetail, error) { return f.rooms, f.err }

func (f *fakeRooms) ListRoomTypes(context.Context) ([]string, error) {
    types := []string{}
    for _, r := range f.rooms {
        types = append(types, r.RoomType)
    }
    return types, f.err
}

func (f *fakeRooms) ListNeverBooked(context.Context) ([]model.RoomDetail, error) {
    return f.rooms, f.err
}

func (f *fakeRooms) ListAvailable(_ context.Context, in, out time.Time, roomType string) ([]model.RoomDetail, error) {
    f.available = append(f.available, [2]time.Time{in, out})
    f.roomType = roomType
    return f.rooms, f.err
}

// fakeUsers is an in-memory UserDirectory.
type fakeUsers struct {
    users   map[uint64]model.User
    err     error
    deleted []uint64
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
    if f.err != nil {
        return nil, f.err
    }
    u, ok := f.users[id]
    if !ok {
        return nil, repository.ErrUserNotFound
    }
    return &u, nil
}

func (f *fakeUsers) ListAll(context.Context) ([]model.User, error) {
    out := []model.User{}
    for _, u := range f.users {
        out = append(out, u)
    }
    return out, f.err
}

func (f *fakeUsers) DeleteByID(_ context.Context, id uint64) error {
    f.deleted = append(f.deleted, id)
    return f.err
}

// identity mimics middleware.JWTAuth for a fixed caller.
func identity(userID uint64, role string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if userID != 0 {
                c.Set(middleware.CtxUserID, userID)
                c.Set(middleware.CtxRole, role)
            }
            return next(c)
        }
    }
}

func newEcho() *echo.Echo {
    e := echo.New()
    e.Validator = NewRequestValidator()
    return e
}

func newJSONRequest(method, target, body string) *http.Request {
    if body == "" {
        return httptest.NewRequest(method, target, nil)
    }
    req := httptest.NewRequest(method, target, strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    return req
}

func serveRequest(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func doJSON(t *testing.T, e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
    t.Helper()
    return serveRequest(e, newJSONRequest(method, target, body))
}
