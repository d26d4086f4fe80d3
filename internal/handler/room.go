package handler

import (
    "context"
    "fmt"
    "math"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/hotelmanager/hotel-booking/internal/middleware"
    "github.com/hotelmanager/hotel-booking/internal/model"
    "github.com/hotelmanager/hotel-booking/internal/service"
)

// RoomCatalog is the room behaviour the HTTP layer depends on.
type RoomCatalog interface {
    AddRoom(ctx context.Context, in service.NewRoom) (*model.RoomDetail, error)
    UpdateRoom(ctx context.Context, id uint64, in service.RoomUpdate) (*model.RoomDetail, error)
    DeleteRoom(ctx context.Context, id uint64) error
    GetRoom(ctx context.Context, id uint64) (*model.RoomDetail, error)
    ListRooms(ctx context.Context) ([]model.RoomDetail, error)
    ListRoomTypes(ctx context.Context) ([]string, error)
    ListNeverBooked(ctx context.Context) ([]model.RoomDetail, error)
    ListAvailable(ctx context.Context, checkIn, checkOut time.Time, roomType string) ([]model.RoomDetail, error)
}

// RoomHandler serves /v1/rooms.  Writes purge the response cache so the
// cached listings never outlive a change.
type RoomHandler struct {
    Rooms       RoomCatalog
    Cache       *redis.Client // may be nil
    CachePrefix string
    Log         *zap.Logger
}

// NewRoomHandler panics if rooms is nil.
func NewRoomHandler(rooms RoomCatalog, cache *redis.Client, cachePrefix string, log *zap.Logger) *RoomHandler {
    if rooms == nil {
        panic("nil room catalog passed to NewRoomHandler")
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &RoomHandler{Rooms: rooms, Cache: cache, CachePrefix: cachePrefix, Log: log}
}

// AddRoom handles POST /v1/rooms (multipart: photo, roomType, roomPrice,
// roomDescription).
func (h *RoomHandler) AddRoom(c echo.Context) error {
    photo, err := c.FormFile("photo")
    if err != nil {
        return badRequest(c, "Please provide values for all fields (photo, roomType, roomPrice)")
    }
    roomType := strings.TrimSpace(c.FormValue("roomType"))
    rawPrice := strings.TrimSpace(c.FormValue("roomPrice"))
    if roomType == "" || rawPrice == "" {
        return badRequest(c, "Please provide values for all fields (photo, roomType, roomPrice)")
    }
    price, err := parsePriceCents(rawPrice)
    if err != nil {
        return badRequest(c, err.Error())
    }

    ctx, cancel := requestContext(c)
    defer cancel()
    room, err := h.Rooms.AddRoom(ctx, service.NewRoom{
        Photo:       photo,
        RoomType:    roomType,
        PriceCents:  price,
        Description: c.FormValue("roomDescription"),
    })
    if err != nil {
        return fail(c, err)
    }
    h.purge(ctx)
    env := success("Room added successfully")
    env.Room = room
    return respond(c, env)
}

// UpdateRoom handles PUT /v1/rooms/:id.  Absent form fields are left
// unchanged.
func (h *RoomHandler) UpdateRoom(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, "invalid room id")
    }
    var in service.RoomUpdate
    if photo, err := c.FormFile("photo"); err == nil {
        in.Photo = photo
    }
    if v := strings.TrimSpace(c.FormValue("roomType")); v != "" {
        in.RoomType = &v
    }
    if v := strings.TrimSpace(c.FormValue("roomPrice")); v != "" {
        price, err := parsePriceCents(v)
        if err != nil {
            return badRequest(c, err.Error())
        }
        in.PriceCents = &price
    }
    if v := strings.TrimSpace(c.FormValue("roomDescription")); v != "" {
        in.Description = &v
    }

    ctx, cancel := requestContext(c)
    defer cancel()
    room, err := h.Rooms.UpdateRoom(ctx, id, in)
    if err != nil {
        return fail(c, err)
    }
    h.purge(ctx)
    env := success("Room updated successfully")
    env.Room = room
    return respond(c, env)
}

// DeleteRoom handles DELETE /v1/rooms/:id.
func (h *RoomHandler) DeleteRoom(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, "invalid room id")
    }
    ctx, cancel := requestContext(c)
    defer cancel()
    if err := h.Rooms.DeleteRoom(ctx, id); err != nil {
        return fail(c, err)
    }
    h.purge(ctx)
    return respond(c, success(fmt.Sprintf("Successfully deleted room with id %d", id)))
}

// GetRoom handles GET /v1/rooms/:id.
func (h *RoomHandler) GetRoom(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return badRequest(c, "invalid room id")
    }
    ctx, cancel := requestContext(c)
    defer cancel()
    room, err := h.Rooms.GetRoom(ctx, id)
    if err != nil {
        return fail(c, err)
    }
    env := success("successful")
    env.Room = room
    return respond(c, env)
}

// ListRooms handles GET /v1/rooms.
func (h *RoomHandler) ListRooms(c echo.Context) error {
    ctx, cancel := requestContext(c)
    defer cancel()
    rooms, err := h.Rooms.ListRooms(ctx)
    if err != nil {
        return fail(c, err)
    }
    env := success("successful")
    env.RoomList = rooms
    return respond(c, env)
}

// ListRoomTypes handles GET /v1/rooms/types.
func (h *RoomHandler) ListRoomTypes(c echo.Context) error {
    ctx, cancel := requestContext(c)
    defer cancel()
    types, err := h.Rooms.ListRoomTypes(ctx)
    if err != nil {
        return fail(c, err)
    }
    env := success("successful")
    env.RoomTypes = types
    return respond(c, env)
}

// ListNeverBooked handles GET /v1/rooms/available.
func (h *RoomHandler) ListNeverBooked(c echo.Context) error {
    ctx, cancel := requestContext(c)
    defer cancel()
    rooms, err := h.Rooms.ListNeverBooked(ctx)
    if err != nil {
        return fail(c, err)
    }
    env := success("successful")
    env.RoomList = rooms
    return respond(c, env)
}

// ListAvailableByDate handles GET /v1/rooms/available-by-date.
func (h *RoomHandler) ListAvailableByDate(c echo.Context) error {
    rawIn, rawOut := c.QueryParam("checkInDate"), c.QueryParam("checkOutDate")
    if rawIn == "" || rawOut == "" {
        return badRequest(c, "Please provide values for all fields (checkInDate, checkOutDate)")
    }
    checkIn, err := model.ParseDate(rawIn)
    if err != nil {
        return badRequest(c, "checkInDate must be a date in yyyy-mm-dd format")
    }
    checkOut, err := model.ParseDate(rawOut)
    if err != nil {
        return badRequest(c, "checkOutDate must be a date in yyyy-mm-dd format")
    }

    ctx, cancel := requestContext(c)
    defer cancel()
    rooms, err := h.Rooms.ListAvailable(ctx, checkIn, checkOut, strings.TrimSpace(c.QueryParam("roomType")))
    if err != nil {
        return fail(c, err)
    }
    env := success("successful")
    env.RoomList = rooms
    return respond(c, env)
}

func (h *RoomHandler) purge(ctx context.Context) {
    if err := middleware.PurgeCache(ctx, h.Cache, h.CachePrefix); err != nil {
        h.Log.Warn("room cache purge failed", zap.Error(err))
    }
}

// parsePriceCents converts a decimal price such as "129.99" into cents.
func parsePriceCents(raw string) (uint64, error) {
    f, err := strconv.ParseFloat(raw, 64)
    if err != nil || f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
        return 0, fmt.Errorf("invalid room price %q", raw)
    }
    return uint64(math.Round(f * 100)), nil
}
