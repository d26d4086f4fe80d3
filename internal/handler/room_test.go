package handler

import (
    "bytes"
    "encoding/json"
    "mime/multipart"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/hotelmanager/hotel-booking/internal/model"
    "github.com/hotelmanager/hotel-booking/internal/service"
)

func setupRooms(t *testing.T) (*fakeRooms, *echo.Echo) {
    t.Helper()
    rooms := &fakeRooms{rooms: []model.RoomDetail{{ID: 1, RoomType: "Suite", Price: 129.99, PhotoURL: "/upload/a.png"}}}
    h := NewRoomHandler(rooms, nil, "hotel:cache", nil)

    e := newEcho()
    e.POST("/v1/rooms", h.AddRoom)
    e.PUT("/v1/rooms/:id", h.UpdateRoom)
    e.DELETE("/v1/rooms/:id", h.DeleteRoom)
    e.GET("/v1/rooms", h.ListRooms)
    e.GET("/v1/rooms/types", h.ListRoomTypes)
    e.GET("/v1/rooms/available", h.ListNeverBooked)
    e.GET("/v1/rooms/available-by-date", h.ListAvailableByDate)
    e.GET("/v1/rooms/:id", h.GetRoom)
    return rooms, e
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, withPhoto bool) *http.Request {
    t.Helper()
    var body bytes.Buffer
    w := multipart.NewWriter(&body)
    for k, v := range fields {
        require.NoError(t, w.WriteField(k, v))
    }
    if withPhoto {
        part, err := w.CreateFormFile("photo", "room.png")
        require.NoError(t, err)
        _, err = part.Write([]byte("\x89PNG fake"))
        require.NoError(t, err)
    }
    require.NoError(t, w.Close())
    req := httptest.NewRequest(method, target, &body)
    req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
    return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
    t.Helper()
    var env envelope
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
    return env
}

func TestAddRoom(t *testing.T) {
    rooms, e := setupRooms(t)
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, multipartRequest(t, http.MethodPost, "/v1/rooms", map[string]string{
        "roomType":        " Suite ",
        "roomPrice":       "129.99",
        "roomDescription": "sea view",
    }, true))

    assert.Equal(t, http.StatusOK, rec.Code)
    env := decode(t, rec)
    assert.Equal(t, "Room added successfully", env.Message)
    require.NotNil(t, env.Room)

    require.Len(t, rooms.added, 1)
    in := rooms.added[0]
    assert.Equal(t, "Suite", in.RoomType)
    assert.Equal(t, uint64(12999), in.PriceCents)
    assert.Equal(t, "sea view", in.Description)
    require.NotNil(t, in.Photo)
    assert.Equal(t, "room.png", in.Photo.Filename)
}

func TestAddRoom_MissingFields(t *testing.T) {
    rooms, e := setupRooms(t)
    for name, req := range map[string]*http.Request{
        "no photo": multipartRequest(t, http.MethodPost, "/v1/rooms", map[string]string{"roomType": "Suite", "roomPrice": "10"}, false),
        "no type":  multipartRequest(t, http.MethodPost, "/v1/rooms", map[string]string{"roomPrice": "10"}, true),
        "no price": multipartRequest(t, http.MethodPost, "/v1/rooms", map[string]string{"roomType": "Suite"}, true),
    } {
        rec := httptest.NewRecorder()
        e.ServeHTTP(rec, req)
        assert.Equal(t, http.StatusBadRequest, rec.Code, name)
        assert.Equal(t, "Please provide values for all fields (photo, roomType, roomPrice)", decode(t, rec).Message, name)
    }
    assert.Empty(t, rooms.added)
}

func TestUpdateRoom_PartialFields(t *testing.T) {
    rooms, e := setupRooms(t)
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, multipartRequest(t, http.MethodPut, "/v1/rooms/1", map[string]string{"roomPrice": "99.5"}, false))

    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "Room updated successfully", decode(t, rec).Message)
    require.Len(t, rooms.updated, 1)
    in := rooms.updated[0]
    assert.Nil(t, in.Photo)
    assert.Nil(t, in.RoomType)
    assert.Nil(t, in.Description)
    require.NotNil(t, in.PriceCents)
    assert.Equal(t, uint64(9950), *in.PriceCents)
}

func TestUpdateRoom_BadPrice(t *testing.T) {
    rooms, e := setupRooms(t)
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, multipartRequest(t, http.MethodPut, "/v1/rooms/1", map[string]string{"roomPrice": "-1"}, false))
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Empty(t, rooms.updated)
}

func TestRoomReads(t *testing.T) {
    _, e := setupRooms(t)

    rec := doJSON(t, e, http.MethodGet, "/v1/rooms", "")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Len(t, decode(t, rec).RoomList, 1)

    rec = doJSON(t, e, http.MethodGet, "/v1/rooms/types", "")
    assert.Equal(t, []string{"Suite"}, decode(t, rec).RoomTypes)

    rec = doJSON(t, e, http.MethodGet, "/v1/rooms/1", "")
    env := decode(t, rec)
    require.NotNil(t, env.Room)
    assert.Equal(t, 129.99, env.Room.Price)

    rec = doJSON(t, e, http.MethodGet, "/v1/rooms/available", "")
    assert.Len(t, decode(t, rec).RoomList, 1)
}

func TestGetRoom_NotFound(t *testing.T) {
    rooms, e := setupRooms(t)
    rooms.err = service.ErrRoomNotFound
    rec := doJSON(t, e, http.MethodGet, "/v1/rooms/5", "")
    assert.Equal(t, http.StatusNotFound, rec.Code)
    assert.Equal(t, "Room not found", decode(t, rec).Message)
}

func TestDeleteRoom(t *testing.T) {
    _, e := setupRooms(t)
    rec := doJSON(t, e, http.MethodDelete, "/v1/rooms/1", "")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "Successfully deleted room with id 1", decode(t, rec).Message)

    rec = doJSON(t, e, http.MethodDelete, "/v1/rooms/0", "")
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAvailableByDate(t *testing.T) {
    rooms, e := setupRooms(t)
    rec := doJSON(t, e, http.MethodGet, "/v1/rooms/available-by-date?checkInDate=2025-06-01&checkOutDate=2025-06-05&roomType=suite", "")
    assert.Equal(t, http.StatusOK, rec.Code)
    require.Len(t, rooms.available, 1)
    assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), rooms.available[0][0])
    assert.Equal(t, time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC), rooms.available[0][1])
    assert.Equal(t, "suite", rooms.roomType)

    for target, msg := range map[string]string{
        "/v1/rooms/available-by-date?checkInDate=2025-06-01":                      "Please provide values for all fields (checkInDate, checkOutDate)",
        "/v1/rooms/available-by-date?checkInDate=tomorrow&checkOutDate=2025-06-05": "checkInDate must be a date in yyyy-mm-dd format",
        "/v1/rooms/available-by-date?checkInDate=2025-06-01&checkOutDate=2025-6-5": "checkOutDate must be a date in yyyy-mm-dd format",
    } {
        rec := doJSON(t, e, http.MethodGet, target, "")
        assert.Equal(t, http.StatusBadRequest, rec.Code, target)
        assert.Equal(t, msg, decode(t, rec).Message, target)
    }
}

func TestParsePriceCents(t *testing.T) {
    for raw, want := range map[string]uint64{"0": 0, "10": 1000, "129.99": 12999, "19.999": 2000, "1e2": 10000} {
        got, err := parsePriceCents(raw)
        require.NoError(t, err, raw)
        assert.Equal(t, want, got, raw)
    }
    for _, raw := range []string{"", "abc", "-0.01", "NaN", "Inf"} {
        _, err := parsePriceCents(raw)
        assert.Error(t, err, raw)
    }
}
