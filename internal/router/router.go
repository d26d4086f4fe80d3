package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/hotelmanager/hotel-booking/internal/handler"
	"github.com/hotelmanager/hotel-booking/internal/middleware"
	"github.com/hotelmanager/hotel-booking/internal/model"
	"github.com/hotelmanager/hotel-booking/internal/storage"
)

// RegisterRoutes registers routes that need no authentication: the health
// check and the stored room photos under /upload.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler, uploadDir string) {
	e.GET("/healthz", h.Health)
	e.Static(storage.PublicPrefix, uploadDir)
}

// RegisterAuth registers the session endpoints under /v1/auth.  Logout
// accepts either a refresh token or a bearer token, so it carries no JWT
// middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
}

// RegisterRooms registers the room catalogue.  Reads go through cache;
// writes require the ADMIN role.
func RegisterRooms(e *echo.Echo, r *handler.RoomHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	e.GET("/v1/rooms", r.ListRooms, cache)
	e.GET("/v1/rooms/types", r.ListRoomTypes, cache)
	e.GET("/v1/rooms/available", r.ListNeverBooked)
	e.GET("/v1/rooms/available-by-date", r.ListAvailableByDate)
	e.GET("/v1/rooms/:id", r.GetRoom)

	auth, admin := middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleAdmin)
	e.POST("/v1/rooms", r.AddRoom, auth, admin)
	e.PUT("/v1/rooms/:id", r.UpdateRoom, auth, admin)
	e.DELETE("/v1/rooms/:id", r.DeleteRoom, auth, admin)
}

// RegisterBookings registers the booking endpoints.  Lookup by confirmation
// code is public so guests can check a reservation without an account.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
	e.GET("/v1/bookings/code/:code", b.GetByConfirmationCode)

	auth := middleware.JWTAuth(jwtSecret)
	e.POST("/v1/bookings/:roomId/:userId", b.CreateBooking, auth, middleware.RequireRole(model.RoleUser, model.RoleAdmin))
	e.DELETE("/v1/bookings/:id", b.CancelBooking, auth, middleware.RequireRole(model.RoleUser, model.RoleAdmin))
	e.GET("/v1/bookings", b.ListBookings, auth, middleware.RequireRole(model.RoleAdmin))
}

// RegisterUsers registers account management and /v1/me.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, jwtSecret string) {
	auth := middleware.JWTAuth(jwtSecret)
	anyone := middleware.RequireRole(model.RoleUser, model.RoleAdmin)
	admin := middleware.RequireRole(model.RoleAdmin)

	e.GET("/v1/me", u.Me, auth, anyone)
	e.GET("/v1/users/:id/bookings", u.BookingHistory, auth, anyone)
	e.GET("/v1/users", u.ListUsers, auth, admin)
	e.GET("/v1/users/:id", u.GetUser, auth, admin)
	e.DELETE("/v1/users/:id", u.DeleteUser, auth, admin)
}
