// Package router wires HTTP routes to handlers and applies the
// authentication and role middleware per group.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/arjaysison/library-room-reservation/internal/handler"
	"github.com/arjaysison/library-room-reservation/internal/middleware"
	"github.com/arjaysison/library-room-reservation/internal/model"
)

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the auth endpoints.  Unauthenticated operations
// live under /v1/auth; /v1/me and the bearer-based logout sit behind the
// JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout with a refresh token in the body needs no session.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	// Bearer-based logout revokes every session of the user.
	auth.POST("/logout", a.Logout)
}

// RegisterRooms registers the public room catalogue, optionally behind
// the Redis response cache.
func RegisterRooms(e *echo.Echo, h *handler.RoomHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/rooms")
	if cache != nil {
		g.Use(cache)
	}
	g.GET("", h.List)
	g.GET("/:id", h.Get)
}

// RegisterReservations registers the user-facing booking endpoints.
// Every authenticated role may book; policy checks inside the engine
// decide the rest.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string) {
	g := e.Group("/v1/reservations")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleStudent, model.RoleFaculty, model.RoleStaff, model.RoleAdmin))

	g.POST("", h.Create)
	g.GET("", h.ListMine)
	g.POST("/check-limit", h.CheckLimit)
	g.POST("/validate-floor-access", h.ValidateFloorAccess)
	g.GET("/:id", h.Get)
	g.POST("/:id/cancel", h.Cancel)
	g.POST("/:id/end", h.End)
	g.POST("/:id/extension", h.RequestExtension)
	g.POST("/:id/participants", h.AddParticipant)
	g.DELETE("/:id/participants/:id_number", h.RemoveParticipant)
}

// RegisterStaff registers the staff workflow under /v1/staff, restricted
// to STAFF and ADMIN roles.
func RegisterStaff(e *echo.Echo, h *handler.StaffReservationHandler, jwtSecret string) {
	g := e.Group("/v1/staff")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleStaff, model.RoleAdmin))

	g.GET("/reservations", h.List)
	g.POST("/reservations/sweep", h.Sweep)
	g.PATCH("/reservations/:id/status", h.UpdateStatus)
	g.POST("/reservations/:id/start", h.Start)
	g.POST("/reservations/:id/extension", h.ResolveExtension)
	g.POST("/reservations/:id/archive", h.Archive)
	g.POST("/reservations/:id/restore", h.Restore)
	g.PATCH("/users/:id/verify", h.VerifyUser)
}
