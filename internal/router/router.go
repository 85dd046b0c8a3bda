// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/campushub/venue-booking/internal/config"
	"github.com/campushub/venue-booking/internal/handler"
	"github.com/campushub/venue-booking/internal/middleware"
	"github.com/campushub/venue-booking/internal/model"
)

// Deps carries everything route registration needs. Rdb may be nil,
// in which case the rate limiter and response cache are skipped and
// the service runs without them.
type Deps struct {
	Cfg     config.Config
	Auth    *handler.AuthHandler
	Venues  *handler.VenueHandler
	Booking *handler.BookingHandler
	Admin   *handler.AdminHandler
	Rdb     *redis.Client
}

// memberRoles are the roles allowed on the authenticated member
// surface. Admins pass too so they can browse and submit like anyone
// else.
var memberRoles = []string{model.RoleStudent, model.RoleFaculty, model.RoleClub, model.RoleAdmin}

// Register attaches every route of the service to e.
func Register(e *echo.Echo, d Deps) {
	// Liveness probe for load balancers, outside any group.
	e.GET("/healthz", handler.Health)

	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.Rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), d.Rdb)

	// Session endpoints. Rate limited so credential stuffing burns
	// tokens fast.
	auth := e.Group("/v1/auth", rateLimit)
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.Logout)

	// Public browse surface, no JWT. These are read-only and the
	// most-hit routes, so responses go through the Redis cache.
	e.GET("/v1/venues", d.Venues.List, cache)
	e.GET("/v1/venues/:id", d.Venues.Get, cache)
	e.GET("/v1/venues/:id/availability", d.Venues.Availability, cache)

	// Member surface: anything touching a caller's own bookings.
	member := e.Group("/v1")
	member.Use(rateLimit)
	member.Use(middleware.JWTAuth(d.Cfg.JWTSecret))
	member.Use(middleware.RequireRole(memberRoles...))
	member.GET("/me", d.Auth.Me)
	member.POST("/bookings", d.Booking.Submit)
	member.GET("/bookings", d.Booking.ListMine)
	member.GET("/bookings/:id", d.Booking.Get)
	member.DELETE("/bookings/:id", d.Booking.Cancel)

	// Admin surface: the decision queue and venue administration.
	admin := e.Group("/v1/admin")
	admin.Use(middleware.JWTAuth(d.Cfg.JWTSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.GET("/bookings/pending", d.Admin.ListPending)
	admin.POST("/bookings/:id/approve", d.Admin.Approve)
	admin.POST("/bookings/:id/reject", d.Admin.Reject)
	admin.POST("/bookings/:id/revoke", d.Admin.Revoke)
	admin.GET("/venues/:id/bookings", d.Admin.ListByVenue)
	admin.POST("/venues/:id/maintenance", d.Admin.SetMaintenance)
}
