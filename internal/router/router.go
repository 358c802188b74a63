// Package router builds the echo instance and mounts every route under /v1.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/model"
)

// Deps carries what the routes need. Limiter and Cache may be nil, which
// turns the HTTP rate limit and the response cache off.
type Deps struct {
	Log       *zap.Logger
	Verifier  middleware.TokenVerifier
	RateLimit config.RateLimitConfig
	Limiter   middleware.Limiter
	Cache     *middleware.ResponseCache
	Health    map[string]handler.Pinger

	Auth    *handler.AuthHandler
	Users   *handler.UserHandler
	Movies  *handler.MovieHandler
	Tickets *handler.TicketHandler
}

// New returns an echo instance with the global middleware chain and all
// routes registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()

	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(d.Log))

	RegisterRoutes(e, d)
	RegisterAuth(e, d)
	RegisterMovies(e, d)
	RegisterTickets(e, d)
	return e
}

// RegisterRoutes mounts the unauthenticated health check.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health(d.Health))
}

// RegisterAuth mounts /v1/auth behind the token bucket and the user routes
// behind JWT auth.
func RegisterAuth(e *echo.Echo, d Deps) {
	auth := e.Group("/v1/auth", middleware.RateLimit(d.RateLimit, d.Limiter, d.Log))
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)

	g := e.Group("/v1", middleware.JWTAuth(d.Verifier))
	g.GET("/me", d.Users.Me)
	g.GET("/users/:id", d.Users.Get, middleware.RequireRole(model.RoleManager))
}
