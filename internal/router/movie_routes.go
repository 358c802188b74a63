package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/model"
)

// RegisterMovies mounts the catalog. Reads are cached per caller; every
// successful write drops the cached listings.
func RegisterMovies(e *echo.Echo, d Deps) {
	g := e.Group("/v1", middleware.JWTAuth(d.Verifier))
	manager := middleware.RequireRole(model.RoleManager)
	invalidate := d.Cache.Invalidate()

	g.GET("/movies", d.Movies.List, d.Cache.Cache())
	g.GET("/movies/:id", d.Movies.Get, d.Cache.Cache())

	g.POST("/movies", d.Movies.Create, manager, invalidate)
	g.PUT("/movies/:id", d.Movies.Update, manager, invalidate)
	g.DELETE("/movies/:id", d.Movies.Delete, manager, invalidate)
	g.POST("/movies/bulk", d.Movies.BulkCreate, manager, invalidate)
	g.DELETE("/movies/bulk", d.Movies.BulkDelete, manager, invalidate)
	g.POST("/movies/:id/sessions", d.Movies.AddSession, manager, invalidate)

	g.GET("/sessions/:id/tickets/count", d.Movies.SessionTicketCount, manager)
}
