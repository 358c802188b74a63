package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/middleware"
)

// RegisterTickets mounts the caller's ticket routes. Buying moves a booked
// seat counter, so it also invalidates cached movie responses.
func RegisterTickets(e *echo.Echo, d Deps) {
	g := e.Group("/v1/tickets", middleware.JWTAuth(d.Verifier))

	g.POST("/buy", d.Tickets.Buy, d.Cache.Invalidate())
	g.GET("", d.Tickets.List)
	g.GET("/unused", d.Tickets.Unused)
	g.GET("/history", d.Tickets.History)
	g.GET("/:id", d.Tickets.Get)
	g.GET("/:id/qr", d.Tickets.QR)
	g.POST("/:id/use", d.Tickets.Use)
}
