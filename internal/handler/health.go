package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is a dependency whose reachability is reported by /healthz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health reports "ok", or 503 when a registered dependency is down.
func Health(deps map[string]Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		status := echo.Map{}
		healthy := true
		for name, d := range deps {
			if err := d.PingContext(ctx); err != nil {
				status[name] = err.Error()
				healthy = false
				continue
			}
			status[name] = "ok"
		}
		if !healthy {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded", "checks": status})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "checks": status})
	}
}
