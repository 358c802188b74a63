package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking/internal/handler/dto"
)

type UserHandler struct {
	users UserService
	errorResponder
}

func NewUserHandler(users UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, errorResponder: errorResponder{log: log}}
}

// Me handles GET /v1/me.
func (h *UserHandler) Me(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.respond(c, err)
	}
	u, err := h.users.GetUser(c.Request().Context(), p.ID)
	if err != nil {
		return h.respond(c, err)
	}
	return reply(c, h.errorResponder, http.StatusOK, u, dto.NewUser)
}

// Get handles GET /v1/users/:id for managers.
func (h *UserHandler) Get(c echo.Context) error {
	u, err := h.users.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.respond(c, err)
	}
	return reply(c, h.errorResponder, http.StatusOK, u, dto.NewUser)
}
