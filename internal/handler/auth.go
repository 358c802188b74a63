package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking/internal/handler/dto"
	"github.com/iliyamo/cinema-booking/internal/service"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	auth AuthService
	errorResponder
}

func NewAuthHandler(auth AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, errorResponder: errorResponder{log: log}}
}

// Register handles POST /v1/auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := bind(c, &req); err != nil {
		return h.respond(c, err)
	}
	u, err := h.auth.Register(c.Request().Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Age:      *req.Age,
		Role:     req.Role,
	})
	if err != nil {
		return h.respond(c, err)
	}
	return reply(c, h.errorResponder, http.StatusCreated, u, dto.NewUser)
}

// Login handles POST /v1/auth/login. Unknown users and wrong passwords get
// the same 401 body.
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return h.respond(c, err)
	}
	res, err := h.auth.Login(c.Request().Context(), service.LoginInput{
		Username:  req.Username,
		Password:  req.Password,
		IPAddress: c.RealIP(),
	})
	if err != nil {
		return h.respond(c, err)
	}
	user, err := dto.NewUser(res.User)
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(http.StatusOK, dto.LoginResponse{
		AccessToken: res.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   res.ExpiresAt,
		User:        user,
	})
}
