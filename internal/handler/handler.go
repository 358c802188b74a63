// Package handler maps HTTP requests onto the services. Handlers bind and
// validate the body, call one service method and translate its error.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking/internal/handler/dto"
	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/service"
)

type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (*model.User, error)
	Login(ctx context.Context, in service.LoginInput) (*service.LoginResult, error)
}

type UserService interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
}

type MovieService interface {
	CreateMovie(ctx context.Context, in service.CreateMovieInput) (*model.Movie, error)
	UpdateMovie(ctx context.Context, id string, in service.UpdateMovieInput) (*model.Movie, error)
	DeleteMovie(ctx context.Context, id string) error
	GetMovie(ctx context.Context, caller model.Principal, id string) (*model.Movie, error)
	ListMovies(ctx context.Context, caller model.Principal, f model.MovieFilter) ([]*model.Movie, error)
	AddSession(ctx context.Context, movieID string, in service.AddSessionInput) (*model.Movie, error)
	BulkCreateMovies(ctx context.Context, items []service.CreateMovieInput) ([]*model.Movie, error)
	BulkDeleteMovies(ctx context.Context, ids []string) ([]string, error)
}

type TicketService interface {
	BuyTicket(ctx context.Context, in service.BuyTicketInput) (*model.Ticket, error)
	UseTicket(ctx context.Context, userID, ticketID string) (*model.Ticket, error)
	GetTicket(ctx context.Context, caller model.Principal, id string) (*model.Ticket, error)
	UserTickets(ctx context.Context, userID string) ([]*model.Ticket, error)
	UnusedTickets(ctx context.Context, userID string) ([]*model.Ticket, error)
	WatchHistory(ctx context.Context, userID string) ([]*model.Ticket, error)
	SessionTicketCount(ctx context.Context, sessionID string) (int, error)
}

// RequestValidator plugs go-playground/validator into echo.
type RequestValidator struct {
	v *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (rv *RequestValidator) Validate(i any) error { return rv.v.Struct(i) }

// bind decodes and validates the body into req.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return model.NewValidationError("body", "invalid request body", model.ErrRequired)
	}
	return c.Validate(req)
}

// principal returns the caller stored by middleware.JWTAuth.
func principal(c echo.Context) (model.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return model.Principal{}, model.ErrUnauthorized
	}
	return p, nil
}

// reply maps v to its response shape and writes it with status.
func reply[T, R any](c echo.Context, r errorResponder, status int, v T, toResponse func(T) (R, error)) error {
	out, err := toResponse(v)
	if err != nil {
		return r.respond(c, err)
	}
	return c.JSON(status, out)
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// errorResponder writes the status and body for a service error.
type errorResponder struct {
	log *zap.Logger
}

func (r errorResponder) respond(c echo.Context, err error) error {
	var (
		bulk   *model.BulkPartialFailure
		fields validator.ValidationErrors
		ve     *model.ValidationError
	)
	switch {
	case errors.As(err, &bulk):
		created, merr := dto.NewMovies(bulk.Succeeded)
		if merr != nil {
			err = merr
			break
		}
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":   bulk.Error(),
			"created": created,
			"failed":  dto.NewBulkFailures(bulk.Failed),
		})
	case errors.As(err, &fields):
		details := make([]fieldError, 0, len(fields))
		for _, fe := range fields {
			details = append(details, fieldError{Field: fe.Field(), Rule: fe.Tag()})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "details": details})
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, model.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, model.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, model.ErrInvalidCredentials), errors.Is(err, model.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, model.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, model.ErrConflict), errors.Is(err, model.ErrInsufficientCapacity):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, model.ErrTooManyAttempts):
		return c.JSON(http.StatusTooManyRequests, echo.Map{"error": err.Error()})
	}
	r.log.Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}
