package handler

import (
	"net/http"
	"strconv"

	"github.com/jinzhu/copier"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking/internal/handler/dto"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/service"
)

type MovieHandler struct {
	movies  MovieService
	tickets TicketService
	errorResponder
}

func NewMovieHandler(movies MovieService, tickets TicketService, log *zap.Logger) *MovieHandler {
	return &MovieHandler{movies: movies, tickets: tickets, errorResponder: errorResponder{log: log}}
}

// List handles GET /v1/movies?name=&min_age=&max_age=&sort_by=&sort_order=.
func (h *MovieHandler) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.respond(c, err)
	}
	f, err := movieFilter(c)
	if err != nil {
		return h.respond(c, err)
	}
	movies, err := h.movies.ListMovies(c.Request().Context(), p, f)
	if err != nil {
		return h.respond(c, err)
	}
	return reply(c, h.errorResponder, http.StatusOK, movies, dto.NewMovies)
}

func movieFilter(c echo.Context) (model.MovieFilter, error) {
	f := model.MovieFilter{
		Name:      c.QueryParam("name"),
		SortBy:    model.MovieSortField(c.QueryParam("sort_by")),
		SortOrder: model.SortOrder(c.QueryParam("sort_order")),
	}
	var err error
	if f.MinAge, err = optionalInt(c, "min_age"); err != nil {
		return f, err
	}
	if f.MaxAge, err = optionalInt(c, "max_age"); err != nil {
		return f, err
	}
	return f, nil
}

func optionalInt(c echo.Context, name string) (*int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, model.NewValidationError(name, "must be an integer", model.ErrOutOfRange)
	}
	return &n, nil
}

// Get handles GET /v1/movies/:id.
func (h *MovieHandler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.respond(c, err)
	}
	m, err := h.movies.GetMovie(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return h.respond(c, err)
	}
	return reply(c, h.errorResponder, http.StatusOK, m, dto.NewMovie)
}

// Create handles POST /v1/movies.
func (h *MovieHandler) Create(c echo.Context) error {
	var req dto.CreateMovieRequest
	if err := bind(c, &req); err != nil {
		return h.respond(c, err)
	}
	var in service.CreateMovieInput
	if err := copier.Copy(&in, &req); err != nil {
		return h.respond(c, err)
	}
	m, err := h.movies.CreateMovie(c.Request().Context(), in)
	if err != nil {
		return h.respond(c, err)
	}
	return reply(c, h.errorResponder, http.StatusCreated, m, dto.NewMovie)
}

// Update handles PUT /v1/movies/:id. Omitted fields are kept.
func (h *MovieHandler) Update(c echo.Context) error {
	var req dto.UpdateMovieRequest
	if err := bind(c, &req); err != nil {
		return h.respond(c, err)
	}
	var in service.UpdateMovieInput
	if err := copier.Copy(&in, &req); err != nil {
		return h.respond(c, err)
	}
	m, err := h.movies.UpdateMovie(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return h.respond(c, err)
	}
	return reply(c, h.errorResponder, http.StatusOK, m, dto.NewMovie)
}

// Delete handles DELETE /v1/movies/:id.
func (h *MovieHandler) Delete(c echo.Context) error {
	if err := h.movies.DeleteMovie(c.Request().Context(), c.Param("id")); err != nil {
		return h.respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// BulkCreate handles POST /v1/movies/bulk. Partial failures answer 400 with
// both the created movies and the failed indexes.
func (h *MovieHandler) BulkCreate(c echo.Context) error {
	var req dto.BulkCreateMoviesRequest
	if err := bind(c, &req); err != nil {
		return h.respond(c, err)
	}
	items := make([]service.CreateMovieInput, 0, len(req.Movies))
	if err := copier.Copy(&items, &req.Movies); err != nil {
		return h.respond(c, err)
	}
	created, err := h.movies.BulkCreateMovies(c.Request().Context(), items)
	if err != nil {
		return h.respond(c, err)
	}
	out, err := dto.NewMovies(created)
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(http.StatusCreated, dto.BulkCreateResponse{Created: out})
}

// BulkDelete handles DELETE /v1/movies/bulk. Either all ids are deleted or
// none.
func (h *MovieHandler) BulkDelete(c echo.Context) error {
	var req dto.BulkDeleteMoviesRequest
	if err := bind(c, &req); err != nil {
		return h.respond(c, err)
	}
	deleted, err := h.movies.BulkDeleteMovies(c.Request().Context(), req.MovieIDs)
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(http.StatusOK, dto.BulkDeleteResponse{Deleted: deleted})
}

// AddSession handles POST /v1/movies/:id/sessions.
func (h *MovieHandler) AddSession(c echo.Context) error {
	var req dto.AddSessionRequest
	if err := bind(c, &req); err != nil {
		return h.respond(c, err)
	}
	date, err := model.ParseSessionDate(req.Date)
	if err != nil {
		return h.respond(c, err)
	}
	m, err := h.movies.AddSession(c.Request().Context(), c.Param("id"), service.AddSessionInput{
		Date:           date,
		TimeSlot:       req.TimeSlot,
		RoomNumber:     req.RoomNumber,
		AvailableSeats: req.AvailableSeats,
	})
	if err != nil {
		return h.respond(c, err)
	}
	return reply(c, h.errorResponder, http.StatusCreated, m, dto.NewMovie)
}

// SessionTicketCount handles GET /v1/sessions/:id/tickets/count.
func (h *MovieHandler) SessionTicketCount(c echo.Context) error {
	id := c.Param("id")
	n, err := h.tickets.SessionTicketCount(c.Request().Context(), id)
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(http.StatusOK, dto.CountResponse{SessionID: id, Count: n})
}
