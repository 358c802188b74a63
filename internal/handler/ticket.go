package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking/internal/handler/dto"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/service"
	"github.com/iliyamo/cinema-booking/internal/utils"
)

type TicketHandler struct {
	tickets TicketService
	errorResponder
}

func NewTicketHandler(tickets TicketService, log *zap.Logger) *TicketHandler {
	return &TicketHandler{tickets: tickets, errorResponder: errorResponder{log: log}}
}

// Buy handles POST /v1/tickets/buy for the calling user.
func (h *TicketHandler) Buy(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.respond(c, err)
	}
	var req dto.BuyTicketRequest
	if err := bind(c, &req); err != nil {
		return h.respond(c, err)
	}
	t, err := h.tickets.BuyTicket(c.Request().Context(), service.BuyTicketInput{
		UserID:    p.ID,
		MovieID:   req.MovieID,
		SessionID: req.SessionID,
	})
	if err != nil {
		return h.respond(c, err)
	}
	return reply(c, h.errorResponder, http.StatusCreated, t, dto.NewTicket)
}

// Use handles POST /v1/tickets/:id/use.
func (h *TicketHandler) Use(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.respond(c, err)
	}
	t, err := h.tickets.UseTicket(c.Request().Context(), p.ID, c.Param("id"))
	if err != nil {
		return h.respond(c, err)
	}
	return reply(c, h.errorResponder, http.StatusOK, t, dto.NewTicket)
}

// Get handles GET /v1/tickets/:id.
func (h *TicketHandler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.respond(c, err)
	}
	t, err := h.tickets.GetTicket(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return h.respond(c, err)
	}
	return reply(c, h.errorResponder, http.StatusOK, t, dto.NewTicket)
}

// QR handles GET /v1/tickets/:id/qr and returns a PNG for entry scanning.
// Used tickets are refused.
func (h *TicketHandler) QR(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return h.respond(c, err)
	}
	t, err := h.tickets.GetTicket(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return h.respond(c, err)
	}
	if t.Used {
		return h.respond(c, model.NewConflict(model.ErrAlreadyUsed))
	}
	png, err := utils.GenerateQRCode(utils.TicketQRContent(t.ID), 256)
	if err != nil {
		return h.respond(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

// List handles GET /v1/tickets.
func (h *TicketHandler) List(c echo.Context) error {
	return h.list(c, h.tickets.UserTickets)
}

// Unused handles GET /v1/tickets/unused.
func (h *TicketHandler) Unused(c echo.Context) error {
	return h.list(c, h.tickets.UnusedTickets)
}

// History handles GET /v1/tickets/history, newest first.
func (h *TicketHandler) History(c echo.Context) error {
	return h.list(c, h.tickets.WatchHistory)
}

func (h *TicketHandler) list(c echo.Context, fetch func(ctx context.Context, userID string) ([]*model.Ticket, error)) error {
	p, err := principal(c)
	if err != nil {
		return h.respond(c, err)
	}
	ts, err := fetch(c.Request().Context(), p.ID)
	if err != nil {
		return h.respond(c, err)
	}
	return reply(c, h.errorResponder, http.StatusOK, ts, dto.NewTickets)
}
