package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/service/ports"
)

type BuyTicketInput struct {
	UserID    string
	MovieID   string
	SessionID string
}

type TicketService struct {
	tickets  ports.TicketRepo
	movies   ports.MovieRepo
	users    ports.UserRepo
	notifier ports.EventNotifier
	log      *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewTicketService(
	tickets ports.TicketRepo,
	movies ports.MovieRepo,
	users ports.UserRepo,
	notifier ports.EventNotifier,
	log *zap.Logger,
) *TicketService {
	return &TicketService{
		tickets:  tickets,
		movies:   movies,
		users:    users,
		notifier: notifier,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// BuyTicket sells one seat of a session to a user. The duplicate check runs
// before the seat is reserved so a rejected purchase never moves the
// counter; a duplicate detected by the store afterwards releases the seat.
func (s *TicketService) BuyTicket(ctx context.Context, in BuyTicketInput) (*model.Ticket, error) {
	user, err := findUser(ctx, s.users, in.UserID)
	if err != nil {
		return nil, err
	}
	movie, err := s.movies.FindByID(ctx, in.MovieID)
	if err != nil {
		return nil, fmt.Errorf("buy ticket: %w", err)
	}
	if movie == nil {
		return nil, model.NewNotFound("movie", in.MovieID)
	}
	session := movie.Session(in.SessionID)
	if session == nil {
		return nil, model.NewNotFound("session", in.SessionID)
	}

	if !user.CanWatch(movie.AgeRestriction) {
		return nil, &model.ForbiddenError{
			Reason: fmt.Sprintf("movie requires age %d, user is %d", movie.AgeRestriction.Int(), user.Age),
			Cause:  model.ErrAgeRestricted,
		}
	}

	existing, err := s.tickets.FindByUserAndSession(ctx, user.ID, session.ID)
	if err != nil {
		return nil, fmt.Errorf("buy ticket: %w", err)
	}
	if existing != nil {
		return nil, model.NewConflict(model.ErrDuplicateTicket)
	}

	if err := s.movies.ReserveSeats(ctx, movie.ID, session.ID, 1); err != nil {
		var capErr *model.CapacityError
		if errors.As(err, &capErr) || errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("reserve seat: %w", err)
	}

	ticket := model.NewTicket(s.newID(), user.ID, movie.ID, session.ID, s.now())
	if err := s.tickets.Save(ctx, ticket); err != nil {
		if rerr := s.movies.ReleaseSeats(ctx, movie.ID, session.ID, 1); rerr != nil {
			s.log.Error("release seat after failed purchase",
				zap.String("session_id", session.ID), zap.Error(rerr))
		}
		if errors.Is(err, model.ErrDuplicateTicket) {
			return nil, err
		}
		return nil, fmt.Errorf("save ticket: %w", err)
	}

	s.log.Info("ticket purchased",
		zap.String("ticket_id", ticket.ID),
		zap.String("user_id", user.ID),
		zap.String("session_id", session.ID),
	)
	notify(ctx, s.notifier, ticket.PullEvents())
	return ticket, nil
}

// UseTicket redeems a ticket owned by userID. It can succeed only once.
func (s *TicketService) UseTicket(ctx context.Context, userID, ticketID string) (*model.Ticket, error) {
	ticket, err := s.findTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.BelongsTo(userID) {
		return nil, model.NewForbidden(model.ErrNotTicketOwner)
	}
	if ticket.Used {
		return nil, model.NewConflict(model.ErrAlreadyUsed)
	}

	movie, err := s.movies.FindByID(ctx, ticket.MovieID)
	if err != nil {
		return nil, fmt.Errorf("use ticket: %w", err)
	}
	if movie == nil || movie.Session(ticket.SessionID) == nil {
		return nil, model.NewConflict(model.ErrStaleReference)
	}

	if err := ticket.Use(s.now()); err != nil {
		return nil, err
	}
	if err := s.tickets.Save(ctx, ticket); err != nil {
		if errors.Is(err, model.ErrAlreadyUsed) {
			return nil, err
		}
		return nil, fmt.Errorf("use ticket: %w", err)
	}

	s.log.Info("ticket used", zap.String("ticket_id", ticket.ID), zap.String("user_id", userID))
	notify(ctx, s.notifier, ticket.PullEvents())
	return ticket, nil
}

// GetTicket returns a ticket to its owner or to a manager.
func (s *TicketService) GetTicket(ctx context.Context, caller model.Principal, id string) (*model.Ticket, error) {
	t, err := s.findTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsManager() && !t.BelongsTo(caller.ID) {
		return nil, model.NewForbidden(model.ErrNotTicketOwner)
	}
	return t, nil
}

func (s *TicketService) UserTickets(ctx context.Context, userID string) ([]*model.Ticket, error) {
	if _, err := findUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	return wrapList(s.tickets.FindByUser(ctx, userID))
}

func (s *TicketService) UnusedTickets(ctx context.Context, userID string) ([]*model.Ticket, error) {
	if _, err := findUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	return wrapList(s.tickets.FindUnusedByUser(ctx, userID))
}

// WatchHistory lists used tickets, most recently used first.
func (s *TicketService) WatchHistory(ctx context.Context, userID string) ([]*model.Ticket, error) {
	if _, err := findUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	return wrapList(s.tickets.FindUsedByUser(ctx, userID))
}

// SessionTicketCount counts sold tickets. It is independent of the session's
// booked seat counter.
func (s *TicketService) SessionTicketCount(ctx context.Context, sessionID string) (int, error) {
	tickets, err := s.tickets.FindBySession(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("count tickets: %w", err)
	}
	return len(tickets), nil
}

func (s *TicketService) findTicket(ctx context.Context, id string) (*model.Ticket, error) {
	t, err := s.tickets.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	if t == nil {
		return nil, model.NewNotFound("ticket", id)
	}
	return t, nil
}

func wrapList(tickets []*model.Ticket, err error) ([]*model.Ticket, error) {
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	if tickets == nil {
		tickets = []*model.Ticket{}
	}
	return tickets, nil
}
