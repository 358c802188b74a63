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

type CreateMovieInput struct {
	Name           string
	AgeRestriction int
}

// UpdateMovieInput is a partial update. Nil fields are left unchanged.
type UpdateMovieInput struct {
	Name           *string
	AgeRestriction *int
}

type AddSessionInput struct {
	Date           time.Time
	TimeSlot       string
	RoomNumber     int
	AvailableSeats int
}

type MovieService struct {
	movies   ports.MovieRepo
	tickets  ports.TicketRepo
	notifier ports.EventNotifier
	log      *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewMovieService(movies ports.MovieRepo, tickets ports.TicketRepo, notifier ports.EventNotifier, log *zap.Logger) *MovieService {
	return &MovieService{
		movies:   movies,
		tickets:  tickets,
		notifier: notifier,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

func (s *MovieService) CreateMovie(ctx context.Context, in CreateMovieInput) (*model.Movie, error) {
	movie, err := model.NewMovie(s.newID(), in.Name, in.AgeRestriction, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.movies.Save(ctx, movie); err != nil {
		return nil, fmt.Errorf("create movie: %w", err)
	}

	s.log.Info("movie created", zap.String("movie_id", movie.ID), zap.String("name", movie.Name))
	notify(ctx, s.notifier, movie.PullEvents())
	return movie, nil
}

func (s *MovieService) UpdateMovie(ctx context.Context, id string, in UpdateMovieInput) (*model.Movie, error) {
	movie, err := s.findMovie(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if err := movie.Rename(*in.Name); err != nil {
			return nil, err
		}
	}
	// zero is a valid restriction, only nil means "keep"
	if in.AgeRestriction != nil {
		if err := movie.SetAgeRestriction(*in.AgeRestriction); err != nil {
			return nil, err
		}
	}
	movie.MarkUpdated(s.now())
	if err := s.movies.Save(ctx, movie); err != nil {
		return nil, fmt.Errorf("update movie: %w", err)
	}
	notify(ctx, s.notifier, movie.PullEvents())
	return movie, nil
}

// DeleteMovie removes the movie and its sessions. Movies whose sessions
// already sold tickets can not be deleted.
func (s *MovieService) DeleteMovie(ctx context.Context, id string) error {
	movie, err := s.findMovie(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ensureNoTickets(ctx, movie); err != nil {
		return err
	}
	if err := s.movies.Delete(ctx, id); err != nil {
		if errors.Is(err, model.ErrConflict) {
			return err
		}
		return fmt.Errorf("delete movie: %w", err)
	}

	movie.MarkDeleted(s.now())
	s.log.Info("movie deleted", zap.String("movie_id", id), zap.Int("sessions", len(movie.Sessions)))
	notify(ctx, s.notifier, movie.PullEvents())
	return nil
}

// GetMovie returns a movie. Customers below the age restriction are refused.
func (s *MovieService) GetMovie(ctx context.Context, caller model.Principal, id string) (*model.Movie, error) {
	movie, err := s.findMovie(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsManager() && !movie.AllowsAge(caller.Age) {
		return nil, model.NewForbidden(model.ErrAgeRestricted)
	}
	return movie, nil
}

// ListMovies applies the filter. For customers the upper age bound is
// clamped to their own age whatever they asked for.
func (s *MovieService) ListMovies(ctx context.Context, caller model.Principal, filter model.MovieFilter) ([]*model.Movie, error) {
	f, err := filter.Normalize()
	if err != nil {
		return nil, err
	}
	if !caller.IsManager() {
		f = f.ClampMaxAge(caller.Age)
	}
	movies, err := s.movies.FindAll(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return movies, nil
}

// AddSession schedules a new showing of the movie.
func (s *MovieService) AddSession(ctx context.Context, movieID string, in AddSessionInput) (*model.Movie, error) {
	session, err := model.NewSession(s.newID(), movieID, in.Date, in.TimeSlot, in.RoomNumber, in.AvailableSeats)
	if err != nil {
		return nil, err
	}
	movie, err := s.findMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}

	free, err := s.movies.CheckRoomAvailable(ctx, session.Date, session.TimeSlot, session.RoomNumber)
	if err != nil {
		return nil, fmt.Errorf("check room: %w", err)
	}
	if !free {
		return nil, &model.ConflictError{
			Reason: fmt.Sprintf("room %d is already booked at %s on %s",
				session.RoomNumber, session.TimeSlot, session.Date.Format(model.DateLayout)),
			Cause: model.ErrRoomConflict,
		}
	}

	if err := movie.AddSession(session, s.now()); err != nil {
		return nil, err
	}
	if err := s.movies.Save(ctx, movie); err != nil {
		if errors.Is(err, model.ErrRoomConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("add session: %w", err)
	}

	s.log.Info("session created",
		zap.String("movie_id", movie.ID),
		zap.String("session_id", session.ID),
		zap.String("date", session.Date.Format(model.DateLayout)),
		zap.String("time_slot", session.TimeSlot.String()),
		zap.Int("room", session.RoomNumber),
	)
	notify(ctx, s.notifier, movie.PullEvents())
	return movie, nil
}

// BulkCreateMovies creates every valid item. When some items fail the
// error is a *model.BulkPartialFailure listing them by index; the movies
// that succeeded stay persisted.
func (s *MovieService) BulkCreateMovies(ctx context.Context, items []CreateMovieInput) ([]*model.Movie, error) {
	if len(items) == 0 {
		return nil, model.NewValidationError("movies", "at least one movie is required", model.ErrRequired)
	}
	created := make([]*model.Movie, 0, len(items))
	var failed []model.BulkItemError
	for i, in := range items {
		m, err := s.CreateMovie(ctx, in)
		if err != nil {
			failed = append(failed, model.BulkItemError{Index: i, Err: err})
			continue
		}
		created = append(created, m)
	}
	if len(failed) > 0 {
		s.log.Warn("bulk create partially failed", zap.Int("created", len(created)), zap.Int("failed", len(failed)))
		return created, &model.BulkPartialFailure{Succeeded: created, Failed: failed}
	}
	return created, nil
}

// BulkDeleteMovies deletes all movies or none: every id is verified before
// the first deletion.
func (s *MovieService) BulkDeleteMovies(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, model.NewValidationError("movieIds", "at least one id is required", model.ErrRequired)
	}
	movies := make([]*model.Movie, 0, len(ids))
	for _, id := range ids {
		m, err := s.findMovie(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.ensureNoTickets(ctx, m); err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}

	deleted := make([]string, 0, len(movies))
	for _, m := range movies {
		if err := s.movies.Delete(ctx, m.ID); err != nil {
			return deleted, fmt.Errorf("bulk delete %s: %w", m.ID, err)
		}
		m.MarkDeleted(s.now())
		notify(ctx, s.notifier, m.PullEvents())
		deleted = append(deleted, m.ID)
	}
	s.log.Info("movies deleted", zap.Strings("movie_ids", deleted))
	return deleted, nil
}

func (s *MovieService) findMovie(ctx context.Context, id string) (*model.Movie, error) {
	m, err := s.movies.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	}
	if m == nil {
		return nil, model.NewNotFound("movie", id)
	}
	return m, nil
}

func (s *MovieService) ensureNoTickets(ctx context.Context, m *model.Movie) error {
	if s.tickets == nil {
		return nil
	}
	for _, sess := range m.Sessions {
		tickets, err := s.tickets.FindBySession(ctx, sess.ID)
		if err != nil {
			return fmt.Errorf("count tickets: %w", err)
		}
		if len(tickets) > 0 {
			return &model.ConflictError{
				Reason: fmt.Sprintf("movie %s has %d tickets sold for session %s", m.ID, len(tickets), sess.ID),
				Cause:  model.ErrMovieHasTickets,
			}
		}
	}
	return nil
}
