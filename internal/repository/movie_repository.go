package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// MovieRepo stores movies and their sessions in the movies and sessions
// tables. The uq_sessions_slot key enforces one session per room, day and
// slot across all movies.
type MovieRepo struct{ db *sql.DB }

func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

const sessionColumns = "id, movie_id, session_date, time_slot, room_number, available_seats, booked_seats"

// Save upserts the movie row and inserts the sessions that are not stored
// yet. Stored sessions are left alone, booked_seats only moves through
// ReserveSeats and ReleaseSeats.
func (r *MovieRepo) Save(ctx context.Context, m *model.Movie) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO movies (id, name, age_restriction, created_at) VALUES (?,?,?,?)
		 ON DUPLICATE KEY UPDATE name=VALUES(name), age_restriction=VALUES(age_restriction)`,
		m.ID, m.Name, m.AgeRestriction.Int(), m.CreatedAt)
	if err != nil {
		return err
	}

	stored, err := r.sessionIDs(ctx, tx, m.ID)
	if err != nil {
		return err
	}
	for _, s := range m.Sessions {
		if stored[s.ID] {
			continue
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO sessions ("+sessionColumns+") VALUES (?,?,?,?,?,?,0)",
			s.ID, m.ID, s.Date.Format(model.DateLayout), s.TimeSlot.String(), s.RoomNumber, s.AvailableSeats)
		if err != nil {
			if isDuplicate(err) {
				err = model.NewConflict(model.ErrRoomConflict)
			}
			return err
		}
	}
	return nil
}

func (r *MovieRepo) sessionIDs(ctx context.Context, tx *sql.Tx, movieID string) (map[string]bool, error) {
	rows, err := tx.QueryContext(ctx, "SELECT id FROM sessions WHERE movie_id=?", movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

func (r *MovieRepo) FindByID(ctx context.Context, id string) (*model.Movie, error) {
	var (
		m   model.Movie
		age int
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, age_restriction, created_at FROM movies WHERE id=?", id).
		Scan(&m.ID, &m.Name, &age, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m.AgeRestriction = model.AgeRestriction(age)

	if err := r.attachSessions(ctx, []*model.Movie{&m}); err != nil {
		return nil, err
	}
	return &m, nil
}

// attachSessions loads the sessions of all movies with one query.
func (r *MovieRepo) attachSessions(ctx context.Context, movies []*model.Movie) error {
	if len(movies) == 0 {
		return nil
	}
	byID := make(map[string]*model.Movie, len(movies))
	args := make([]any, 0, len(movies))
	for _, m := range movies {
		m.Sessions = []*model.Session{}
		byID[m.ID] = m
		args = append(args, m.ID)
	}
	q := "SELECT " + sessionColumns + " FROM sessions WHERE movie_id IN (?" +
		strings.Repeat(",?", len(args)-1) + ") ORDER BY session_date, time_slot, room_number"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return err
		}
		if m := byID[s.MovieID]; m != nil {
			m.Sessions = append(m.Sessions, s)
		}
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(sc scanner) (*model.Session, error) {
	var (
		s    model.Session
		day  time.Time
		slot string
	)
	if err := sc.Scan(&s.ID, &s.MovieID, &day, &slot, &s.RoomNumber, &s.AvailableSeats, &s.BookedSeats); err != nil {
		return nil, err
	}
	s.Date = model.SessionDay(day)
	s.TimeSlot = model.TimeSlot(slot)
	return &s, nil
}

// Delete removes the movie; sessions follow through ON DELETE CASCADE. Sold
// tickets hold their session with ON DELETE RESTRICT, which surfaces as
// model.ErrMovieHasTickets.
func (r *MovieRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM movies WHERE id=?", id)
	if err != nil && isReferenced(err) {
		return &model.ConflictError{
			Reason: fmt.Sprintf("movie %s has tickets sold", id),
			Cause:  model.ErrMovieHasTickets,
		}
	}
	return err
}

func (r *MovieRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies WHERE id=?", id).Scan(&n)
	return n > 0, err
}

func (r *MovieRepo) CheckRoomAvailable(ctx context.Context, date time.Time, slot model.TimeSlot, room int) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sessions WHERE session_date=? AND time_slot=? AND room_number=?",
		model.SessionDay(date.UTC()).Format(model.DateLayout), slot.String(), room).Scan(&n)
	return n == 0, err
}

// ReserveSeats is a single conditional UPDATE, so concurrent buyers can
// never push booked_seats past available_seats.
func (r *MovieRepo) ReserveSeats(ctx context.Context, movieID, sessionID string, n int) error {
	if n <= 0 {
		return &model.CapacityError{SessionID: sessionID, Requested: n}
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET booked_seats = booked_seats + ?
		 WHERE id=? AND movie_id=? AND booked_seats + ? <= available_seats`,
		n, sessionID, movieID, n)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err != nil || affected == 1 {
		return err
	}

	var available, booked int
	err = r.db.QueryRowContext(ctx,
		"SELECT available_seats, booked_seats FROM sessions WHERE id=? AND movie_id=?", sessionID, movieID).
		Scan(&available, &booked)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NewNotFound("session", sessionID)
	}
	if err != nil {
		return err
	}
	return &model.CapacityError{SessionID: sessionID, Available: available, Booked: booked, Requested: n}
}

func (r *MovieRepo) ReleaseSeats(ctx context.Context, movieID, sessionID string, n int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET booked_seats = GREATEST(booked_seats - ?, 0)
		 WHERE id=? AND movie_id=?`,
		n, sessionID, movieID)
	return err
}
