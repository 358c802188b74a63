package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// TicketRepo stores tickets. uq_tickets_user_session allows one ticket per
// user and session.
type TicketRepo struct{ db *sql.DB }

func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

const ticketColumns = "id, user_id, movie_id, session_id, purchase_date, used, used_date"

// Save inserts a new ticket or marks a stored one as used. The used flag
// flips at most once: the UPDATE only matches unused rows.
func (r *TicketRepo) Save(ctx context.Context, t *model.Ticket) error {
	exists, err := r.exists(ctx, t.ID)
	if err != nil {
		return err
	}
	if !exists {
		_, err := r.db.ExecContext(ctx,
			"INSERT INTO tickets ("+ticketColumns+") VALUES (?,?,?,?,?,?,?)",
			t.ID, t.UserID, t.MovieID, t.SessionID, t.PurchaseDate, t.Used, t.UsedDate)
		switch {
		case err == nil:
			return nil
		case isDuplicate(err):
			return model.NewConflict(model.ErrDuplicateTicket)
		case isMissingParent(err):
			return model.NewConflict(model.ErrStaleReference)
		}
		return err
	}

	if !t.Used {
		return nil
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE tickets SET used=1, used_date=? WHERE id=? AND used=0", t.UsedDate, t.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return model.NewConflict(model.ErrAlreadyUsed)
	}
	return nil
}

func (r *TicketRepo) exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tickets WHERE id=?", id).Scan(&n)
	return n > 0, err
}

func (r *TicketRepo) FindByID(ctx context.Context, id string) (*model.Ticket, error) {
	t, err := scanTicket(r.db.QueryRowContext(ctx,
		"SELECT "+ticketColumns+" FROM tickets WHERE id=?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

func (r *TicketRepo) FindByUserAndSession(ctx context.Context, userID, sessionID string) (*model.Ticket, error) {
	t, err := scanTicket(r.db.QueryRowContext(ctx,
		"SELECT "+ticketColumns+" FROM tickets WHERE user_id=? AND session_id=?", userID, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

func (r *TicketRepo) FindBySession(ctx context.Context, sessionID string) ([]*model.Ticket, error) {
	return r.list(ctx, "WHERE session_id=? ORDER BY purchase_date, id", sessionID)
}

func (r *TicketRepo) FindByUser(ctx context.Context, userID string) ([]*model.Ticket, error) {
	return r.list(ctx, "WHERE user_id=? ORDER BY purchase_date, id", userID)
}

func (r *TicketRepo) FindUsedByUser(ctx context.Context, userID string) ([]*model.Ticket, error) {
	return r.list(ctx, "WHERE user_id=? AND used=1 ORDER BY used_date DESC, id DESC", userID)
}

func (r *TicketRepo) FindUnusedByUser(ctx context.Context, userID string) ([]*model.Ticket, error) {
	return r.list(ctx, "WHERE user_id=? AND used=0 ORDER BY purchase_date, id", userID)
}

func (r *TicketRepo) list(ctx context.Context, tail string, args ...any) ([]*model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+ticketColumns+" FROM tickets "+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTicket(sc scanner) (*model.Ticket, error) {
	var (
		t    model.Ticket
		used sql.NullTime
	)
	if err := sc.Scan(&t.ID, &t.UserID, &t.MovieID, &t.SessionID, &t.PurchaseDate, &t.Used, &used); err != nil {
		return nil, err
	}
	if used.Valid {
		u := used.Time
		t.UsedDate = &u
	}
	return &t, nil
}
