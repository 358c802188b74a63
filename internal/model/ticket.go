package model

import "time"

// Ticket binds one user to one session and can be used once.
type Ticket struct {
	ID           string
	UserID       string
	MovieID      string
	SessionID    string
	PurchaseDate time.Time
	Used         bool
	UsedDate     *time.Time

	outbox
}

// NewTicket creates an unused ticket and records TicketCreated.
func NewTicket(id, userID, movieID, sessionID string, now time.Time) *Ticket {
	t := &Ticket{
		ID:           id,
		UserID:       userID,
		MovieID:      movieID,
		SessionID:    sessionID,
		PurchaseDate: now,
	}
	t.record(TicketCreated{TicketID: id, UserID: userID, MovieID: movieID, SessionID: sessionID, At: now})
	return t
}

func (t *Ticket) BelongsTo(userID string) bool { return t.UserID == userID }

// Use marks the ticket as used. The transition happens at most once.
func (t *Ticket) Use(now time.Time) error {
	if t.Used {
		return NewConflict(ErrAlreadyUsed)
	}
	t.Used = true
	t.UsedDate = &now
	t.record(TicketUsed{TicketID: t.ID, UserID: t.UserID, MovieID: t.MovieID, At: now})
	return nil
}

// Clone returns a copy without pending events.
func (t *Ticket) Clone() *Ticket {
	c := &Ticket{
		ID:           t.ID,
		UserID:       t.UserID,
		MovieID:      t.MovieID,
		SessionID:    t.SessionID,
		PurchaseDate: t.PurchaseDate,
		Used:         t.Used,
	}
	if t.UsedDate != nil {
		d := *t.UsedDate
		c.UsedDate = &d
	}
	return c
}
