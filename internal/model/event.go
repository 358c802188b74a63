package model

import "time"

// Event is a fact recorded by an aggregate. Services drain events with
// PullEvents after a successful save and hand them to a notifier.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// Event names as published on the bus.
const (
	EventUserCreated    = "user.created"
	EventLoginFailed    = "auth.login_failed"
	EventMovieCreated   = "movie.created"
	EventMovieUpdated   = "movie.updated"
	EventMovieDeleted   = "movie.deleted"
	EventSessionCreated = "session.created"
	EventTicketCreated  = "ticket.created"
	EventTicketUsed     = "ticket.used"
)

type UserCreated struct {
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	Role     Role      `json:"role"`
	Age      int       `json:"age"`
	At       time.Time `json:"occurred_at"`
}

func (e UserCreated) EventName() string     { return EventUserCreated }
func (e UserCreated) OccurredAt() time.Time { return e.At }

// LoginFailed is emitted for both unknown users and wrong passwords.
type LoginFailed struct {
	Username  string    `json:"username"`
	IPAddress string    `json:"ip_address"`
	At        time.Time `json:"occurred_at"`
}

func (e LoginFailed) EventName() string     { return EventLoginFailed }
func (e LoginFailed) OccurredAt() time.Time { return e.At }

type MovieCreated struct {
	MovieID        string    `json:"movie_id"`
	Name           string    `json:"name"`
	AgeRestriction int       `json:"age_restriction"`
	At             time.Time `json:"occurred_at"`
}

func (e MovieCreated) EventName() string     { return EventMovieCreated }
func (e MovieCreated) OccurredAt() time.Time { return e.At }

type MovieUpdated struct {
	MovieID        string    `json:"movie_id"`
	Name           string    `json:"name"`
	AgeRestriction int       `json:"age_restriction"`
	At             time.Time `json:"occurred_at"`
}

func (e MovieUpdated) EventName() string     { return EventMovieUpdated }
func (e MovieUpdated) OccurredAt() time.Time { return e.At }

type MovieDeleted struct {
	MovieID  string    `json:"movie_id"`
	Sessions int       `json:"sessions"`
	At       time.Time `json:"occurred_at"`
}

func (e MovieDeleted) EventName() string     { return EventMovieDeleted }
func (e MovieDeleted) OccurredAt() time.Time { return e.At }

type SessionCreated struct {
	SessionID  string    `json:"session_id"`
	MovieID    string    `json:"movie_id"`
	Date       string    `json:"date"`
	TimeSlot   TimeSlot  `json:"time_slot"`
	RoomNumber int       `json:"room_number"`
	At         time.Time `json:"occurred_at"`
}

func (e SessionCreated) EventName() string     { return EventSessionCreated }
func (e SessionCreated) OccurredAt() time.Time { return e.At }

type TicketCreated struct {
	TicketID  string    `json:"ticket_id"`
	UserID    string    `json:"user_id"`
	MovieID   string    `json:"movie_id"`
	SessionID string    `json:"session_id"`
	At        time.Time `json:"occurred_at"`
}

func (e TicketCreated) EventName() string     { return EventTicketCreated }
func (e TicketCreated) OccurredAt() time.Time { return e.At }

type TicketUsed struct {
	TicketID string    `json:"ticket_id"`
	UserID   string    `json:"user_id"`
	MovieID  string    `json:"movie_id"`
	At       time.Time `json:"occurred_at"`
}

func (e TicketUsed) EventName() string     { return EventTicketUsed }
func (e TicketUsed) OccurredAt() time.Time { return e.At }

// outbox collects events until the owning service drains them.
type outbox struct {
	events []Event
}

func (o *outbox) record(e Event) { o.events = append(o.events, e) }

// PullEvents returns the recorded events and clears the outbox.
func (o *outbox) PullEvents() []Event {
	ev := o.events
	o.events = nil
	return ev
}
