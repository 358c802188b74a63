package model

import (
	"strings"
	"time"
)

// AgeRestriction is the minimum age required to watch a movie.
type AgeRestriction int

func NewAgeRestriction(v int) (AgeRestriction, error) {
	if v < 0 {
		return 0, invalid("ageRestriction", ErrInvalidAgeRestriction)
	}
	return AgeRestriction(v), nil
}

// Allows reports whether a viewer of the given age may watch.
func (a AgeRestriction) Allows(age int) bool { return age >= int(a) }

func (a AgeRestriction) Int() int { return int(a) }

// Movie owns its sessions. Deleting a movie deletes them as well.
type Movie struct {
	ID             string
	Name           string
	AgeRestriction AgeRestriction
	Sessions       []*Session
	CreatedAt      time.Time

	outbox
}

// NewMovie validates the input and records MovieCreated.
func NewMovie(id, name string, ageRestriction int, now time.Time) (*Movie, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", ErrRequired)
	}
	ar, err := NewAgeRestriction(ageRestriction)
	if err != nil {
		return nil, err
	}
	m := &Movie{ID: id, Name: name, AgeRestriction: ar, CreatedAt: now}
	m.record(MovieCreated{MovieID: id, Name: name, AgeRestriction: ageRestriction, At: now})
	return m, nil
}

func (m *Movie) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("name", ErrRequired)
	}
	m.Name = name
	return nil
}

func (m *Movie) SetAgeRestriction(v int) error {
	ar, err := NewAgeRestriction(v)
	if err != nil {
		return err
	}
	m.AgeRestriction = ar
	return nil
}

// MarkUpdated records MovieUpdated with the current values.
func (m *Movie) MarkUpdated(now time.Time) {
	m.record(MovieUpdated{MovieID: m.ID, Name: m.Name, AgeRestriction: m.AgeRestriction.Int(), At: now})
}

// MarkDeleted records MovieDeleted.
func (m *Movie) MarkDeleted(now time.Time) {
	m.record(MovieDeleted{MovieID: m.ID, Sessions: len(m.Sessions), At: now})
}

// AddSession appends s to the movie. The session must reference this movie
// and must not collide with one of the movie's own sessions; collisions with
// other movies are checked by the store.
func (m *Movie) AddSession(s *Session, now time.Time) error {
	if s.MovieID != m.ID {
		return NewConflict(ErrForeignSession)
	}
	for _, existing := range m.Sessions {
		if existing.ConflictsWith(s) {
			return NewConflict(ErrRoomConflict)
		}
	}
	m.Sessions = append(m.Sessions, s)
	m.record(SessionCreated{
		SessionID:  s.ID,
		MovieID:    m.ID,
		Date:       s.Date.Format(DateLayout),
		TimeSlot:   s.TimeSlot,
		RoomNumber: s.RoomNumber,
		At:         now,
	})
	return nil
}

// Session returns the session with the given id, or nil.
func (m *Movie) Session(id string) *Session {
	for _, s := range m.Sessions {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (m *Movie) AllowsAge(age int) bool { return m.AgeRestriction.Allows(age) }

// Clone returns a deep copy without pending events.
func (m *Movie) Clone() *Movie {
	c := &Movie{
		ID:             m.ID,
		Name:           m.Name,
		AgeRestriction: m.AgeRestriction,
		CreatedAt:      m.CreatedAt,
		Sessions:       make([]*Session, 0, len(m.Sessions)),
	}
	for _, s := range m.Sessions {
		cp := *s
		c.Sessions = append(c.Sessions, &cp)
	}
	return c
}
