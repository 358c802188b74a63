package model

import "time"

// DateLayout is the wire format of session dates.
const DateLayout = "2006-01-02"

// Session is a single showing of a movie. Only BookedSeats changes after
// creation.
type Session struct {
	ID             string
	MovieID        string
	Date           time.Time
	TimeSlot       TimeSlot
	RoomNumber     int
	AvailableSeats int
	BookedSeats    int
}

// NewSession validates the slot, room and capacity. The date is reduced to
// its UTC calendar day.
func NewSession(id, movieID string, date time.Time, timeSlot string, roomNumber, availableSeats int) (*Session, error) {
	slot, err := ParseTimeSlot(timeSlot)
	if err != nil {
		return nil, err
	}
	if roomNumber <= 0 {
		return nil, NewValidationError("roomNumber", "room number must be positive", ErrOutOfRange)
	}
	if availableSeats <= 0 {
		return nil, NewValidationError("availableSeats", "available seats must be positive", ErrOutOfRange)
	}
	if date.IsZero() {
		return nil, invalid("date", ErrRequired)
	}
	return &Session{
		ID:             id,
		MovieID:        movieID,
		Date:           SessionDay(date.UTC()),
		TimeSlot:       slot,
		RoomNumber:     roomNumber,
		AvailableSeats: availableSeats,
	}, nil
}

// SessionDay truncates t to midnight UTC of the calendar day t carries.
func SessionDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseSessionDate accepts YYYY-MM-DD or RFC3339. Timestamps are reduced to
// their UTC calendar day.
func ParseSessionDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, NewValidationError("date", "expected YYYY-MM-DD or RFC3339", ErrInvalidDate)
	}
	return SessionDay(t.UTC()), nil
}

func (s *Session) RemainingSeats() int { return s.AvailableSeats - s.BookedSeats }

func (s *Session) HasAvailableSeats(n int) bool { return s.RemainingSeats() >= n }

// BookSeats takes n seats or fails with a CapacityError leaving the counter
// untouched.
func (s *Session) BookSeats(n int) error {
	if n <= 0 || !s.HasAvailableSeats(n) {
		return &CapacityError{SessionID: s.ID, Available: s.AvailableSeats, Booked: s.BookedSeats, Requested: n}
	}
	s.BookedSeats += n
	return nil
}

// ReleaseSeats gives back seats taken by a booking that could not complete.
func (s *Session) ReleaseSeats(n int) {
	s.BookedSeats -= n
	if s.BookedSeats < 0 {
		s.BookedSeats = 0
	}
}

func (s *Session) SameDay(o *Session) bool {
	return SessionDay(s.Date).Equal(SessionDay(o.Date))
}

// ConflictsWith reports whether both sessions occupy the same room in the
// same slot on the same day.
func (s *Session) ConflictsWith(o *Session) bool {
	return s.SameDay(o) && s.RoomNumber == o.RoomNumber && s.TimeSlot == o.TimeSlot
}
