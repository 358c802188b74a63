package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func TestParseRole(t *testing.T) {
	for _, in := range []string{"manager", "MANAGER", " Manager "} {
		r, err := ParseRole(in)
		require.NoError(t, err, in)
		assert.Equal(t, RoleManager, r)
	}
	r, err := ParseRole("customer")
	require.NoError(t, err)
	assert.Equal(t, "customer", r.String())

	_, err = ParseRole("admin")
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestParseTimeSlot(t *testing.T) {
	for _, ts := range TimeSlots() {
		got, err := ParseTimeSlot(ts.String())
		require.NoError(t, err)
		assert.Equal(t, ts, got)
	}

	got, err := ParseTimeSlot("  14:00-16:00 ")
	require.NoError(t, err)
	assert.Equal(t, TimeSlot("14:00-16:00"), got)

	for _, bad := range []string{"", "09:00-10:00", "14:00 - 16:00", "22:00-24:00"} {
		_, err := ParseTimeSlot(bad)
		assert.ErrorIs(t, err, ErrInvalidTimeSlot, bad)
	}
}

func TestTimeSlotsIsACopy(t *testing.T) {
	s := TimeSlots()
	require.Len(t, s, 7)
	s[0] = "bogus"
	assert.Equal(t, TimeSlot("10:00-12:00"), TimeSlots()[0])
}

func TestNewUser(t *testing.T) {
	u, err := NewUser("u1", "  alice ", "hash", 20, RoleCustomer, now)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.False(t, u.IsManager())

	ev := u.PullEvents()
	require.Len(t, ev, 1)
	assert.Equal(t, EventUserCreated, ev[0].EventName())
	assert.Empty(t, u.PullEvents())

	_, err = NewUser("u2", "   ", "hash", 20, RoleCustomer, now)
	assert.ErrorIs(t, err, ErrRequired)

	_, err = NewUser("u3", "bob", "hash", -1, RoleCustomer, now)
	assert.ErrorIs(t, err, ErrInvalidAge)

	_, err = NewUser("u4", "bob", "hash", 1, Role("root"), now)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestUserCanWatch(t *testing.T) {
	u := &User{Age: 16}
	assert.True(t, u.CanWatch(AgeRestriction(16)))
	assert.True(t, u.CanWatch(AgeRestriction(0)))
	assert.False(t, u.CanWatch(AgeRestriction(18)))
}

func TestNewMovie(t *testing.T) {
	m, err := NewMovie("m1", " Dune ", 13, now)
	require.NoError(t, err)
	assert.Equal(t, "Dune", m.Name)
	assert.Equal(t, 13, m.AgeRestriction.Int())

	_, err = NewMovie("m2", "", 0, now)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewMovie("m3", "x", -1, now)
	assert.ErrorIs(t, err, ErrInvalidAgeRestriction)
}

func TestMovieAddSession(t *testing.T) {
	m, err := NewMovie("m1", "Dune", 0, now)
	require.NoError(t, err)
	m.PullEvents()

	s1, err := NewSession("s1", "m1", now, "10:00-12:00", 1, 50)
	require.NoError(t, err)
	require.NoError(t, m.AddSession(s1, now))

	// same day different hour of the day still collides
	s2, err := NewSession("s2", "m1", now.Add(5*time.Hour), "10:00-12:00", 1, 50)
	require.NoError(t, err)
	assert.ErrorIs(t, m.AddSession(s2, now), ErrRoomConflict)

	s3, err := NewSession("s3", "m1", now, "10:00-12:00", 2, 50)
	require.NoError(t, err)
	require.NoError(t, m.AddSession(s3, now))

	foreign, err := NewSession("s4", "other", now, "12:00-14:00", 1, 50)
	require.NoError(t, err)
	assert.ErrorIs(t, m.AddSession(foreign, now), ErrForeignSession)

	assert.Len(t, m.Sessions, 2)
	assert.Same(t, s3, m.Session("s3"))
	assert.Nil(t, m.Session("missing"))

	ev := m.PullEvents()
	require.Len(t, ev, 2)
	created, ok := ev[0].(SessionCreated)
	require.True(t, ok)
	assert.Equal(t, "2026-03-14", created.Date)
}

func TestMovieCloneIsDeep(t *testing.T) {
	m, _ := NewMovie("m1", "Dune", 0, now)
	s, _ := NewSession("s1", "m1", now, "10:00-12:00", 1, 5)
	require.NoError(t, m.AddSession(s, now))

	c := m.Clone()
	c.Sessions[0].BookedSeats = 3
	assert.Equal(t, 0, m.Sessions[0].BookedSeats)
	assert.Empty(t, c.PullEvents())
}

func TestNewSessionValidation(t *testing.T) {
	cases := []struct {
		name  string
		slot  string
		room  int
		seats int
		date  time.Time
		want  error
	}{
		{"bad slot", "9-11", 1, 10, now, ErrInvalidTimeSlot},
		{"zero room", "10:00-12:00", 0, 10, now, ErrOutOfRange},
		{"zero seats", "10:00-12:00", 1, 0, now, ErrOutOfRange},
		{"no date", "10:00-12:00", 1, 10, time.Time{}, ErrRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSession("s", "m", tc.date, tc.slot, tc.room, tc.seats)
			assert.ErrorIs(t, err, ErrValidation)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestSessionBookSeats(t *testing.T) {
	s, err := NewSession("s1", "m1", now, "10:00-12:00", 1, 2)
	require.NoError(t, err)

	require.NoError(t, s.BookSeats(1))
	require.NoError(t, s.BookSeats(1))
	assert.Equal(t, 0, s.RemainingSeats())

	err = s.BookSeats(1)
	var capErr *CapacityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, 2, capErr.Booked)
	assert.ErrorIs(t, err, ErrInsufficientCapacity)
	assert.Equal(t, 2, s.BookedSeats)

	assert.Error(t, s.BookSeats(0))

	s.ReleaseSeats(5)
	assert.Equal(t, 0, s.BookedSeats)
}

func TestParseSessionDate(t *testing.T) {
	d, err := ParseSessionDate("2026-05-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseSessionDate("2026-05-01T18:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), d)

	// late evening in New York is already the next day in UTC
	d, err = ParseSessionDate("2024-12-25T23:00:00-05:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 12, 26, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseSessionDate("2024-12-26T01:00:00+03:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseSessionDate("01/05/2026")
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestTicketUseOnce(t *testing.T) {
	tk := NewTicket("t1", "u1", "m1", "s1", now)
	assert.True(t, tk.BelongsTo("u1"))
	assert.False(t, tk.BelongsTo("u2"))

	later := now.Add(time.Hour)
	require.NoError(t, tk.Use(later))
	assert.True(t, tk.Used)
	require.NotNil(t, tk.UsedDate)
	assert.Equal(t, later, *tk.UsedDate)

	err := tk.Use(later.Add(time.Minute))
	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, ErrAlreadyUsed)
	assert.Equal(t, later, *tk.UsedDate)

	names := []string{}
	for _, e := range tk.PullEvents() {
		names = append(names, e.EventName())
	}
	assert.Equal(t, []string{EventTicketCreated, EventTicketUsed}, names)
}

func TestErrorKinds(t *testing.T) {
	assert.ErrorIs(t, NewNotFound("movie", "x"), ErrNotFound)
	assert.EqualError(t, NewNotFound("movie", "x"), "movie with id x not found")
	assert.ErrorIs(t, NewForbidden(ErrAgeRestricted), ErrForbidden)
	assert.ErrorIs(t, NewForbidden(ErrAgeRestricted), ErrAgeRestricted)

	bulk := &BulkPartialFailure{Failed: []BulkItemError{{Index: 1}, {Index: 3}}}
	assert.ErrorIs(t, bulk, ErrBulkPartialFailure)
	assert.Contains(t, bulk.Error(), "1,3")

	c := &ConflictError{Cause: ErrRoomConflict}
	assert.Equal(t, ErrRoomConflict.Error(), c.Error())
}

func intp(v int) *int { return &v }

func TestFilterNormalize(t *testing.T) {
	f, err := MovieFilter{Name: " du "}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, SortByCreatedAt, f.SortBy)
	assert.Equal(t, SortAsc, f.SortOrder)
	assert.Equal(t, "du", f.Name)

	f, err = MovieFilter{SortBy: "AgeRestriction", SortOrder: "desc"}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, SortByAgeRestriction, f.SortBy)
	assert.Equal(t, SortDesc, f.SortOrder)

	_, err = MovieFilter{SortBy: "rating"}.Normalize()
	assert.ErrorIs(t, err, ErrValidation)
	_, err = MovieFilter{SortOrder: "up"}.Normalize()
	assert.ErrorIs(t, err, ErrValidation)
	_, err = MovieFilter{MinAge: intp(-1)}.Normalize()
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestFilterClampAndMatch(t *testing.T) {
	f := MovieFilter{}.ClampMaxAge(12)
	require.NotNil(t, f.MaxAge)
	assert.Equal(t, 12, *f.MaxAge)

	assert.Equal(t, 12, *MovieFilter{MaxAge: intp(18)}.ClampMaxAge(12).MaxAge)
	assert.Equal(t, 6, *MovieFilter{MaxAge: intp(6)}.ClampMaxAge(12).MaxAge)

	m := &Movie{Name: "The Dune Saga", AgeRestriction: 13}
	assert.True(t, MovieFilter{Name: "dune"}.Matches(m))
	assert.False(t, MovieFilter{Name: "alien"}.Matches(m))
	assert.True(t, MovieFilter{MinAge: intp(13), MaxAge: intp(13)}.Matches(m))
	assert.False(t, MovieFilter{MaxAge: intp(12)}.Matches(m))
	assert.False(t, MovieFilter{MinAge: intp(14)}.Matches(m))
}
