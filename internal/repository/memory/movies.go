package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// MovieStore keeps movies and their sessions. A single lock covers all
// movies so the room check and seat counters are serialized system wide.
type MovieStore struct {
	mu    sync.RWMutex
	items map[string]*model.Movie
}

func NewMovieStore() *MovieStore {
	return &MovieStore{items: make(map[string]*model.Movie)}
}

// Save stores a copy of m. Sessions that are already stored are kept as
// stored: a save only adds sessions, and booked seat counters only move
// through ReserveSeats and ReleaseSeats.
func (s *MovieStore) Save(_ context.Context, m *model.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range m.Sessions {
		if s.roomTaken(sess) {
			return model.NewConflict(model.ErrRoomConflict)
		}
	}

	c := m.Clone()
	if prev, ok := s.items[m.ID]; ok {
		c.Sessions = mergeSessions(prev.Sessions, c.Sessions)
	}
	s.items[m.ID] = c
	return nil
}

// mergeSessions returns the stored sessions followed by the incoming ones
// that are not stored yet.
func mergeSessions(stored, incoming []*model.Session) []*model.Session {
	out := make([]*model.Session, 0, len(stored)+len(incoming))
	seen := make(map[string]bool, len(stored))
	for _, sess := range stored {
		cp := *sess
		out = append(out, &cp)
		seen[sess.ID] = true
	}
	for _, sess := range incoming {
		if !seen[sess.ID] {
			out = append(out, sess)
		}
	}
	return out
}

// roomTaken reports whether a different session already holds the slot.
func (s *MovieStore) roomTaken(sess *model.Session) bool {
	for _, m := range s.items {
		for _, other := range m.Sessions {
			if other.ID != sess.ID && other.ConflictsWith(sess) {
				return true
			}
		}
	}
	return false
}

func (s *MovieStore) FindByID(_ context.Context, id string) (*model.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	return m.Clone(), nil
}

func (s *MovieStore) FindAll(_ context.Context, f model.MovieFilter) ([]*model.Movie, error) {
	s.mu.RLock()
	out := make([]*model.Movie, 0, len(s.items))
	for _, m := range s.items {
		if f.Matches(m) {
			out = append(out, m.Clone())
		}
	}
	s.mu.RUnlock()

	sortMovies(out, f.SortBy, f.SortOrder)
	return out, nil
}

func (s *MovieStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, id)
	return nil
}

func (s *MovieStore) ExistsByID(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.items[id]
	return ok, nil
}

func (s *MovieStore) CheckRoomAvailable(_ context.Context, date time.Time, slot model.TimeSlot, room int) (bool, error) {
	candidate := &model.Session{Date: model.SessionDay(date.UTC()), TimeSlot: slot, RoomNumber: room}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return !s.roomTaken(candidate), nil
}

func (s *MovieStore) ReserveSeats(_ context.Context, movieID, sessionID string, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(movieID, sessionID)
	if err != nil {
		return err
	}
	return sess.BookSeats(n)
}

func (s *MovieStore) ReleaseSeats(_ context.Context, movieID, sessionID string, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(movieID, sessionID)
	if err != nil {
		return err
	}
	sess.ReleaseSeats(n)
	return nil
}

func (s *MovieStore) session(movieID, sessionID string) (*model.Session, error) {
	m, ok := s.items[movieID]
	if !ok {
		return nil, model.NewNotFound("movie", movieID)
	}
	sess := m.Session(sessionID)
	if sess == nil {
		return nil, model.NewNotFound("session", sessionID)
	}
	return sess, nil
}

func sortMovies(ms []*model.Movie, by model.MovieSortField, order model.SortOrder) {
	less := func(a, b *model.Movie) bool {
		switch by {
		case model.SortByName:
			an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
			if an != bn {
				return an < bn
			}
		case model.SortByAgeRestriction:
			if a.AgeRestriction != b.AgeRestriction {
				return a.AgeRestriction < b.AgeRestriction
			}
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	}
	sort.SliceStable(ms, func(i, j int) bool {
		if order == model.SortDesc {
			return less(ms[j], ms[i])
		}
		return less(ms[i], ms[j])
	})
}
