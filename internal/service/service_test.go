package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/notification"
	"github.com/iliyamo/cinema-booking/internal/repository/memory"
	"github.com/iliyamo/cinema-booking/internal/utils"
)

type fixture struct {
	users   *memory.UserStore
	movies  *memory.MovieStore
	tickets *memory.TicketStore
	events  *notification.Recorder
	limiter *countingLimiter

	auth      *AuthService
	movieSvc  *MovieService
	ticketSvc *TicketService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:   memory.NewUserStore(),
		movies:  memory.NewMovieStore(),
		tickets: memory.NewTicketStore(),
		events:  &notification.Recorder{},
		limiter: newCountingLimiter(3),
	}
	log := zap.NewNop()
	hasher := utils.NewBcryptHasher(bcrypt.MinCost)
	issuer := utils.NewJWTIssuer("test-secret", time.Hour)

	f.auth = NewAuthService(f.users, hasher, issuer, f.limiter, f.events, log)
	f.movieSvc = NewMovieService(f.movies, f.tickets, f.events, log)
	f.ticketSvc = NewTicketService(f.tickets, f.movies, f.users, f.events, log)
	return f
}

func (f *fixture) register(t *testing.T, username string, age int, role string) *model.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(), RegisterInput{
		Username: username, Password: "secret-" + username, Age: age, Role: role,
	})
	require.NoError(t, err)
	return u
}

// screening creates a movie with one session in room 1.
func (f *fixture) screening(t *testing.T, name string, age, seats int) (*model.Movie, *model.Session) {
	t.Helper()
	ctx := context.Background()
	m, err := f.movieSvc.CreateMovie(ctx, CreateMovieInput{Name: name, AgeRestriction: age})
	require.NoError(t, err)
	m, err = f.movieSvc.AddSession(ctx, m.ID, AddSessionInput{
		Date:           time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC),
		TimeSlot:       "14:00-16:00",
		RoomNumber:     len(name) + age,
		AvailableSeats: seats,
	})
	require.NoError(t, err)
	require.Len(t, m.Sessions, 1)
	return m, m.Sessions[0]
}

func (f *fixture) bookedSeats(t *testing.T, movieID, sessionID string) int {
	t.Helper()
	m, err := f.movies.FindByID(context.Background(), movieID)
	require.NoError(t, err)
	require.NotNil(t, m)
	s := m.Session(sessionID)
	require.NotNil(t, s)
	return s.BookedSeats
}

type countingLimiter struct {
	mu    sync.Mutex
	max   int
	fails map[string]int
}

func newCountingLimiter(max int) *countingLimiter {
	return &countingLimiter{max: max, fails: make(map[string]int)}
}

func (l *countingLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fails[key] < l.max, nil
}

func (l *countingLimiter) Fail(_ context.Context, key string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fails[key]++
	return l.fails[key], nil
}

func (l *countingLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.fails, key)
	return nil
}
