package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/handler/dto"
	"github.com/iliyamo/cinema-booking/internal/notification"
	"github.com/iliyamo/cinema-booking/internal/repository/memory"
	"github.com/iliyamo/cinema-booking/internal/service"
	"github.com/iliyamo/cinema-booking/internal/utils"
)

func setupRouter(t *testing.T) *echo.Echo {
	t.Helper()
	log := zap.NewNop()
	users := memory.NewUserStore()
	movies := memory.NewMovieStore()
	tickets := memory.NewTicketStore()
	events := &notification.Recorder{}
	issuer := utils.NewJWTIssuer("router-test", time.Hour)

	authSvc := service.NewAuthService(users, utils.NewBcryptHasher(bcrypt.MinCost), issuer, nil, events, log)
	movieSvc := service.NewMovieService(movies, tickets, events, log)
	ticketSvc := service.NewTicketService(tickets, movies, users, events, log)

	return New(Deps{
		Log:      log,
		Verifier: issuer,
		Auth:     handler.NewAuthHandler(authSvc, log),
		Users:    handler.NewUserHandler(service.NewUserService(users), log),
		Movies:   handler.NewMovieHandler(movieSvc, ticketSvc, log),
		Tickets:  handler.NewTicketHandler(ticketSvc, log),
	})
}

func do(t *testing.T, e *echo.Echo, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// signup registers a user and returns a fresh access token.
func signup(t *testing.T, e *echo.Echo, username string, age int, role string) string {
	t.Helper()
	rec := do(t, e, http.MethodPost, "/v1/auth/register", "", echo.Map{
		"username": username, "password": "pw-" + username, "age": age, "role": role,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, e, http.MethodPost, "/v1/auth/login", "", echo.Map{"username": username, "password": "pw-" + username})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[dto.LoginResponse](t, rec).AccessToken
}

func TestHealthz(t *testing.T) {
	e := setupRouter(t)
	rec := do(t, e, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthFlow(t *testing.T) {
	e := setupRouter(t)
	token := signup(t, e, "alice", 30, "customer")

	rec := do(t, e, http.MethodGet, "/v1/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[dto.UserResponse](t, rec)
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, "customer", me.Role)

	rec = do(t, e, http.MethodPost, "/v1/auth/register", "", echo.Map{
		"username": "Alice", "password": "x", "age": 1, "role": "customer",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	unknown := do(t, e, http.MethodPost, "/v1/auth/login", "", echo.Map{"username": "nobody", "password": "x"})
	wrong := do(t, e, http.MethodPost, "/v1/auth/login", "", echo.Map{"username": "alice", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.JSONEq(t, unknown.Body.String(), wrong.Body.String())

	rec = do(t, e, http.MethodPost, "/v1/auth/register", "", echo.Map{"username": "bob", "age": 1, "role": "customer"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "details")

	rec = do(t, e, http.MethodPost, "/v1/auth/register", "", echo.Map{"username": "noage", "password": "pw", "role": "customer"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Age"`)

	rec = do(t, e, http.MethodPost, "/v1/auth/register", "", echo.Map{"username": "minus", "password": "pw", "age": -1, "role": "customer"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodPost, "/v1/auth/register", "", echo.Map{"username": "baby", "password": "pw", "age": 0, "role": "customer"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 0, decode[dto.UserResponse](t, rec).Age)

	assert.Equal(t, http.StatusUnauthorized, do(t, e, http.MethodGet, "/v1/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, e, http.MethodGet, "/v1/me", "garbage", nil).Code)
}

func TestManagerOnlyRoutes(t *testing.T) {
	e := setupRouter(t)
	customer := signup(t, e, "carl", 30, "customer")
	manager := signup(t, e, "mona", 40, "manager")

	rec := do(t, e, http.MethodPost, "/v1/movies", customer, echo.Map{"name": "Nope"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, e, http.MethodPost, "/v1/movies", manager, echo.Map{"name": "Yes", "age_restriction": 7})
	require.Equal(t, http.StatusCreated, rec.Code)
	m := decode[dto.MovieResponse](t, rec)
	assert.Equal(t, 7, m.AgeRestriction)
	assert.Empty(t, m.Sessions)

	rec = do(t, e, http.MethodPost, "/v1/movies", manager, echo.Map{"name": "Bad", "age_restriction": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	me := decode[dto.UserResponse](t, do(t, e, http.MethodGet, "/v1/me", customer, nil))
	assert.Equal(t, http.StatusForbidden, do(t, e, http.MethodGet, "/v1/users/"+me.ID, customer, nil).Code)
	assert.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/v1/users/"+me.ID, manager, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, e, http.MethodGet, "/v1/users/missing", manager, nil).Code)
}

func TestMovieLifecycle(t *testing.T) {
	e := setupRouter(t)
	manager := signup(t, e, "mgr", 40, "manager")
	kid := signup(t, e, "kid", 10, "customer")

	rec := do(t, e, http.MethodPost, "/v1/movies", manager, echo.Map{"name": "Family", "age_restriction": 0})
	require.Equal(t, http.StatusCreated, rec.Code)
	family := decode[dto.MovieResponse](t, rec)
	rec = do(t, e, http.MethodPost, "/v1/movies", manager, echo.Map{"name": "Slasher", "age_restriction": 18})
	require.Equal(t, http.StatusCreated, rec.Code)
	slasher := decode[dto.MovieResponse](t, rec)

	session := echo.Map{"date": "2024-12-25", "time_slot": "14:00-16:00", "room_number": 1, "available_seats": 100}
	rec = do(t, e, http.MethodPost, "/v1/movies/"+family.ID+"/sessions", manager, session)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	withSession := decode[dto.MovieResponse](t, rec)
	require.Len(t, withSession.Sessions, 1)
	assert.Equal(t, "2024-12-25", withSession.Sessions[0].Date)
	assert.Equal(t, 100, withSession.Sessions[0].RemainingSeats)

	rec = do(t, e, http.MethodPost, "/v1/movies/"+slasher.ID+"/sessions", manager, session)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, e, http.MethodGet, "/v1/movies?sort_by=name", kid, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	visible := decode[[]dto.MovieResponse](t, rec)
	require.Len(t, visible, 1)
	assert.Equal(t, "Family", visible[0].Name)

	assert.Equal(t, http.StatusForbidden, do(t, e, http.MethodGet, "/v1/movies/"+slasher.ID, kid, nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, e, http.MethodGet, "/v1/movies?min_age=abc", kid, nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, e, http.MethodGet, "/v1/movies?sort_order=sideways", kid, nil).Code)

	rec = do(t, e, http.MethodPut, "/v1/movies/"+slasher.ID, manager, echo.Map{"name": "Slasher II"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 18, decode[dto.MovieResponse](t, rec).AgeRestriction)

	assert.Equal(t, http.StatusNoContent, do(t, e, http.MethodDelete, "/v1/movies/"+slasher.ID, manager, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, e, http.MethodGet, "/v1/movies/"+slasher.ID, manager, nil).Code)
}

func TestBulkEndpoints(t *testing.T) {
	e := setupRouter(t)
	manager := signup(t, e, "bulk", 40, "manager")

	rec := do(t, e, http.MethodPost, "/v1/movies/bulk", manager, echo.Map{"movies": []echo.Map{
		{"name": "A", "age_restriction": 0},
		{"name": "B", "age_restriction": -1},
	}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	partial := decode[dto.BulkCreateResponse](t, rec)
	require.Len(t, partial.Created, 1)
	require.Len(t, partial.Failed, 1)
	assert.Equal(t, 1, partial.Failed[0].Index)

	rec = do(t, e, http.MethodDelete, "/v1/movies/bulk", manager, echo.Map{"movie_ids": []string{partial.Created[0].ID, "unknown"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/v1/movies/"+partial.Created[0].ID, manager, nil).Code)

	rec = do(t, e, http.MethodDelete, "/v1/movies/bulk", manager, echo.Map{"movie_ids": []string{partial.Created[0].ID}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{partial.Created[0].ID}, decode[dto.BulkDeleteResponse](t, rec).Deleted)

	rec = do(t, e, http.MethodPost, "/v1/movies/bulk", manager, echo.Map{"movies": []echo.Map{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTicketEndpoints(t *testing.T) {
	e := setupRouter(t)
	manager := signup(t, e, "boss", 40, "manager")
	buyer := signup(t, e, "buyer", 25, "customer")
	other := signup(t, e, "other", 25, "customer")

	rec := do(t, e, http.MethodPost, "/v1/movies", manager, echo.Map{"name": "Solo", "age_restriction": 0})
	require.Equal(t, http.StatusCreated, rec.Code)
	movie := decode[dto.MovieResponse](t, rec)
	rec = do(t, e, http.MethodPost, "/v1/movies/"+movie.ID+"/sessions", manager, echo.Map{
		"date": "2025-01-01", "time_slot": "20:00-22:00", "room_number": 3, "available_seats": 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	sessionID := decode[dto.MovieResponse](t, rec).Sessions[0].ID
	buy := echo.Map{"movie_id": movie.ID, "session_id": sessionID}

	rec = do(t, e, http.MethodPost, "/v1/tickets/buy", buyer, buy)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ticket := decode[dto.TicketResponse](t, rec)
	assert.False(t, ticket.Used)

	assert.Equal(t, http.StatusConflict, do(t, e, http.MethodPost, "/v1/tickets/buy", buyer, buy).Code)
	assert.Equal(t, http.StatusConflict, do(t, e, http.MethodPost, "/v1/tickets/buy", other, buy).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, e, http.MethodPost, "/v1/tickets/buy", other, echo.Map{}).Code)

	rec = do(t, e, http.MethodGet, "/v1/sessions/"+sessionID+"/tickets/count", manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[dto.CountResponse](t, rec).Count)
	assert.Equal(t, http.StatusForbidden, do(t, e, http.MethodGet, "/v1/sessions/"+sessionID+"/tickets/count", buyer, nil).Code)

	assert.Equal(t, http.StatusForbidden, do(t, e, http.MethodGet, "/v1/tickets/"+ticket.ID, other, nil).Code)
	assert.Equal(t, http.StatusOK, do(t, e, http.MethodGet, "/v1/tickets/"+ticket.ID, manager, nil).Code)

	rec = do(t, e, http.MethodGet, "/v1/tickets/"+ticket.ID+"/qr", buyer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))

	assert.Equal(t, http.StatusForbidden, do(t, e, http.MethodPost, "/v1/tickets/"+ticket.ID+"/use", other, nil).Code)
	rec = do(t, e, http.MethodPost, "/v1/tickets/"+ticket.ID+"/use", buyer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[dto.TicketResponse](t, rec).Used)
	assert.Equal(t, http.StatusConflict, do(t, e, http.MethodPost, "/v1/tickets/"+ticket.ID+"/use", buyer, nil).Code)
	assert.Equal(t, http.StatusConflict, do(t, e, http.MethodGet, "/v1/tickets/"+ticket.ID+"/qr", buyer, nil).Code)

	history := decode[[]dto.TicketResponse](t, do(t, e, http.MethodGet, "/v1/tickets/history", buyer, nil))
	require.Len(t, history, 1)
	assert.Equal(t, ticket.ID, history[0].ID)
	assert.Empty(t, decode[[]dto.TicketResponse](t, do(t, e, http.MethodGet, "/v1/tickets/unused", buyer, nil)))
	assert.Len(t, decode[[]dto.TicketResponse](t, do(t, e, http.MethodGet, "/v1/tickets", buyer, nil)), 1)

	// tickets block deleting the movie
	assert.Equal(t, http.StatusConflict, do(t, e, http.MethodDelete, "/v1/movies/"+movie.ID, manager, nil).Code)
}
