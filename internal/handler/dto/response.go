package dto

import (
	"fmt"
	"time"

	"github.com/jinzhu/copier"

	"github.com/iliyamo/cinema-booking/internal/model"
)

type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Age       int       `json:"age"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}

type SessionResponse struct {
	ID             string `json:"id"`
	MovieID        string `json:"movie_id"`
	Date           string `json:"date" copier:"-"`
	TimeSlot       string `json:"time_slot"`
	RoomNumber     int    `json:"room_number"`
	AvailableSeats int    `json:"available_seats"`
	BookedSeats    int    `json:"booked_seats"`
	RemainingSeats int    `json:"remaining_seats" copier:"-"`
}

type MovieResponse struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	AgeRestriction int               `json:"age_restriction"`
	CreatedAt      time.Time         `json:"created_at"`
	Sessions       []SessionResponse `json:"sessions" copier:"-"`
}

type TicketResponse struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	MovieID      string     `json:"movie_id"`
	SessionID    string     `json:"session_id"`
	PurchaseDate time.Time  `json:"purchase_date"`
	Used         bool       `json:"used"`
	UsedDate     *time.Time `json:"used_date,omitempty"`
}

type BulkItemResponse struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type BulkCreateResponse struct {
	Created []MovieResponse    `json:"created"`
	Failed  []BulkItemResponse `json:"failed,omitempty"`
}

type BulkDeleteResponse struct {
	Deleted []string `json:"deleted"`
}

type CountResponse struct {
	SessionID string `json:"session_id"`
	Count     int    `json:"count"`
}

func NewUser(u *model.User) (UserResponse, error) {
	var out UserResponse
	if err := copier.Copy(&out, u); err != nil {
		return out, fmt.Errorf("map user: %w", err)
	}
	return out, nil
}

func NewSession(s *model.Session) (SessionResponse, error) {
	var out SessionResponse
	if err := copier.Copy(&out, s); err != nil {
		return out, fmt.Errorf("map session: %w", err)
	}
	out.Date = s.Date.Format(model.DateLayout)
	out.RemainingSeats = s.RemainingSeats()
	return out, nil
}

func NewMovie(m *model.Movie) (MovieResponse, error) {
	var out MovieResponse
	if err := copier.Copy(&out, m); err != nil {
		return out, fmt.Errorf("map movie: %w", err)
	}
	out.Sessions = make([]SessionResponse, 0, len(m.Sessions))
	for _, s := range m.Sessions {
		sr, err := NewSession(s)
		if err != nil {
			return out, err
		}
		out.Sessions = append(out.Sessions, sr)
	}
	return out, nil
}

func NewMovies(ms []*model.Movie) ([]MovieResponse, error) {
	out := make([]MovieResponse, 0, len(ms))
	for _, m := range ms {
		mr, err := NewMovie(m)
		if err != nil {
			return nil, err
		}
		out = append(out, mr)
	}
	return out, nil
}

func NewTicket(t *model.Ticket) (TicketResponse, error) {
	var out TicketResponse
	if err := copier.Copy(&out, t); err != nil {
		return out, fmt.Errorf("map ticket: %w", err)
	}
	return out, nil
}

func NewTickets(ts []*model.Ticket) ([]TicketResponse, error) {
	out := make([]TicketResponse, 0, len(ts))
	for _, t := range ts {
		tr, err := NewTicket(t)
		if err != nil {
			return nil, err
		}
		out = append(out, tr)
	}
	return out, nil
}

func NewBulkFailures(items []model.BulkItemError) []BulkItemResponse {
	out := make([]BulkItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, BulkItemResponse{Index: it.Index, Error: it.Err.Error()})
	}
	return out
}
