// Package dto holds the JSON shapes of the HTTP API.
package dto

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=72"`
	Age      *int   `json:"age" validate:"required,gte=0"`
	Role     string `json:"role" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CreateMovieRequest leaves the age range to the domain so a negative
// value reports InvalidAgeRestriction.
type CreateMovieRequest struct {
	Name           string `json:"name" validate:"required,max=255"`
	AgeRestriction int    `json:"age_restriction"`
}

type UpdateMovieRequest struct {
	Name           *string `json:"name" validate:"omitempty,max=255"`
	AgeRestriction *int    `json:"age_restriction"`
}

// BulkCreateMoviesRequest is validated as a whole only; per item failures
// come back in the bulk response.
type BulkCreateMoviesRequest struct {
	Movies []CreateMovieRequest `json:"movies" validate:"required,min=1"`
}

type BulkDeleteMoviesRequest struct {
	MovieIDs []string `json:"movie_ids" validate:"required,min=1,dive,required"`
}

type AddSessionRequest struct {
	Date           string `json:"date" validate:"required"`
	TimeSlot       string `json:"time_slot" validate:"required"`
	RoomNumber     int    `json:"room_number"`
	AvailableSeats int    `json:"available_seats"`
}

type BuyTicketRequest struct {
	MovieID   string `json:"movie_id" validate:"required"`
	SessionID string `json:"session_id" validate:"required"`
}
