package model

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by the services unwraps to exactly one of
// these so the transport layer can pick a status code with errors.Is.
var (
	ErrNotFound             = errors.New("not found")
	ErrValidation           = errors.New("validation error")
	ErrConflict             = errors.New("conflict")
	ErrForbidden            = errors.New("forbidden")
	ErrInsufficientCapacity = errors.New("insufficient capacity")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrBulkPartialFailure   = errors.New("bulk operation partially failed")
)

// Identity
var (
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidAge         = errors.New("age must be a non-negative number")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
)

// Catalog
var (
	ErrInvalidTimeSlot       = errors.New("invalid time slot")
	ErrInvalidDate           = errors.New("invalid date")
	ErrInvalidAgeRestriction = errors.New("age restriction can not be negative")
	ErrRoomConflict          = errors.New("room is already booked for this date and time slot")
	ErrMovieHasTickets       = errors.New("movie has sessions with sold tickets")
	ErrForeignSession        = errors.New("session does not belong to this movie")
	ErrRequired              = errors.New("field is required")
	ErrOutOfRange            = errors.New("value is out of range")
)

// Booking
var (
	ErrAgeRestricted   = errors.New("user does not meet the age requirement")
	ErrDuplicateTicket = errors.New("user already has a ticket for this session")
	ErrAlreadyUsed     = errors.New("ticket has already been used")
	ErrNotTicketOwner  = errors.New("ticket belongs to another user")
	ErrStaleReference  = errors.New("movie session no longer exists")
)

// NotFoundError reports a missing entity by name and id.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
	Cause  error
}

func (e *ValidationError) Error() string {
	if e.Reason == "" && e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Field, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() []error { return kindAndCause(ErrValidation, e.Cause) }

// ConflictError is returned when current state prevents the operation.
type ConflictError struct {
	Reason string
	Cause  error
}

func (e *ConflictError) Error() string {
	if e.Reason == "" && e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Reason
}

func (e *ConflictError) Unwrap() []error { return kindAndCause(ErrConflict, e.Cause) }

// ForbiddenError is returned when the caller may not act on a resource.
type ForbiddenError struct {
	Reason string
	Cause  error
}

func (e *ForbiddenError) Error() string {
	if e.Reason == "" && e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Reason
}

func (e *ForbiddenError) Unwrap() []error { return kindAndCause(ErrForbidden, e.Cause) }

// CapacityError carries the seat counts that caused a booking to be refused.
type CapacityError struct {
	SessionID string
	Available int
	Booked    int
	Requested int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("not enough available seats in session %s: requested %d, remaining %d",
		e.SessionID, e.Requested, e.Available-e.Booked)
}

func (e *CapacityError) Unwrap() error { return ErrInsufficientCapacity }

// BulkItemError is a single failed entry of a bulk request.
type BulkItemError struct {
	Index int
	Err   error
}

// BulkPartialFailure is returned by bulk create when at least one item
// failed. Succeeded holds the movies that were created anyway.
type BulkPartialFailure struct {
	Succeeded []*Movie
	Failed    []BulkItemError
}

func (e *BulkPartialFailure) Error() string {
	idx := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		idx = append(idx, fmt.Sprintf("%d", f.Index))
	}
	return fmt.Sprintf("some movies failed to create (%d ok, failed at index %s)",
		len(e.Succeeded), strings.Join(idx, ","))
}

func (e *BulkPartialFailure) Unwrap() error { return ErrBulkPartialFailure }

func kindAndCause(kind, cause error) []error {
	if cause == nil {
		return []error{kind}
	}
	return []error{kind, cause}
}

// Validation and conflict constructors keep call sites short.

func invalid(field string, cause error) error {
	return &ValidationError{Field: field, Reason: cause.Error(), Cause: cause}
}

func NewValidationError(field, reason string, cause error) error {
	return &ValidationError{Field: field, Reason: reason, Cause: cause}
}

func NewConflict(cause error) error {
	return &ConflictError{Reason: cause.Error(), Cause: cause}
}

func NewForbidden(cause error) error {
	return &ForbiddenError{Reason: cause.Error(), Cause: cause}
}

func NewNotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}
