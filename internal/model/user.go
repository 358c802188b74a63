package model

import (
	"strings"
	"time"
)

// Role is the closed set of account roles. Values are canonical lowercase.
type Role string

const (
	RoleManager  Role = "manager"
	RoleCustomer Role = "customer"
)

// ParseRole accepts any casing of "manager" or "customer".
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(RoleManager):
		return RoleManager, nil
	case string(RoleCustomer):
		return RoleCustomer, nil
	}
	return "", &ValidationError{Field: "role", Reason: "invalid role: " + s, Cause: ErrInvalidRole}
}

func (r Role) String() string { return string(r) }

// User mirrors the users table. Role and age never change after registration.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Age          int
	Role         Role
	CreatedAt    time.Time

	outbox
}

// NewUser validates registration data and records UserCreated.
func NewUser(id, username, passwordHash string, age int, role Role, now time.Time) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid("username", ErrRequired)
	}
	if age < 0 {
		return nil, invalid("age", ErrInvalidAge)
	}
	if role != RoleManager && role != RoleCustomer {
		return nil, invalid("role", ErrInvalidRole)
	}
	u := &User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		Age:          age,
		Role:         role,
		CreatedAt:    now,
	}
	u.record(UserCreated{UserID: id, Username: username, Role: role, Age: age, At: now})
	return u, nil
}

func (u *User) IsManager() bool { return u.Role == RoleManager }

// CanWatch reports whether the user is old enough for the restriction.
func (u *User) CanWatch(r AgeRestriction) bool { return r.Allows(u.Age) }

// Principal returns the authenticated identity carried in access tokens.
func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Username: u.Username, Role: u.Role, Age: u.Age}
}

// Principal is the caller identity resolved from a verified access token.
type Principal struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Age      int    `json:"age"`
}

func (p Principal) IsManager() bool { return p.Role == RoleManager }
