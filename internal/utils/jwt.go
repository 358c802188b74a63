package utils // package utils provides helpers for password hashing and token creation

import (
	"errors"
	"fmt"
	"time" // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/service/ports"
)

// ErrInvalidToken is returned for tokens that fail signature, expiry or
// claim checks.
var ErrInvalidToken = errors.New("invalid token")

// NewAccessToken builds and signs an HS256 JWT for a principal.  The JWT
// carries the standard subject (sub), expiration (exp) and issued at (iat)
// claims plus username, role and age so that handlers can authorize without
// a database round trip.
func NewAccessToken(secret string, p model.Principal, ttl time.Duration) (ports.AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":      p.ID,
		"username": p.Username,
		"role":     p.Role.String(),
		"age":      p.Age,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return ports.AccessToken{}, err
	}
	return ports.AccessToken{Token: signed, ExpiresAt: exp}, nil
}

// ParseAccessToken verifies raw with the HS256 secret and rebuilds the
// principal from its claims.
func ParseAccessToken(secret, raw string) (model.Principal, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// reject anything that is not HMAC signed
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return model.Principal{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return model.Principal{}, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	username, _ := claims["username"].(string)
	roleRaw, _ := claims["role"].(string)
	// numbers decode from JSON as float64
	age, ok := claims["age"].(float64)
	if sub == "" || !ok {
		return model.Principal{}, ErrInvalidToken
	}
	role, err := model.ParseRole(roleRaw)
	if err != nil {
		return model.Principal{}, ErrInvalidToken
	}
	return model.Principal{ID: sub, Username: username, Role: role, Age: int(age)}, nil
}

// JWTIssuer implements the TokenIssuer port with a shared secret.
type JWTIssuer struct {
	secret string
	ttl    time.Duration
}

func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: secret, ttl: ttl}
}

func (j *JWTIssuer) Issue(p model.Principal) (ports.AccessToken, error) {
	return NewAccessToken(j.secret, p, j.ttl)
}

func (j *JWTIssuer) Verify(token string) (model.Principal, error) {
	return ParseAccessToken(j.secret, token)
}
