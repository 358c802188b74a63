package ports

import (
	"time"

	"github.com/iliyamo/cinema-booking/internal/model"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// AccessToken is a signed token and its expiry.
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
}

type TokenIssuer interface {
	Issue(p model.Principal) (AccessToken, error)
	Verify(token string) (model.Principal, error)
}
