package ports

import "context"

// LoginLimiter tracks failed logins per key (username and source address).
type LoginLimiter interface {
	// Allow reports whether another attempt is permitted for key.
	Allow(ctx context.Context, key string) (bool, error)
	// Fail records a failed attempt and returns the failures in the window.
	Fail(ctx context.Context, key string) (int, error)
	// Reset forgets the key after a successful login.
	Reset(ctx context.Context, key string) error
}
