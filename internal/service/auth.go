package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/service/ports"
)

// DefaultLoginAlertThreshold is the number of failures per username and
// address after which every further failure is logged as an error.
const DefaultLoginAlertThreshold = 5

type RegisterInput struct {
	Username string
	Password string
	Age      int
	Role     string
}

type LoginInput struct {
	Username  string
	Password  string
	IPAddress string
}

type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *model.User
}

type AuthService struct {
	users    ports.UserRepo
	hasher   ports.PasswordHasher
	tokens   ports.TokenIssuer
	limiter  ports.LoginLimiter
	notifier ports.EventNotifier
	log      *zap.Logger

	alertThreshold int
	dummyHash      string
	now            func() time.Time
	newID          func() string
}

func NewAuthService(
	users ports.UserRepo,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	limiter ports.LoginLimiter,
	notifier ports.EventNotifier,
	log *zap.Logger,
) *AuthService {
	s := &AuthService{
		users:          users,
		hasher:         hasher,
		tokens:         tokens,
		limiter:        limiter,
		notifier:       notifier,
		log:            log,
		alertThreshold: DefaultLoginAlertThreshold,
		now:            func() time.Time { return time.Now().UTC() },
		newID:          uuid.NewString,
	}
	// Unknown usernames are verified against this hash so both failure paths
	// cost one bcrypt comparison.
	if h, err := hasher.Hash(uuid.NewString()); err == nil {
		s.dummyHash = h
	} else {
		log.Warn("dummy password hash unavailable", zap.Error(err))
	}
	return s
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, model.NewValidationError("username", "username is required", model.ErrRequired)
	}
	if in.Password == "" {
		return nil, model.NewValidationError("password", "password is required", model.ErrRequired)
	}
	if in.Age < 0 {
		return nil, model.NewValidationError("age", model.ErrInvalidAge.Error(), model.ErrInvalidAge)
	}
	role, err := model.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		return nil, model.NewConflict(model.ErrDuplicateUsername)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := model.NewUser(s.newID(), username, hash, in.Age, role, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		if errors.Is(err, model.ErrDuplicateUsername) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", user.Role.String()),
	)
	notify(ctx, s.notifier, user.PullEvents())
	return user, nil
}

// Login verifies credentials and issues an access token. Unknown users and
// wrong passwords fail identically with model.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	key := limiterKey(in.Username, in.IPAddress)
	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, key)
		if err != nil {
			s.log.Warn("login limiter unavailable", zap.Error(err))
		} else if !ok {
			return nil, model.ErrTooManyAttempts
		}
	}

	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if user == nil {
		s.hasher.Verify(in.Password, s.dummyHash)
		return nil, s.loginFailed(ctx, key, in)
	}
	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		return nil, s.loginFailed(ctx, key, in)
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, key); err != nil {
			s.log.Warn("login limiter reset failed", zap.Error(err))
		}
	}

	tok, err := s.tokens.Issue(user.Principal())
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{AccessToken: tok.Token, ExpiresAt: tok.ExpiresAt, User: user}, nil
}

func (s *AuthService) loginFailed(ctx context.Context, key string, in LoginInput) error {
	attempts := 0
	if s.limiter != nil {
		n, err := s.limiter.Fail(ctx, key)
		if err != nil {
			s.log.Warn("login limiter unavailable", zap.Error(err))
		}
		attempts = n
	}

	fields := []zap.Field{
		zap.String("username", in.Username),
		zap.String("ip", in.IPAddress),
		zap.Int("attempts", attempts),
	}
	if attempts > s.alertThreshold {
		s.log.Error("multiple failed login attempts", fields...)
	} else {
		s.log.Warn("failed login attempt", fields...)
	}

	notify(ctx, s.notifier, []model.Event{model.LoginFailed{
		Username:  in.Username,
		IPAddress: in.IPAddress,
		At:        s.now(),
	}})
	return model.ErrInvalidCredentials
}

func limiterKey(username, ip string) string {
	if ip == "" {
		ip = "unknown"
	}
	return strings.ToLower(strings.TrimSpace(username)) + ":" + ip
}
