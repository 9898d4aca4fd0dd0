package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// SessionRevoker ends sessions before their token expires.
type SessionRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	sessions   SessionRevoker
	dispatcher events.Dispatcher
	logger     *zap.Logger
	tokenMgr   *auth.TokenManager
	bcryptCost int

	dummyOnce sync.Once
	dummyHash string
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Sessions   SessionRevoker
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		sessions:   deps.Sessions,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL()),
		bcryptCost: cfg.BcryptCost,
	}
}

// Register validates and stores a new account. Uniqueness is decided by the
// store in the same insert, never by a prior lookup.
func (s *AuthService) Register(ctx context.Context, username, password string, role domain.Role) (domain.Identity, error) {
	if err := auth.ValidateUsername(username); err != nil {
		return domain.Identity{}, err
	}
	if err := auth.ValidatePassword(password); err != nil {
		return domain.Identity{}, err
	}
	if err := auth.ValidateRole(role); err != nil {
		return domain.Identity{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return domain.Identity{}, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return domain.Identity{}, apperrors.NewDuplicateUsername(username)
		}
		return domain.Identity{}, apperrors.MapError(err)
	}

	identity := user.Identity()
	s.publish(ctx, events.New(events.EventUserRegistered, events.ActorFrom(identity), 0, nil))
	return identity, nil
}

// Authenticate verifies credentials. Unknown usernames and wrong passwords
// produce the same error, and both run a bcrypt comparison.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (domain.Identity, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return domain.Identity{}, apperrors.MapError(err)
	}

	if user == nil {
		_ = auth.ComparePassword(s.dummyPasswordHash(), password)
		s.publish(ctx, events.New(events.EventLoginFailed, events.Actor{Username: username}, 0, nil))
		return domain.Identity{}, apperrors.NewInvalidCredentials()
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.publish(ctx, events.New(events.EventLoginFailed, events.Actor{Username: username}, 0, nil))
		return domain.Identity{}, apperrors.NewInvalidCredentials()
	}

	identity := user.Identity()
	s.publish(ctx, events.New(events.EventLoginSucceeded, events.ActorFrom(identity), 0, nil))
	return identity, nil
}

// Login authenticates and issues a session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.Identity, auth.IssuedToken, error) {
	identity, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return domain.Identity{}, auth.IssuedToken{}, err
	}
	token, err := s.tokenMgr.GenerateToken(identity)
	if err != nil {
		return domain.Identity{}, auth.IssuedToken{}, apperrors.NewInternalError(err)
	}
	return identity, token, nil
}

// Logout revokes the session token carried by principal.
func (s *AuthService) Logout(ctx context.Context, principal *auth.Principal) error {
	if principal == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if s.sessions != nil {
		if err := s.sessions.Revoke(ctx, principal.TokenID, principal.ExpiresAt); err != nil {
			return apperrors.NewInternalError(err)
		}
	}
	s.publish(ctx, events.New(events.EventLogout, events.ActorFrom(principal.Identity), 0, nil))
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := auth.HashPassword("not-a-real-password-0", s.bcryptCost)
		if err != nil {
			s.logger.Error("dummy hash", zap.Error(err))
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	publish(ctx, s.dispatcher, s.logger, event)
}

// publish hands the event to the dispatcher. Handler failures are logged and
// never fail the calling operation.
func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID),
			zap.Error(err))
	}
}
