package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"penalty-console/internal/domain"
	"penalty-console/internal/ports"
)

const DefaultSessionTTL = 8 * time.Hour

type AuthService struct {
	gateway    ports.AuthGateway
	sessions   ports.SessionRepository
	workspaces *Workspaces
	tokens     ports.TokenInspector
	logger     ports.Logger
	ttl        time.Duration
	now        func() time.Time
	onExpire   func()
}

func NewAuthService(gateway ports.AuthGateway, sessions ports.SessionRepository, workspaces *Workspaces, tokens ports.TokenInspector, logger ports.Logger, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &AuthService{
		gateway:    gateway,
		sessions:   sessions,
		workspaces: workspaces,
		tokens:     tokens,
		logger:     logger,
		ttl:        ttl,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// OnExpire registers a callback run whenever a session is ended by the API rejecting its
// token.
func (s *AuthService) OnExpire(fn func()) {
	s.onExpire = fn
}

// Login exchanges credentials for an API token and opens a session with its workspace.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.Session{}, domain.ErrInvalidInput
	}
	s.sweep(ctx)
	res := s.gateway.Login(ctx, username, password)
	if !res.OK() {
		s.logger.Warn(ctx, "login rejected", "username", username, "error", res.Err())
		return domain.Session{}, res.Err()
	}
	creds := res.Data()
	now := s.now()
	session := domain.Session{
		ID:          uuid.NewString(),
		Token:       creds.Token,
		Permissions: creds.Permissions,
		DisplayName: creds.Name,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}
	subject := ""
	if s.tokens != nil {
		if exp, ok := s.tokens.ExpiresAt(creds.Token); ok && exp.Before(session.ExpiresAt) {
			session.ExpiresAt = exp.UTC()
		}
		subject = s.tokens.Subject(creds.Token)
	}
	if session.Permissions == nil {
		session.Permissions = []string{}
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return domain.Session{}, err
	}
	s.workspaces.Open(session)
	s.logger.Info(ctx, "session opened", "session_id", session.ID, "subject", subject, "permissions", len(session.Permissions))
	return session, nil
}

// Resume returns the workspace of a live session. A session that is unknown or past its
// expiry yields ErrUnauthorized.
func (s *AuthService) Resume(ctx context.Context, id string) (*Workspace, error) {
	if id == "" {
		return nil, domain.ErrUnauthorized
	}
	if ws, ok := s.workspaces.Get(id); ok {
		if ws.Session().Expired(s.now()) {
			s.end(ctx, id)
			return nil, domain.ErrUnauthorized
		}
		return ws, nil
	}
	session, err := s.sessions.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		s.end(ctx, id)
		return nil, domain.ErrUnauthorized
	}
	return s.workspaces.Open(session), nil
}

func (s *AuthService) Logout(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	s.workspaces.Drop(id)
	if err := s.sessions.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	s.logger.Info(ctx, "session closed", "session_id", id)
	return nil
}

// Expire ends a session after the API answered 401 for it. Pending work in its workspace
// is dropped with it.
func (s *AuthService) Expire(ctx context.Context, id string) {
	if id == "" {
		return
	}
	s.logger.Warn(ctx, "session expired by api", "session_id", id)
	s.end(ctx, id)
	if s.onExpire != nil {
		s.onExpire()
	}
}

func (s *AuthService) end(ctx context.Context, id string) {
	s.workspaces.Drop(id)
	if err := s.sessions.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.Error(ctx, "session delete failed", "session_id", id, "error", err)
	}
}

// expiredPurger is implemented by session stores without native expiry.
type expiredPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) int
}

// sweep releases sessions that expired without coming back. Stores with native TTL
// (DynamoDB, Redis) age their records out on their own.
func (s *AuthService) sweep(ctx context.Context) {
	now := s.now()
	dropped := s.workspaces.Sweep(now)
	purged := 0
	if p, ok := s.sessions.(expiredPurger); ok {
		purged = p.PurgeExpired(ctx, now)
	}
	if len(dropped) > 0 || purged > 0 {
		s.logger.Debug(ctx, "expired sessions swept", "workspaces", len(dropped), "sessions", purged)
	}
}

// RefreshPermissions reloads the operator's permissions from the API and persists them
// with the session. ctx must carry the session's token.
func (s *AuthService) RefreshPermissions(ctx context.Context, ws *Workspace) error {
	res := s.gateway.Permissions(ctx)
	if !res.OK() {
		return res.Err()
	}
	tokens := res.Data()
	if tokens == nil {
		tokens = []string{}
	}
	session := ws.replacePermissions(tokens)
	if err := s.persistPermissions(ctx, session); err != nil {
		return err
	}
	s.logger.Info(ctx, "permissions refreshed", "session_id", session.ID, "permissions", len(tokens))
	return nil
}

type permissionUpdater interface {
	UpdatePermissions(ctx context.Context, id string, permissions []string) error
}

func (s *AuthService) persistPermissions(ctx context.Context, session domain.Session) error {
	if u, ok := s.sessions.(permissionUpdater); ok {
		return u.UpdatePermissions(ctx, session.ID, session.Permissions)
	}
	return s.sessions.Save(ctx, session)
}
