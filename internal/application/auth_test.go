package application

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"penalty-console/internal/adapters/logger"
	"penalty-console/internal/domain"
	"penalty-console/internal/infrastructure/memory"
	"penalty-console/internal/ports"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newAuthService(gw *authGatewayMock, sessions *sessionRepoMock, tokens ports.TokenInspector) (*AuthService, *Workspaces) {
	ws := NewWorkspaces(testRepos(), logger.Discard())
	svc := NewAuthService(gw, sessions, ws, tokens, logger.Discard(), time.Hour)
	svc.now = func() time.Time { return fixedNow }
	return svc, ws
}

func TestLoginOpensSessionAndWorkspace(t *testing.T) {
	gw := new(authGatewayMock)
	sessions := new(sessionRepoMock)
	svc, workspaces := newAuthService(gw, sessions, tokenStub{})

	gw.On("Login", mock.Anything, "admin", "secret").
		Return(domain.Success(ports.Credentials{Token: "tok", Permissions: []string{domain.PermDoctorView}, Name: "Admin"}, ""))
	sessions.On("Save", mock.Anything, mock.MatchedBy(func(s domain.Session) bool {
		return s.Token == "tok" && s.ID != "" && s.ExpiresAt.Equal(fixedNow.Add(time.Hour))
	})).Return(nil)

	session, err := svc.Login(context.Background(), " admin ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Admin", session.DisplayName)

	ws, ok := workspaces.Get(session.ID)
	require.True(t, ok)
	assert.True(t, ws.Permissions.HasPermission(domain.PermDoctorView))
	assert.False(t, ws.Permissions.HasPermission(domain.PermDoctorDelete))
	sessions.AssertExpectations(t)
}

func TestLoginUsesEarlierTokenExpiry(t *testing.T) {
	gw := new(authGatewayMock)
	sessions := new(sessionRepoMock)
	exp := fixedNow.Add(10 * time.Minute)
	svc, _ := newAuthService(gw, sessions, tokenStub{exp: exp, ok: true})

	gw.On("Login", mock.Anything, "admin", "secret").
		Return(domain.Success(ports.Credentials{Token: "tok"}, ""))
	sessions.On("Save", mock.Anything, mock.Anything).Return(nil)

	session, err := svc.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, exp, session.ExpiresAt)
	assert.NotNil(t, session.Permissions)
}

func TestLoginRejected(t *testing.T) {
	gw := new(authGatewayMock)
	sessions := new(sessionRepoMock)
	svc, workspaces := newAuthService(gw, sessions, nil)

	gw.On("Login", mock.Anything, "admin", "bad").
		Return(domain.Failure[ports.Credentials](&domain.RemoteError{Message: "Credenciales incorrectas"}, ""))

	_, err := svc.Login(context.Background(), "admin", "bad")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRemote))
	assert.Equal(t, "Credenciales incorrectas", err.Error())
	assert.Equal(t, 0, workspaces.Len())
	sessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLoginValidation(t *testing.T) {
	gw := new(authGatewayMock)
	svc, _ := newAuthService(gw, new(sessionRepoMock), nil)

	_, err := svc.Login(context.Background(), "  ", "secret")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	gw.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestResumeUnknownSession(t *testing.T) {
	sessions := new(sessionRepoMock)
	svc, _ := newAuthService(new(authGatewayMock), sessions, nil)
	sessions.On("Get", mock.Anything, "nope").Return(domain.Session{}, domain.ErrNotFound)

	_, err := svc.Resume(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Resume(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestResumeMountsPersistedSession(t *testing.T) {
	sessions := new(sessionRepoMock)
	svc, workspaces := newAuthService(new(authGatewayMock), sessions, nil)
	stored := domain.Session{ID: "s1", Token: "tok", Permissions: []string{domain.PermPenaltyView}, ExpiresAt: fixedNow.Add(time.Minute)}
	sessions.On("Get", mock.Anything, "s1").Return(stored, nil).Once()

	ws, err := svc.Resume(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, ws.Permissions.HasPermission(domain.PermPenaltyView))

	again, err := svc.Resume(context.Background(), "s1")
	require.NoError(t, err)
	assert.Same(t, ws, again)
	assert.Equal(t, 1, workspaces.Len())
	sessions.AssertExpectations(t)
}

func TestResumeExpiredSession(t *testing.T) {
	sessions := new(sessionRepoMock)
	svc, _ := newAuthService(new(authGatewayMock), sessions, nil)
	sessions.On("Get", mock.Anything, "old").Return(domain.Session{ID: "old", ExpiresAt: fixedNow.Add(-time.Second)}, nil)
	sessions.On("Delete", mock.Anything, "old").Return(nil)

	_, err := svc.Resume(context.Background(), "old")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	sessions.AssertCalled(t, "Delete", mock.Anything, "old")
}

func TestExpireDropsWorkspace(t *testing.T) {
	sessions := new(sessionRepoMock)
	svc, workspaces := newAuthService(new(authGatewayMock), sessions, nil)
	workspaces.Open(domain.Session{ID: "s1"})
	sessions.On("Delete", mock.Anything, "s1").Return(nil)

	expired := 0
	svc.OnExpire(func() { expired++ })
	svc.Expire(context.Background(), "s1")

	_, ok := workspaces.Get("s1")
	assert.False(t, ok)
	assert.Equal(t, 1, expired)
	sessions.AssertExpectations(t)
}

func TestLogout(t *testing.T) {
	sessions := new(sessionRepoMock)
	svc, workspaces := newAuthService(new(authGatewayMock), sessions, nil)
	workspaces.Open(domain.Session{ID: "s1"})
	sessions.On("Delete", mock.Anything, "s1").Return(domain.ErrNotFound)

	require.NoError(t, svc.Logout(context.Background(), "s1"))
	assert.Equal(t, 0, workspaces.Len())
	assert.ErrorIs(t, svc.Logout(context.Background(), ""), domain.ErrInvalidInput)
}

func TestRefreshPermissions(t *testing.T) {
	gw := new(authGatewayMock)
	sessions := new(sessionRepoMock)
	svc, workspaces := newAuthService(gw, sessions, nil)
	ws := workspaces.Open(domain.Session{ID: "s1", Permissions: []string{domain.PermDoctorView}})

	gw.On("Permissions", mock.Anything).Return(domain.Success([]string{domain.PermTaskView, domain.PermTaskCreate}, ""))
	sessions.On("Save", mock.Anything, mock.MatchedBy(func(s domain.Session) bool {
		return s.ID == "s1" && len(s.Permissions) == 2
	})).Return(nil)

	require.NoError(t, svc.RefreshPermissions(context.Background(), ws))
	assert.False(t, ws.Permissions.HasPermission(domain.PermDoctorView))
	assert.True(t, ws.Permissions.HasPermissionPrefix("tareas_"))
	assert.ElementsMatch(t, []string{domain.PermTaskView, domain.PermTaskCreate}, ws.Session().Permissions)
	sessions.AssertExpectations(t)
}

func TestRefreshPermissionsFailureKeepsSet(t *testing.T) {
	gw := new(authGatewayMock)
	svc, workspaces := newAuthService(gw, new(sessionRepoMock), nil)
	ws := workspaces.Open(domain.Session{ID: "s1", Permissions: []string{domain.PermDoctorView}})
	gw.On("Permissions", mock.Anything).Return(domain.Failure[[]string](domain.ErrUnauthorized, ""))

	err := svc.RefreshPermissions(context.Background(), ws)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.True(t, ws.Permissions.HasPermission(domain.PermDoctorView))
}

func TestLoginSweepsAbandonedSessions(t *testing.T) {
	gw := new(authGatewayMock)
	gw.On("Login", mock.Anything, "admin", "secret").
		Return(domain.Success(ports.Credentials{Token: "tok"}, ""))
	sessions := memory.NewSessionRepository()
	workspaces := NewWorkspaces(testRepos(), logger.Discard())
	svc := NewAuthService(gw, sessions, workspaces, nil, logger.Discard(), time.Hour)
	now := fixedNow
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	var abandoned []string
	for range 100 {
		session, err := svc.Login(ctx, "admin", "secret")
		require.NoError(t, err)
		abandoned = append(abandoned, session.ID)
	}
	require.Equal(t, 100, workspaces.Len())

	now = now.Add(48 * time.Hour)
	fresh, err := svc.Login(ctx, "admin", "secret")
	require.NoError(t, err)

	assert.Equal(t, 1, workspaces.Len())
	_, ok := workspaces.Get(fresh.ID)
	assert.True(t, ok)
	for _, id := range abandoned {
		_, err := sessions.Get(ctx, id)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	}
}

func TestLoginLogsTokenSubject(t *testing.T) {
	gw := new(authGatewayMock)
	sessions := new(sessionRepoMock)
	gw.On("Login", mock.Anything, "admin", "secret").
		Return(domain.Success(ports.Credentials{Token: "tok"}, ""))
	sessions.On("Save", mock.Anything, mock.Anything).Return(nil)
	buf := new(bytes.Buffer)
	svc := NewAuthService(gw, sessions, NewWorkspaces(testRepos(), logger.Discard()), tokenStub{subject: "42"},
		logger.NewWithWriter(buf, slog.LevelInfo), time.Hour)

	_, err := svc.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"msg":"session opened"`)
	assert.Contains(t, buf.String(), `"subject":"42"`)
}
