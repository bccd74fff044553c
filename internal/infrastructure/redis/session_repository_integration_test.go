//go:build integration

package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"penalty-console/internal/domain"
)

type SessionRepositorySuite struct {
	suite.Suite
	client *Client
	repo   *SessionRepository
}

func TestSessionRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if os.Getenv("REDIS_URL") == "" {
		t.Skip("REDIS_URL not set")
	}
	suite.Run(t, new(SessionRepositorySuite))
}

func (s *SessionRepositorySuite) SetupSuite() {
	client, err := New(context.Background(), os.Getenv("REDIS_URL"))
	s.Require().NoError(err)
	s.client = client
	s.repo = NewSessionRepository(client.Client)
}

func (s *SessionRepositorySuite) TearDownSuite() {
	if s.client != nil {
		s.client.Close()
	}
}

func (s *SessionRepositorySuite) TestRoundTripKeepsToken() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	session := domain.Session{
		ID:          uuid.NewString(),
		Token:       "tok",
		Permissions: []string{domain.PermDoctorView},
		DisplayName: "Admin",
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Minute),
	}
	s.Require().NoError(s.repo.Save(ctx, session))

	got, err := s.repo.Get(ctx, session.ID)
	s.Require().NoError(err)
	s.Equal("tok", got.Token)
	s.Equal(session.Permissions, got.Permissions)
	s.True(session.ExpiresAt.Equal(got.ExpiresAt))

	ttl, err := s.client.TTL(ctx, sessionKeyPrefix+session.ID).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Minute)
}

func (s *SessionRepositorySuite) TestMissingAndDelete() {
	ctx := context.Background()
	_, err := s.repo.Get(ctx, uuid.NewString())
	s.ErrorIs(err, domain.ErrNotFound)

	id := uuid.NewString()
	s.Require().NoError(s.repo.Save(ctx, domain.Session{ID: id}))
	s.Require().NoError(s.repo.Delete(ctx, id))
	s.ErrorIs(s.repo.Delete(ctx, id), domain.ErrNotFound)
}

func (s *SessionRepositorySuite) TestExpiredSessionIsNotStored() {
	ctx := context.Background()
	id := uuid.NewString()
	s.Require().NoError(s.repo.Save(ctx, domain.Session{ID: id, ExpiresAt: time.Now().Add(-time.Second)}))
	_, err := s.repo.Get(ctx, id)
	s.ErrorIs(err, domain.ErrNotFound)
}
