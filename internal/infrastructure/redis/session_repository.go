package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"penalty-console/internal/domain"
)

const sessionKeyPrefix = "console:session:"

type sessionRecord struct {
	ID          string    `json:"id"`
	Token       string    `json:"token"`
	Permissions []string  `json:"permissions"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// SessionRepository stores sessions as JSON values that Redis expires together with the
// session.
type SessionRepository struct {
	client *redis.Client
	now    func() time.Time
}

func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client, now: time.Now}
}

func (r *SessionRepository) Save(ctx context.Context, session domain.Session) error {
	if session.ID == "" {
		return domain.ErrInvalidInput
	}
	var ttl time.Duration
	if !session.ExpiresAt.IsZero() {
		ttl = session.ExpiresAt.Sub(r.now())
		if ttl <= 0 {
			return r.client.Del(ctx, sessionKeyPrefix+session.ID).Err()
		}
	}
	raw, err := json.Marshal(sessionRecord{
		ID:          session.ID,
		Token:       session.Token,
		Permissions: session.Permissions,
		DisplayName: session.DisplayName,
		CreatedAt:   session.CreatedAt,
		ExpiresAt:   session.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return r.client.Set(ctx, sessionKeyPrefix+session.ID, raw, ttl).Err()
}

func (r *SessionRepository) Get(ctx context.Context, id string) (domain.Session, error) {
	raw, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Session{}, err
	}
	var rec sessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	if rec.Permissions == nil {
		rec.Permissions = []string{}
	}
	return domain.Session{
		ID:          rec.ID,
		Token:       rec.Token,
		Permissions: rec.Permissions,
		DisplayName: rec.DisplayName,
		CreatedAt:   rec.CreatedAt,
		ExpiresAt:   rec.ExpiresAt,
	}, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, sessionKeyPrefix+id).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
