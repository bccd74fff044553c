package ports

import (
	"context"
	"time"

	"penalty-console/internal/domain"
)

// Repository is the capability set a Store needs for one entity type. CreateOrUpdate serves
// both insert and update; the API decides from the record's ID.
type Repository[T domain.Entity] interface {
	GetAll(ctx context.Context) domain.Result[[]T]
	CreateOrUpdate(ctx context.Context, item T) domain.Result[T]
	Delete(ctx context.Context, item T) domain.Result[T]
}

type ReportRepository[R any] interface {
	Report(ctx context.Context, params map[string]string) domain.Result[R]
}

type SessionRepository interface {
	Save(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, id string) (domain.Session, error)
	Delete(ctx context.Context, id string) error
}

// AuthGateway is the remote API's authentication surface.
type AuthGateway interface {
	Login(ctx context.Context, username, password string) domain.Result[Credentials]
	Permissions(ctx context.Context) domain.Result[[]string]
}

type Credentials struct {
	Token       string   `json:"token"`
	Permissions []string `json:"permissions"`
	Name        string   `json:"name"`
}

// TokenInspector reads the expiry and subject an API token carries, when it carries them.
type TokenInspector interface {
	ExpiresAt(token string) (time.Time, bool)
	Subject(token string) string
}
