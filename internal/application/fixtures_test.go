package application

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"penalty-console/internal/domain"
	"penalty-console/internal/ports"
)

type authGatewayMock struct{ mock.Mock }

func (m *authGatewayMock) Login(ctx context.Context, username, password string) domain.Result[ports.Credentials] {
	args := m.Called(ctx, username, password)
	return args.Get(0).(domain.Result[ports.Credentials])
}

func (m *authGatewayMock) Permissions(ctx context.Context) domain.Result[[]string] {
	args := m.Called(ctx)
	return args.Get(0).(domain.Result[[]string])
}

type sessionRepoMock struct{ mock.Mock }

func (m *sessionRepoMock) Save(ctx context.Context, session domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *sessionRepoMock) Get(ctx context.Context, id string) (domain.Session, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Session), args.Error(1)
}

func (m *sessionRepoMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type tokenStub struct {
	exp     time.Time
	ok      bool
	subject string
}

func (t tokenStub) ExpiresAt(string) (time.Time, bool) { return t.exp, t.ok }

func (t tokenStub) Subject(string) string { return t.subject }

// fakeRepo serves a fixed list and records writes.
type fakeRepo[T domain.Entity] struct {
	mu     sync.Mutex
	items  []T
	err    error
	saved  []T
	calls  int
	nextID int
}

func (r *fakeRepo[T]) GetAll(context.Context) domain.Result[[]T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return domain.Failure[[]T](r.err, "")
	}
	return domain.Success(append([]T{}, r.items...), "")
}

func (r *fakeRepo[T]) CreateOrUpdate(_ context.Context, item T) domain.Result[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.Failure[T](r.err, "")
	}
	r.saved = append(r.saved, item)
	r.items = append(r.items, item)
	return domain.Success(item, "Guardado")
}

func (r *fakeRepo[T]) Delete(_ context.Context, item T) domain.Result[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.Failure[T](r.err, "")
	}
	return domain.Success(item, "Eliminado")
}

func (r *fakeRepo[T]) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type reportStub struct {
	report domain.PenaltyReport
	err    error
	params map[string]string
}

func (r *reportStub) Report(_ context.Context, params map[string]string) domain.Result[domain.PenaltyReport] {
	r.params = params
	if r.err != nil {
		return domain.Failure[domain.PenaltyReport](r.err, "")
	}
	return domain.Success(r.report, "")
}

func testRepos() Repositories {
	return Repositories{
		Doctors: &fakeRepo[domain.Doctor]{items: []domain.Doctor{
			{ID: 1, Name: "Ana Ruiz", Certificate: "123", Active: true},
			{ID: 2, Name: "Juan Pérez", Certificate: "456", Active: true},
		}},
		Dependences:      &fakeRepo[domain.Dependence]{items: []domain.Dependence{{ID: 1, Name: "Seguridad", Active: true}}},
		Procedures:       &fakeRepo[domain.Procedure]{items: []domain.Procedure{{ID: 1, Name: "Arresto", Active: true}}},
		Causes:           &fakeRepo[domain.CauseOfDetention]{items: []domain.CauseOfDetention{{ID: 4, Name: "Riña", Active: true}}},
		Courts:           &fakeRepo[domain.Court]{},
		Users:            &fakeRepo[domain.User]{},
		TechnicalRecords: &fakeRepo[domain.TechnicalRecord]{},
		Tasks:            &fakeRepo[domain.Task]{},
		Logs:             &fakeRepo[domain.LogEntry]{},
		Penalties:        &fakeRepo[domain.Penalty]{},
		PenaltyPreloads: &fakeRepo[domain.PenaltyPreload]{items: []domain.PenaltyPreload{
			{ID: 9, Name: "Luis Mora", Age: 31, Sex: "M", Address: "Centro 4", CauseID: 4, Date: "2024-05-01"},
		}},
		PenaltyReport: &reportStub{},
	}
}
