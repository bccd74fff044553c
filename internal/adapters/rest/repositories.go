package rest

import (
	"context"
	"errors"

	"penalty-console/internal/adapters/apiclient"
	"penalty-console/internal/domain"
	"penalty-console/internal/ports"
)

const (
	ResourceDoctor          = "doctor"
	ResourceDependence      = "dependence"
	ResourceProcedure       = "procedure"
	ResourceCause           = "causeOfDetention"
	ResourceCourt           = "court"
	ResourceUsers           = "users"
	ResourceTechnicalRecord = "techinical"
	ResourceTask            = "task"
	ResourceLogs            = "logs"
	ResourcePenalties       = "penalties"
	ResourcePenaltyPreload  = "penaltyPreload"
)

type Repositories struct {
	Doctors          *Resource[domain.Doctor]
	Dependences      *Resource[domain.Dependence]
	Procedures       *Resource[domain.Procedure]
	Causes           *Resource[domain.CauseOfDetention]
	Courts           *Resource[domain.Court]
	Users            *Resource[domain.User]
	TechnicalRecords *Resource[domain.TechnicalRecord]
	Tasks            *Resource[domain.Task]
	Logs             *Resource[domain.LogEntry]
	Penalties        *Resource[domain.Penalty]
	PenaltyPreloads  *Resource[domain.PenaltyPreload]
	PenaltyReport    *Reporter[domain.PenaltyReport]
	Auth             *Auth
}

func NewRepositories(client *apiclient.Client) *Repositories {
	return &Repositories{
		Doctors:          NewResource[domain.Doctor](client, ResourceDoctor),
		Dependences:      NewResource[domain.Dependence](client, ResourceDependence),
		Procedures:       NewResource[domain.Procedure](client, ResourceProcedure),
		Causes:           NewResource[domain.CauseOfDetention](client, ResourceCause),
		Courts:           NewResource[domain.Court](client, ResourceCourt),
		Users:            NewResource[domain.User](client, ResourceUsers),
		TechnicalRecords: NewResource[domain.TechnicalRecord](client, ResourceTechnicalRecord),
		Tasks:            NewResource[domain.Task](client, ResourceTask),
		Logs:             NewResource[domain.LogEntry](client, ResourceLogs),
		Penalties:        NewResource[domain.Penalty](client, ResourcePenalties),
		PenaltyPreloads:  NewResource[domain.PenaltyPreload](client, ResourcePenaltyPreload),
		PenaltyReport:    NewReporter[domain.PenaltyReport](client, ResourcePenalties),
		Auth:             &Auth{client: client},
	}
}

// Auth talks to the API's login and permission endpoints.
type Auth struct {
	client *apiclient.Client
}

var _ ports.AuthGateway = (*Auth)(nil)

// InvalidCredentials is reported when the API answers a login with 401.
const InvalidCredentials = "invalid username or password"

func (a *Auth) Login(ctx context.Context, username, password string) domain.Result[ports.Credentials] {
	env, err := a.client.Post(ctx, "auth/login", map[string]string{"username": username, "password": password})
	if errors.Is(err, domain.ErrUnauthorized) {
		// No session exists yet, so a 401 here is a credentials rejection.
		return domain.Failure[ports.Credentials](&domain.RemoteError{Message: InvalidCredentials}, "")
	}
	if err != nil {
		return failure[ports.Credentials](err)
	}
	creds, err := apiclient.Decode[ports.Credentials](env)
	if err != nil {
		return failure[ports.Credentials](err)
	}
	if creds.Token == "" {
		return domain.Failure[ports.Credentials](domain.ErrInvalidInput, "login response carried no token")
	}
	return domain.Success(creds, env.Message)
}

func (a *Auth) Permissions(ctx context.Context) domain.Result[[]string] {
	env, err := a.client.Get(ctx, "auth/permissions", nil)
	if err != nil {
		return failure[[]string](err)
	}
	perms, err := apiclient.Decode[[]string](env)
	if err != nil {
		return failure[[]string](err)
	}
	return domain.Success(perms, env.Message)
}

var (
	_ ports.Repository[domain.Doctor]              = (*Resource[domain.Doctor])(nil)
	_ ports.ReportRepository[domain.PenaltyReport] = (*Reporter[domain.PenaltyReport])(nil)
)
