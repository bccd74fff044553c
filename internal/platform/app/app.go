package app

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"penalty-console/internal/adapters/apiclient"
	"penalty-console/internal/adapters/logger"
	"penalty-console/internal/adapters/metrics"
	"penalty-console/internal/adapters/rest"
	"penalty-console/internal/application"
	"penalty-console/internal/infrastructure/auth"
	"penalty-console/internal/infrastructure/dynamodb"
	"penalty-console/internal/infrastructure/memory"
	"penalty-console/internal/infrastructure/navigation"
	"penalty-console/internal/infrastructure/redis"
	httpiface "penalty-console/internal/interfaces/http"
	"penalty-console/internal/ports"
)

// App is the wired console: the echo router plus the services behind it.
type App struct {
	Config     Config
	Logger     *logger.SlogLogger
	Registry   *prometheus.Registry
	Metrics    *metrics.Metrics
	Client     *apiclient.Client
	Workspaces *application.Workspaces
	Auth       *application.AuthService
	Echo       *echo.Echo
	closers    []func() error
}

// Repositories exposes the REST resources through the ports the application layer consumes.
func Repositories(r *rest.Repositories) application.Repositories {
	return application.Repositories{
		Doctors:          r.Doctors,
		Dependences:      r.Dependences,
		Procedures:       r.Procedures,
		Causes:           r.Causes,
		Courts:           r.Courts,
		Users:            r.Users,
		TechnicalRecords: r.TechnicalRecords,
		Tasks:            r.Tasks,
		Logs:             r.Logs,
		Penalties:        r.Penalties,
		PenaltyPreloads:  r.PenaltyPreloads,
		PenaltyReport:    r.PenaltyReport,
	}
}

func New(ctx context.Context, cfg Config, log *logger.SlogLogger) (*App, error) {
	a := &App{Config: cfg, Logger: log, Registry: prometheus.NewRegistry()}
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.Metrics = metrics.New(a.Registry)

	opts := []apiclient.Option{apiclient.WithTimeout(cfg.APITimeout), apiclient.WithMetrics(a.Metrics)}
	if cfg.Tracing {
		opts = append(opts, apiclient.WithTracing())
	}
	a.Client = apiclient.New(cfg.APIBaseURL, log, opts...)

	sessions, health, err := a.sessionRepository(ctx)
	if err != nil {
		return nil, err
	}

	remote := rest.NewRepositories(a.Client)
	repos := Repositories(remote)
	a.Workspaces = application.NewWorkspaces(repos, log)
	a.Auth = application.NewAuthService(remote.Auth, sessions, a.Workspaces, auth.NewTokenInspector(), log, cfg.SessionTTL)
	a.Auth.OnExpire(a.Metrics.IncrementSessionExpired)
	a.Client.SetUnauthorizedHandler(a.Auth.Expire)

	menu, err := navigation.Default()
	if err != nil {
		return nil, fmt.Errorf("load navigation menu: %w", err)
	}
	a.Echo = httpiface.NewConsoleRouter(httpiface.Deps{
		Auth:          a.Auth,
		Dashboard:     application.NewDashboardService(repos, log),
		Menu:          menu,
		Logger:        log,
		Metrics:       a.Metrics,
		Gatherer:      a.Registry,
		Health:        health,
		SecureCookies: cfg.SecureCookies,
	})
	return a, nil
}

func (a *App) sessionRepository(ctx context.Context) (ports.SessionRepository, func(context.Context) error, error) {
	switch a.Config.SessionBackend {
	case BackendDynamoDB:
		client, err := dynamodb.NewClient(ctx, a.Config.Region, a.Config.TableName)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize dynamodb client: %w", err)
		}
		return dynamodb.NewSessionRepository(client), nil, nil
	case BackendRedis:
		client, err := redis.New(ctx, a.Config.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize redis client: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return redis.NewSessionRepository(client.Client), client.Health, nil
	default:
		return memory.NewSessionRepository(), nil, nil
	}
}

func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
