package http

import (
	"context"
	stdhttp "net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"penalty-console/internal/adapters/http/middleware"
	"penalty-console/internal/adapters/metrics"
	"penalty-console/internal/application"
	"penalty-console/internal/infrastructure/navigation"
	"penalty-console/internal/ports"
)

const (
	metricsPath = "/metrics"
	healthPath  = "/healthz"
)

type Deps struct {
	Auth      *application.AuthService
	Dashboard *application.DashboardService
	Menu      *navigation.Menu
	Logger    ports.Logger
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	// Health probes the session backend; nil means nothing to probe.
	Health func(context.Context) error
	// SecureCookies marks the session cookie Secure; off only for local plain-HTTP runs.
	SecureCookies bool
}

type Middleware struct {
	Tracing echo.MiddlewareFunc
	Logging echo.MiddlewareFunc
}

type router struct {
	deps Deps
}

func newEcho(m Middleware) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	if m.Tracing != nil {
		e.Use(m.Tracing)
	}
	if m.Logging != nil {
		e.Use(m.Logging)
	}
	return e
}

// NewConsoleRouter mounts every console page. All routes except login, logout, health and
// metrics need a live session.
func NewConsoleRouter(d Deps) *echo.Echo {
	e := newEcho(Middleware{
		Tracing: middleware.XRayMiddleware("penalty-console", metricsPath, healthPath),
		Logging: middleware.RequestLogger(d.Logger),
	})
	r := &router{deps: d}
	sessions := &SessionHandler{auth: d.Auth, menu: d.Menu, secure: d.SecureCookies}

	e.POST("/login", sessions.Login)
	e.POST("/logout", sessions.Logout)
	e.GET(healthPath, r.health)
	if d.Gatherer != nil {
		e.GET(metricsPath, echo.WrapHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	app := e.Group("", middleware.Session(SessionResolver(d.Auth)))
	app.GET("/session", sessions.Current)
	app.POST("/session/permissions/refresh", sessions.RefreshPermissions)
	app.GET("/navigation", sessions.Navigation)

	r.registerCatalogs(app)
	(&WizardHandler{}).register(app.Group("/penalties/wizard"))
	(&DashboardHandler{service: d.Dashboard}).register(app.Group("/dashboard"))
	return e
}

func (r *router) health(c echo.Context) error {
	if r.deps.Health != nil {
		if err := r.deps.Health(c.Request().Context()); err != nil {
			r.deps.Logger.Error(c.Request().Context(), "session backend unhealthy", "error", err)
			return c.JSON(stdhttp.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
	}
	return c.JSON(stdhttp.StatusOK, map[string]string{"status": "ok"})
}
