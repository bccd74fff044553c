package http

import (
	stdhttp "net/http"

	"github.com/labstack/echo/v4"
	"penalty-console/internal/application"
	"penalty-console/internal/application/permission"
	"penalty-console/internal/domain"
)

type DashboardHandler struct {
	service *application.DashboardService
}

func (h *DashboardHandler) register(g *echo.Group) {
	g.GET("", h.Get, gate(permission.Require(domain.PermDashboardView)))
}

// Get builds the dashboard; from and to bound the penalty report.
func (h *DashboardHandler) Get(c echo.Context) error {
	params := map[string]string{}
	for _, key := range []string{"from", "to"} {
		if v := c.QueryParam(key); v != "" {
			params[key] = v
		}
	}
	d, err := h.service.Build(c.Request().Context(), permissionsOf(c), params)
	if err != nil {
		return handleError(c, err)
	}
	return respond(c, stdhttp.StatusOK, d)
}
