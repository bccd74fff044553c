package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"penalty-console/internal/application/permission"
)

type PermissionsFunc func(c echo.Context) permission.Set

// RequirePermission hides the route from operators the requirement does not allow. The
// response is an empty 404 so a gated page is indistinguishable from a missing one.
func RequirePermission(perms PermissionsFunc, req permission.Requirement) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !req.Allows(perms(c)) {
				return c.NoContent(http.StatusNotFound)
			}
			return next(c)
		}
	}
}
