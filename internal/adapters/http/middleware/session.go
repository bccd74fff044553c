package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"penalty-console/internal/domain"
)

const (
	SessionCookie = "console_session"
	SessionHeader = "X-Console-Session"
	LoginPath     = "/login"
)

// ResolveFunc mounts the state of sessionID and returns the context the request
// continues with.
type ResolveFunc func(ctx context.Context, sessionID string) (context.Context, error)

// SessionID reads the session id from the header, falling back to the cookie.
func SessionID(c echo.Context) string {
	if id := strings.TrimSpace(c.Request().Header.Get(SessionHeader)); id != "" {
		return id
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// Unauthorized answers with the login redirect every page understands.
func Unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{
		"error":    "session expired",
		"redirect": LoginPath,
	})
}

func Session(resolve ResolveFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := SessionID(c)
			if id == "" {
				return Unauthorized(c)
			}
			ctx, err := resolve(c.Request().Context(), id)
			if errors.Is(err, domain.ErrUnauthorized) {
				return Unauthorized(c)
			}
			if err != nil {
				return err
			}
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("session_id", id)
			return next(c)
		}
	}
}
