package http

import (
	stdhttp "net/http"
	"time"

	"github.com/labstack/echo/v4"
	"penalty-console/internal/adapters/http/middleware"
	"penalty-console/internal/application"
	"penalty-console/internal/application/permission"
	"penalty-console/internal/domain"
	"penalty-console/internal/infrastructure/navigation"
)

type SessionHandler struct {
	auth   *application.AuthService
	menu   *navigation.Menu
	secure bool
}

type sessionView struct {
	Session domain.Session    `json:"session"`
	Menu    []navigation.Item `json:"menu"`
}

func (h *SessionHandler) view(session domain.Session) sessionView {
	items := []navigation.Item{}
	if h.menu != nil {
		items = h.menu.Visible(permission.NewSet(session.Permissions))
	}
	return sessionView{Session: session, Menu: items}
}

func (h *SessionHandler) cookie(value string, expires time.Time) *stdhttp.Cookie {
	ck := &stdhttp.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: stdhttp.SameSiteLaxMode,
		Expires:  expires,
	}
	if value == "" {
		ck.MaxAge = -1
	}
	return ck
}

func (h *SessionHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	session, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return handleError(c, err)
	}
	c.SetCookie(h.cookie(session.ID, session.ExpiresAt))
	return c.JSON(stdhttp.StatusOK, h.view(session))
}

func (h *SessionHandler) Logout(c echo.Context) error {
	if id := middleware.SessionID(c); id != "" {
		if err := h.auth.Logout(c.Request().Context(), id); err != nil {
			return handleError(c, err)
		}
	}
	c.SetCookie(h.cookie("", time.Unix(0, 0)))
	return c.NoContent(stdhttp.StatusNoContent)
}

func (h *SessionHandler) Current(c echo.Context) error {
	return respond(c, stdhttp.StatusOK, h.view(workspaceOf(c).Session()))
}

func (h *SessionHandler) RefreshPermissions(c echo.Context) error {
	ws := workspaceOf(c)
	if err := h.auth.RefreshPermissions(c.Request().Context(), ws); err != nil {
		return handleError(c, err)
	}
	return respond(c, stdhttp.StatusOK, h.view(ws.Session()))
}

func (h *SessionHandler) Navigation(c echo.Context) error {
	items := []navigation.Item{}
	if h.menu != nil {
		items = h.menu.Visible(permissionsOf(c))
	}
	return respond(c, stdhttp.StatusOK, items)
}
