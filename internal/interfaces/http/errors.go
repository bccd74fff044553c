package http

import (
	"errors"
	stdhttp "net/http"

	"github.com/labstack/echo/v4"
	"penalty-console/internal/adapters/http/middleware"
	"penalty-console/internal/application/form"
	"penalty-console/internal/application/notify"
	"penalty-console/internal/application/table"
	"penalty-console/internal/domain"
)

type envelope struct {
	Data          any                   `json:"data"`
	Notifications []notify.Notification `json:"notifications"`
}

// respond wraps data with the notifications raised while serving the request.
func respond(c echo.Context, status int, data any) error {
	return c.JSON(status, envelope{Data: data, Notifications: drain(c)})
}

func drain(c echo.Context) []notify.Notification {
	if ws := workspaceOf(c); ws != nil {
		return ws.Notifications.Drain()
	}
	return []notify.Notification{}
}

func handleError(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrUnauthorized) {
		return middleware.Unauthorized(c)
	}
	body := map[string]any{"error": err.Error(), "notifications": drain(c)}
	var verr *form.ValidationError
	switch {
	case errors.As(err, &verr):
		body["error"] = domain.ErrInvalidInput.Error()
		body["fields"] = verr.Fields
		return c.JSON(stdhttp.StatusUnprocessableEntity, body)
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrTooManyFiles),
		errors.Is(err, domain.ErrNotInPalette),
		errors.Is(err, table.ErrPageSize):
		return c.JSON(stdhttp.StatusBadRequest, body)
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(stdhttp.StatusNotFound, body)
	case errors.Is(err, domain.ErrPermissionDeny):
		return c.JSON(stdhttp.StatusForbidden, body)
	case errors.Is(err, domain.ErrSubmitInFlight):
		return c.JSON(stdhttp.StatusConflict, body)
	case errors.Is(err, domain.ErrRemote):
		return c.JSON(stdhttp.StatusUnprocessableEntity, body)
	case errors.Is(err, domain.ErrTransport):
		body["error"] = "could not reach the server"
		return c.JSON(stdhttp.StatusBadGateway, body)
	default:
		body["error"] = "internal error"
		return c.JSON(stdhttp.StatusInternalServerError, body)
	}
}
