package http

import (
	"context"

	"github.com/labstack/echo/v4"
	"penalty-console/internal/adapters/apiclient"
	"penalty-console/internal/adapters/http/middleware"
	"penalty-console/internal/adapters/logger"
	"penalty-console/internal/application"
	"penalty-console/internal/application/permission"
)

type workspaceKey struct{}

func withWorkspace(ctx context.Context, ws *application.Workspace) context.Context {
	return context.WithValue(ctx, workspaceKey{}, ws)
}

func workspaceOf(c echo.Context) *application.Workspace {
	ws, _ := c.Request().Context().Value(workspaceKey{}).(*application.Workspace)
	return ws
}

func permissionsOf(c echo.Context) permission.Set {
	if ws := workspaceOf(c); ws != nil {
		return ws.Permissions.Set()
	}
	return permission.NewSet(nil)
}

func gate(req permission.Requirement) echo.MiddlewareFunc {
	return middleware.RequirePermission(permissionsOf, req)
}

// SessionResolver mounts the workspace of a live session and binds its token to the
// request context for outbound API calls.
func SessionResolver(auth *application.AuthService) middleware.ResolveFunc {
	return func(ctx context.Context, id string) (context.Context, error) {
		ws, err := auth.Resume(ctx, id)
		if err != nil {
			return nil, err
		}
		session := ws.Session()
		ctx = apiclient.WithSession(ctx, session.ID, session.Token)
		ctx = logger.WithSessionID(ctx, session.ID)
		return withWorkspace(ctx, ws), nil
	}
}
