package http

import (
	"errors"

	"github.com/labstack/echo/v4"
	"penalty-console/internal/application"
	"penalty-console/internal/application/form"
	"penalty-console/internal/domain"
	"penalty-console/internal/ports"
)

// imagePrepare binds the uploaded "image" file to a record that keeps a single image.
func imagePrepare[T domain.Entity](existing func(T) string, attach func(*T, *domain.Attachment)) func(echo.Context, T) (T, error) {
	return func(c echo.Context, item T) (T, error) {
		att, err := attachment(c, "image")
		if err != nil {
			return item, err
		}
		uploader := form.NewImageUploader(false, 1)
		uploader.Load(existing(item))
		if att != nil {
			if err := uploader.Add(*att); err != nil {
				return item, err
			}
		}
		if files := uploader.NewFiles(); len(files) > 0 {
			attach(&item, &files[0])
		}
		return item, nil
	}
}

func taskPrepare(_ echo.Context, t domain.Task) (domain.Task, error) {
	if t.Color == "" {
		return t, nil
	}
	picker := form.NewColorPicker(form.DefaultPalette)
	if err := picker.Select(t.Color); err != nil {
		return t, err
	}
	t.Color = picker.Selected()
	return t, nil
}

// refreshPermissions reloads the operator's permissions after an admin change to users.
// Only a lost session fails the request; the write itself already succeeded.
func refreshPermissions(auth *application.AuthService, logger ports.Logger) func(echo.Context, *application.Workspace) error {
	return func(c echo.Context, ws *application.Workspace) error {
		ctx := c.Request().Context()
		err := auth.RefreshPermissions(ctx, ws)
		if errors.Is(err, domain.ErrUnauthorized) {
			return err
		}
		if err != nil {
			logger.Warn(ctx, "permission refresh after user change failed", "error", err)
		}
		return nil
	}
}

func (r *router) registerCatalogs(e *echo.Group) {
	catalogs := e.Group("/catalogs")
	(&catalogHandler[domain.Doctor]{page: application.DoctorsPage(), metrics: r.deps.Metrics}).
		register(catalogs.Group("/doctors"))
	(&catalogHandler[domain.Dependence]{page: application.DependencesPage(), metrics: r.deps.Metrics}).
		register(catalogs.Group("/dependences"))
	(&catalogHandler[domain.Procedure]{page: application.ProceduresPage(), metrics: r.deps.Metrics}).
		register(catalogs.Group("/procedures"))
	(&catalogHandler[domain.CauseOfDetention]{page: application.CausesPage(), metrics: r.deps.Metrics}).
		register(catalogs.Group("/causes"))
	(&catalogHandler[domain.Court]{page: application.CourtsPage(), metrics: r.deps.Metrics}).
		register(catalogs.Group("/courts"))
	(&catalogHandler[domain.User]{
		page:       application.UsersPage(),
		metrics:    r.deps.Metrics,
		afterWrite: refreshPermissions(r.deps.Auth, r.deps.Logger),
	}).register(catalogs.Group("/users"))
	(&catalogHandler[domain.TechnicalRecord]{
		page:    application.TechnicalRecordsPage(),
		metrics: r.deps.Metrics,
		prepare: imagePrepare(
			func(t domain.TechnicalRecord) string { return t.Image },
			func(t *domain.TechnicalRecord, a *domain.Attachment) { t.ImageFile = a },
		),
	}).register(catalogs.Group("/technical-records"))
	(&catalogHandler[domain.Penalty]{
		page:    application.PenaltiesPage(),
		metrics: r.deps.Metrics,
		prepare: imagePrepare(
			func(p domain.Penalty) string { return p.Image },
			func(p *domain.Penalty, a *domain.Attachment) { p.ImageFile = a },
		),
	}).register(catalogs.Group("/penalties"))
	(&catalogHandler[domain.Task]{page: application.TasksPage(), metrics: r.deps.Metrics, prepare: taskPrepare}).
		register(catalogs.Group("/tasks"))

	(&catalogHandler[domain.LogEntry]{page: application.LogsPage(), metrics: r.deps.Metrics}).
		register(e.Group("/logs"))
}
