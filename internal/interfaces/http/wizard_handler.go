package http

import (
	"fmt"
	stdhttp "net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"penalty-console/internal/application"
	"penalty-console/internal/application/form"
	"penalty-console/internal/application/permission"
	"penalty-console/internal/domain"
)

// WizardHandler drives the penalty registration wizard of the operator's workspace.
type WizardHandler struct{}

func (h *WizardHandler) register(g *echo.Group) {
	g.Use(gate(permission.Require(domain.PermPenaltyCreate)))
	g.GET("", h.State)
	g.PUT("", h.Update)
	g.POST("/start", h.Start)
	g.POST("/next", h.Next)
	g.POST("/back", h.Back)
	g.POST("/images", h.AttachImage)
	g.DELETE("/images/:index", h.RemoveImage)
	g.GET("/preloads", h.Preloads)
	g.GET("/lookup/:field", h.LoadLookup)
	g.POST("/lookup/:field", h.Lookup)
	g.POST("/submit", h.Submit)
}

func wizardOf(c echo.Context) *application.PenaltyWizard {
	return workspaceOf(c).Wizard
}

func (h *WizardHandler) State(c echo.Context) error {
	return respond(c, stdhttp.StatusOK, wizardOf(c).State())
}

func (h *WizardHandler) Start(c echo.Context) error {
	var req struct {
		PreloadID int `json:"preload_id"`
	}
	if err := c.Bind(&req); err != nil {
		return handleError(c, fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput))
	}
	if req.PreloadID == 0 {
		return respond(c, stdhttp.StatusOK, wizardOf(c).Start())
	}
	st, err := wizardOf(c).StartFromPreload(c.Request().Context(), req.PreloadID)
	if err != nil {
		return handleError(c, err)
	}
	return respond(c, stdhttp.StatusOK, st)
}

func (h *WizardHandler) Update(c echo.Context) error {
	values, err := bindRecord[domain.Penalty](c)
	if err != nil {
		return handleError(c, err)
	}
	st, err := wizardOf(c).Update(values)
	if err != nil {
		return handleError(c, err)
	}
	return respond(c, stdhttp.StatusOK, st)
}

func (h *WizardHandler) Next(c echo.Context) error {
	st, err := wizardOf(c).Next()
	if err != nil {
		return handleError(c, err)
	}
	return respond(c, stdhttp.StatusOK, st)
}

func (h *WizardHandler) Back(c echo.Context) error {
	return respond(c, stdhttp.StatusOK, wizardOf(c).Back())
}

func (h *WizardHandler) AttachImage(c echo.Context) error {
	att, err := attachment(c, "image")
	if err != nil {
		return handleError(c, err)
	}
	if att == nil {
		return handleError(c, fmt.Errorf("%w: image is required", domain.ErrInvalidInput))
	}
	st, err := wizardOf(c).AttachImage(*att)
	if err != nil {
		return handleError(c, err)
	}
	return respond(c, stdhttp.StatusOK, st)
}

func (h *WizardHandler) RemoveImage(c echo.Context) error {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return handleError(c, fmt.Errorf("%w: index", domain.ErrInvalidInput))
	}
	return respond(c, stdhttp.StatusOK, wizardOf(c).RemoveImage(i))
}

func (h *WizardHandler) Preloads(c echo.Context) error {
	ws := workspaceOf(c)
	if err := ws.Preloads.FetchAll(c.Request().Context()); err != nil {
		return handleError(c, err)
	}
	return respond(c, stdhttp.StatusOK, ws.Preloads.Items())
}

func (h *WizardHandler) lookup(c echo.Context) (*form.Autocomplete, error) {
	ac, ok := wizardOf(c).Lookup(c.Param("field"))
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ac, nil
}

func (h *WizardHandler) LoadLookup(c echo.Context) error {
	ac, err := h.lookup(c)
	if err != nil {
		return handleError(c, err)
	}
	if err := ac.Load(c.Request().Context()); err != nil {
		return handleError(c, err)
	}
	return respond(c, stdhttp.StatusOK, ac.State())
}

// Lookup applies one autocomplete interaction: a pick by value, a navigation key, or a
// new query.
func (h *WizardHandler) Lookup(c echo.Context) error {
	ac, err := h.lookup(c)
	if err != nil {
		return handleError(c, err)
	}
	var req struct {
		Query string `json:"query"`
		Key   string `json:"key"`
		Value int    `json:"value"`
	}
	if err := c.Bind(&req); err != nil {
		return handleError(c, fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput))
	}
	switch {
	case req.Value != 0:
		st, err := wizardOf(c).Pick(c.Param("field"), req.Value)
		if err != nil {
			return handleError(c, err)
		}
		return respond(c, stdhttp.StatusOK, map[string]any{"lookup": ac.State(), "wizard": st})
	case req.Key != "":
		st := ac.Key(form.Key(req.Key))
		if sel, ok := ac.Selected(); ok && req.Key == string(form.KeyEnter) {
			wst, err := wizardOf(c).Pick(c.Param("field"), sel.Value)
			if err != nil {
				return handleError(c, err)
			}
			return respond(c, stdhttp.StatusOK, map[string]any{"lookup": st, "wizard": wst})
		}
		return respond(c, stdhttp.StatusOK, map[string]any{"lookup": st})
	default:
		return respond(c, stdhttp.StatusOK, map[string]any{"lookup": ac.Type(req.Query)})
	}
}

func (h *WizardHandler) Submit(c echo.Context) error {
	st, err := wizardOf(c).Submit(c.Request().Context())
	if err != nil {
		return handleError(c, err)
	}
	return respond(c, stdhttp.StatusOK, st)
}
