package http

import (
	"bytes"
	"errors"
	"fmt"
	stdhttp "net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"penalty-console/internal/adapters/metrics"
	"penalty-console/internal/application"
	"penalty-console/internal/application/form"
	"penalty-console/internal/application/permission"
	"penalty-console/internal/application/table"
	"penalty-console/internal/domain"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type columnView struct {
	Key        string     `json:"key"`
	Header     string     `json:"header"`
	Searchable bool       `json:"searchable"`
	Tier       table.Tier `json:"tier"`
}

type actionsView struct {
	Create bool `json:"create"`
	Edit   bool `json:"edit"`
	Delete bool `json:"delete"`
}

type catalogView[T domain.Entity] struct {
	Title    string           `json:"title"`
	Loading  bool             `json:"loading"`
	Error    string           `json:"error,omitempty"`
	Columns  []columnView     `json:"columns"`
	Layout   table.Layout     `json:"layout"`
	Table    table.State      `json:"table"`
	Page     table.Page[T]    `json:"page"`
	Cells    [][]string       `json:"cells"`
	FormOpen bool             `json:"form_open"`
	Form     form.Snapshot[T] `json:"form"`
	Actions  actionsView      `json:"actions"`
}

// catalogHandler serves one list page: table, edit form, swipe actions and export.
type catalogHandler[T domain.Entity] struct {
	page    application.CatalogPage[T]
	metrics *metrics.Metrics
	// prepare adjusts a bound record before submission (attachments, palette colors).
	prepare func(c echo.Context, item T) (T, error)
	// afterWrite runs after a successful submit or delete.
	afterWrite func(c echo.Context, ws *application.Workspace) error
}

func (h *catalogHandler[T]) register(g *echo.Group) {
	p := h.page.Permissions
	view := gate(permission.Require(p.View))
	g.GET("", h.List, view)
	g.POST("/sort/:column", h.Sort, view)
	g.GET("/export", h.Export, view)
	if h.page.ReadOnly {
		return
	}
	write := gate(permission.RequireAny(p.Create, p.Edit))
	g.POST("/form", h.OpenCreate, gate(permission.Require(p.Create)))
	g.POST("/form/:id", h.Edit, gate(permission.Require(p.Edit)))
	g.DELETE("/form", h.CloseForm, view)
	g.POST("/form/blur", h.Blur, write)
	g.POST("/submit", h.Submit, write)
	g.DELETE("/:id", h.Remove, gate(permission.Require(p.Delete)))
	g.POST("/swipe", h.Swipe, view)
	if h.page.Toggle != nil {
		g.POST("/:id/toggle", h.Toggle, gate(permission.Require(p.Edit)))
	}
}

func (h *catalogHandler[T]) catalog(c echo.Context) (*application.Workspace, *application.Catalog[T]) {
	ws := workspaceOf(c)
	return ws, h.page.Catalog(ws)
}

func (h *catalogHandler[T]) List(c echo.Context) error {
	ctx := c.Request().Context()
	ws, cat := h.catalog(c)
	if c.QueryParam("refresh") != "0" {
		if err := cat.Store.FetchAll(ctx); errors.Is(err, domain.ErrUnauthorized) {
			return handleError(c, err)
		}
	}
	st, err := cat.View.Update(func(s *table.State) error { return applyQuery(c, s) })
	if err != nil {
		return handleError(c, err)
	}
	return respond(c, stdhttp.StatusOK, h.view(c, ws, cat, st))
}

// applyQuery folds the table query parameters into the view state: q, f_<column>, size
// and page, in that order so a new search still honours an explicit page.
func applyQuery(c echo.Context, s *table.State) error {
	params := c.QueryParams()
	if params.Has("q") {
		s.SetSearch(params.Get("q"))
	}
	for key, values := range params {
		if col, ok := strings.CutPrefix(key, "f_"); ok && col != "" && len(values) > 0 {
			s.SetFilter(col, values[0])
		}
	}
	if params.Has("size") {
		size, err := strconv.Atoi(params.Get("size"))
		if err != nil {
			return fmt.Errorf("%w: size", domain.ErrInvalidInput)
		}
		if err := s.SetPageSize(size); err != nil {
			return err
		}
	}
	if params.Has("page") {
		page, err := strconv.Atoi(params.Get("page"))
		if err != nil {
			return fmt.Errorf("%w: page", domain.ErrInvalidInput)
		}
		s.SetPage(page)
	}
	return nil
}

func (h *catalogHandler[T]) Sort(c echo.Context) error {
	ws, cat := h.catalog(c)
	key := c.Param("column")
	st, err := cat.View.Update(func(s *table.State) error {
		for _, col := range h.page.Columns {
			if col.Key == key {
				s.ToggleSort(key)
				return nil
			}
		}
		return fmt.Errorf("%w: unknown column %q", domain.ErrInvalidInput, key)
	})
	if err != nil {
		return handleError(c, err)
	}
	return respond(c, stdhttp.StatusOK, h.view(c, ws, cat, st))
}

func (h *catalogHandler[T]) OpenCreate(c echo.Context) error {
	ws, cat := h.catalog(c)
	cat.Store.OpenCreate()
	cat.Form.Reset(cat.Store.Snapshot().Current)
	return respond(c, stdhttp.StatusOK, h.view(c, ws, cat, cat.View.State()))
}

func (h *catalogHandler[T]) Edit(c echo.Context) error {
	ws, cat := h.catalog(c)
	item, err := h.find(c, cat)
	if err != nil {
		return handleError(c, err)
	}
	cat.Store.SelectForEdit(item)
	cat.Form.Reset(item)
	return respond(c, stdhttp.StatusOK, h.view(c, ws, cat, cat.View.State()))
}

func (h *catalogHandler[T]) CloseForm(c echo.Context) error {
	ws, cat := h.catalog(c)
	cat.Store.CloseForm()
	cat.Form.Reset(cat.Store.Snapshot().Current)
	return respond(c, stdhttp.StatusOK, h.view(c, ws, cat, cat.View.State()))
}

func (h *catalogHandler[T]) Blur(c echo.Context) error {
	_, cat := h.catalog(c)
	var req struct {
		Field  string `json:"field"`
		Values T      `json:"values"`
	}
	if err := c.Bind(&req); err != nil || req.Field == "" {
		return handleError(c, fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput))
	}
	errs := cat.Form.Blur(req.Field, req.Values)
	return respond(c, stdhttp.StatusOK, map[string]any{"errors": errs, "form": cat.Form.Snapshot()})
}

func (h *catalogHandler[T]) Submit(c echo.Context) error {
	ctx := c.Request().Context()
	ws, cat := h.catalog(c)
	item, err := bindRecord[T](c)
	if err != nil {
		return handleError(c, err)
	}
	need := h.page.Permissions.Create
	if item.GetID() != 0 {
		need = h.page.Permissions.Edit
	}
	if !permissionsOf(c).Has(need) {
		return c.NoContent(stdhttp.StatusNotFound)
	}
	if h.prepare != nil {
		if item, err = h.prepare(c, item); err != nil {
			return handleError(c, err)
		}
	}
	if err := cat.Form.Submit(ctx, item, cat.Store.Submit); err != nil {
		return handleError(c, err)
	}
	cat.Form.Reset(cat.Store.Snapshot().Current)
	if h.afterWrite != nil {
		if err := h.afterWrite(c, ws); err != nil {
			return handleError(c, err)
		}
	}
	return respond(c, stdhttp.StatusOK, h.view(c, ws, cat, cat.View.State()))
}

func (h *catalogHandler[T]) Remove(c echo.Context) error {
	ws, cat := h.catalog(c)
	item, err := h.find(c, cat)
	if err != nil {
		return handleError(c, err)
	}
	if err := h.remove(c, ws, cat, item); err != nil {
		return handleError(c, err)
	}
	return respond(c, stdhttp.StatusOK, h.view(c, ws, cat, cat.View.State()))
}

func (h *catalogHandler[T]) remove(c echo.Context, ws *application.Workspace, cat *application.Catalog[T], item T) error {
	if err := cat.Store.Remove(c.Request().Context(), item); err != nil {
		return err
	}
	if h.afterWrite != nil {
		return h.afterWrite(c, ws)
	}
	return nil
}

// Toggle flips the page's switch field on one row and saves it.
func (h *catalogHandler[T]) Toggle(c echo.Context) error {
	ws, cat := h.catalog(c)
	item, err := h.find(c, cat)
	if err != nil {
		return handleError(c, err)
	}
	tg := h.page.Toggle
	sw := form.NewSwitch(tg.Get(item))
	if err := cat.Store.Save(c.Request().Context(), tg.Set(item, sw.Toggle())); err != nil {
		return handleError(c, err)
	}
	if h.afterWrite != nil {
		if err := h.afterWrite(c, ws); err != nil {
			return handleError(c, err)
		}
	}
	return respond(c, stdhttp.StatusOK, h.view(c, ws, cat, cat.View.State()))
}

// Swipe resolves a mobile row drag into delete (left) or edit (right). Below the
// threshold or without permission the row springs back and the action is empty.
func (h *catalogHandler[T]) Swipe(c echo.Context) error {
	ws, cat := h.catalog(c)
	var req struct {
		ID int     `json:"id"`
		DX float64 `json:"dx"`
	}
	if err := c.Bind(&req); err != nil {
		return handleError(c, fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput))
	}
	item, ok := cat.Store.Find(req.ID)
	if !ok {
		return handleError(c, domain.ErrNotFound)
	}
	action, ok := h.page.Swipe().Resolve(req.DX, permissionsOf(c))
	if ok {
		switch action.Name {
		case "delete":
			if err := h.remove(c, ws, cat, item); err != nil {
				return handleError(c, err)
			}
		case "edit":
			cat.Store.SelectForEdit(item)
			cat.Form.Reset(item)
		}
	}
	return respond(c, stdhttp.StatusOK, map[string]any{
		"action": action.Name,
		"view":   h.view(c, ws, cat, cat.View.State()),
	})
}

// Export writes the filtered and sorted dataset, every page of it, as a spreadsheet.
func (h *catalogHandler[T]) Export(c echo.Context) error {
	ctx := c.Request().Context()
	_, cat := h.catalog(c)
	if len(cat.Store.Items()) == 0 {
		if err := cat.Store.FetchAll(ctx); err != nil {
			return handleError(c, err)
		}
	}
	rows := table.Rows(cat.Store.Items(), h.page.Columns, cat.View.State())
	var buf bytes.Buffer
	if err := table.ExportXLSX(&buf, h.page.Title, h.page.Columns, rows); err != nil {
		return handleError(c, err)
	}
	h.metrics.IncrementExport(h.page.Name)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", h.page.Name+".xlsx"))
	return c.Blob(stdhttp.StatusOK, xlsxMIME, buf.Bytes())
}

func (h *catalogHandler[T]) find(c echo.Context, cat *application.Catalog[T]) (T, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w: id", domain.ErrInvalidInput)
	}
	item, ok := cat.Store.Find(id)
	if !ok {
		return item, domain.ErrNotFound
	}
	return item, nil
}

func (h *catalogHandler[T]) view(c echo.Context, ws *application.Workspace, cat *application.Catalog[T], st table.State) catalogView[T] {
	snap := cat.Store.Snapshot()
	page := table.Apply(snap.Items, h.page.Columns, st)
	density := table.Density(c.QueryParam("density"))
	budget, _ := strconv.Atoi(c.QueryParam("budget"))
	if budget <= 0 {
		budget = 3
	}
	cols := make([]columnView, 0, len(h.page.Columns))
	for _, col := range h.page.Columns {
		cols = append(cols, columnView{Key: col.Key, Header: col.Header, Searchable: col.Searchable, Tier: col.Tier})
	}
	cells := make([][]string, 0, len(page.Items))
	for _, row := range page.Items {
		line := make([]string, 0, len(h.page.Columns))
		for _, col := range h.page.Columns {
			line = append(line, col.Text(row))
		}
		cells = append(cells, line)
	}
	perms := ws.Permissions.Set()
	p := h.page.Permissions
	return catalogView[T]{
		Title:    h.page.Title,
		Loading:  snap.Loading,
		Error:    snap.Error,
		Columns:  cols,
		Layout:   table.VisibleColumns(h.page.Columns, density, budget),
		Table:    st,
		Page:     page,
		Cells:    cells,
		FormOpen: snap.FormOpen,
		Form:     cat.Form.Snapshot(),
		Actions: actionsView{
			Create: !h.page.ReadOnly && perms.Has(p.Create),
			Edit:   !h.page.ReadOnly && perms.Has(p.Edit),
			Delete: !h.page.ReadOnly && perms.Has(p.Delete),
		},
	}
}
