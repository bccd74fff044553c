package application

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"penalty-console/internal/application/form"
	"penalty-console/internal/application/notify"
	"penalty-console/internal/application/permission"
	"penalty-console/internal/application/store"
	"penalty-console/internal/application/table"
	"penalty-console/internal/domain"
	"penalty-console/internal/ports"
)

// Repositories is the set of remote collaborators a workspace is wired against.
type Repositories struct {
	Doctors          ports.Repository[domain.Doctor]
	Dependences      ports.Repository[domain.Dependence]
	Procedures       ports.Repository[domain.Procedure]
	Causes           ports.Repository[domain.CauseOfDetention]
	Courts           ports.Repository[domain.Court]
	Users            ports.Repository[domain.User]
	TechnicalRecords ports.Repository[domain.TechnicalRecord]
	Tasks            ports.Repository[domain.Task]
	Logs             ports.Repository[domain.LogEntry]
	Penalties        ports.Repository[domain.Penalty]
	PenaltyPreloads  ports.Repository[domain.PenaltyPreload]
	PenaltyReport    ports.ReportRepository[domain.PenaltyReport]
}

// Catalog groups what one page needs: the store, its edit form and the table view state.
type Catalog[T domain.Entity] struct {
	Name  string
	Store *store.Store[T]
	Form  *form.Form[T]
	View  *table.View
}

func newCatalog[T domain.Entity](name string, repo ports.Repository[T], notes ports.Notifier, logger ports.Logger, v *validator.Validate, blank func() T) *Catalog[T] {
	return &Catalog[T]{
		Name:  name,
		Store: store.New(repo, notes, logger, blank),
		Form:  form.New[T](v),
		View:  table.NewView(),
	}
}

// Workspace is the application-state root of one operator session. Pages receive it by
// reference; nothing here is global.
type Workspace struct {
	mu      sync.RWMutex
	session domain.Session

	Permissions   *permission.Store
	Notifications *notify.Queue

	Doctors          *Catalog[domain.Doctor]
	Dependences      *Catalog[domain.Dependence]
	Procedures       *Catalog[domain.Procedure]
	Causes           *Catalog[domain.CauseOfDetention]
	Courts           *Catalog[domain.Court]
	Users            *Catalog[domain.User]
	TechnicalRecords *Catalog[domain.TechnicalRecord]
	Tasks            *Catalog[domain.Task]
	Logs             *Catalog[domain.LogEntry]
	Penalties        *Catalog[domain.Penalty]
	Preloads         *store.Store[domain.PenaltyPreload]
	Wizard           *PenaltyWizard
}

func NewWorkspace(session domain.Session, repos Repositories, logger ports.Logger) *Workspace {
	notes := notify.NewQueue(20)
	v := form.NewValidator()
	ws := &Workspace{
		session:       session,
		Permissions:   permission.NewStore(session.Permissions),
		Notifications: notes,
		Doctors: newCatalog("doctors", repos.Doctors, notes, logger, v,
			func() domain.Doctor { return domain.Doctor{Active: true} }),
		Dependences: newCatalog("dependences", repos.Dependences, notes, logger, v,
			func() domain.Dependence { return domain.Dependence{Active: true} }),
		Procedures: newCatalog("procedures", repos.Procedures, notes, logger, v,
			func() domain.Procedure { return domain.Procedure{Active: true} }),
		Causes: newCatalog("causes", repos.Causes, notes, logger, v,
			func() domain.CauseOfDetention { return domain.CauseOfDetention{Active: true} }),
		Courts: newCatalog("courts", repos.Courts, notes, logger, v,
			func() domain.Court { return domain.Court{Active: true} }),
		Users: newCatalog("users", repos.Users, notes, logger, v,
			func() domain.User { return domain.User{Active: true, Permissions: []string{}} }),
		TechnicalRecords: newCatalog("technical-records", repos.TechnicalRecords, notes, logger, v,
			func() domain.TechnicalRecord { return domain.TechnicalRecord{Active: true} }),
		Tasks: newCatalog("tasks", repos.Tasks, notes, logger, v,
			func() domain.Task { return domain.Task{Color: form.DefaultPalette[0]} }),
		Logs: newCatalog[domain.LogEntry]("logs", repos.Logs, notes, logger, v, nil),
		Penalties: newCatalog("penalties", repos.Penalties, notes, logger, v,
			func() domain.Penalty { return domain.Penalty{Active: true} }),
		Preloads: store.New[domain.PenaltyPreload](repos.PenaltyPreloads, notes, logger, nil),
	}
	ws.Wizard = NewPenaltyWizard(ws.Penalties.Store, ws.Preloads, v, WizardSources{
		Doctors:     optionSource(ws.Doctors.Store, func(d domain.Doctor) string { return d.Name }),
		Dependences: optionSource(ws.Dependences.Store, func(d domain.Dependence) string { return d.Name }),
		Procedures:  optionSource(ws.Procedures.Store, func(p domain.Procedure) string { return p.Name }),
		Causes:      optionSource(ws.Causes.Store, func(c domain.CauseOfDetention) string { return c.Name }),
		Courts:      optionSource(ws.Courts.Store, func(c domain.Court) string { return c.Name }),
	})
	return ws
}

// optionSource refreshes a catalog and offers its records as lookup options.
func optionSource[T domain.Entity](s *store.Store[T], label func(T) string) form.OptionSource {
	return func(ctx context.Context) ([]form.Option, error) {
		if err := s.FetchAll(ctx); err != nil {
			return nil, err
		}
		return form.OptionsFrom(s.Items(), label), nil
	}
}

func (w *Workspace) Session() domain.Session {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s := w.session
	s.Permissions = w.Permissions.Set().Tokens()
	return s
}

func (w *Workspace) replacePermissions(tokens []string) domain.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Permissions.Load(tokens)
	w.session.Permissions = append([]string(nil), tokens...)
	return w.session
}

// Workspaces keeps one workspace per live session.
type Workspaces struct {
	mu     sync.Mutex
	items  map[string]*Workspace
	repos  Repositories
	logger ports.Logger
}

func NewWorkspaces(repos Repositories, logger ports.Logger) *Workspaces {
	return &Workspaces{items: map[string]*Workspace{}, repos: repos, logger: logger}
}

// Open returns the session's workspace, mounting a new one (with permissions loaded from
// the persisted session) when none is live.
func (w *Workspaces) Open(session domain.Session) *Workspace {
	w.mu.Lock()
	defer w.mu.Unlock()
	if ws, ok := w.items[session.ID]; ok {
		return ws
	}
	ws := NewWorkspace(session, w.repos, w.logger)
	w.items[session.ID] = ws
	return ws
}

func (w *Workspaces) Get(id string) (*Workspace, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ws, ok := w.items[id]
	return ws, ok
}

func (w *Workspaces) Drop(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.items, id)
}

// Sweep drops every workspace whose session has expired by now and returns their ids.
func (w *Workspaces) Sweep(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var dropped []string
	for id, ws := range w.items {
		if ws.Session().Expired(now) {
			delete(w.items, id)
			dropped = append(dropped, id)
		}
	}
	return dropped
}

func (w *Workspaces) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items)
}
