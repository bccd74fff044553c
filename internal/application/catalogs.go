package application

import (
	"strconv"

	"penalty-console/internal/application/table"
	"penalty-console/internal/domain"
)

type CatalogPermissions struct {
	View   string
	Create string
	Edit   string
	Delete string
}

// CatalogPage describes one list page: its columns, the permissions guarding each action
// and where its state lives in a workspace.
type CatalogPage[T domain.Entity] struct {
	Name        string
	Title       string
	Columns     []table.Column[T]
	Permissions CatalogPermissions
	ReadOnly    bool
	// Toggle, when set, flips a boolean field straight from the table row.
	Toggle  *Toggle[T]
	Catalog func(*Workspace) *Catalog[T]
}

type Toggle[T domain.Entity] struct {
	Field string
	Get   func(T) bool
	Set   func(T, bool) T
}

// Swipe binds delete to a left drag and edit to a right drag, each behind its permission.
func (p CatalogPage[T]) Swipe() table.Swipe {
	if p.ReadOnly {
		return table.Swipe{}
	}
	return table.Swipe{
		Threshold: table.DefaultSwipeThreshold,
		Left:      &table.SwipeAction{Name: "delete", Permission: p.Permissions.Delete},
		Right:     &table.SwipeAction{Name: "edit", Permission: p.Permissions.Edit},
	}
}

func itoa(n int) string { return strconv.Itoa(n) }

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func idColumn[T domain.Entity]() table.Column[T] {
	return table.Column[T]{Key: "id", Header: "ID", Value: func(t T) string { return itoa(t.GetID()) }, Tier: table.TierDesktop}
}

func namedColumns[T domain.Entity](name func(T) string, active func(T) bool) []table.Column[T] {
	return []table.Column[T]{
		idColumn[T](),
		{Key: "name", Header: "Name", Value: name, Searchable: true, Tier: table.TierAlways},
		{Key: "active", Header: "Active", Value: func(t T) string { return yesNo(active(t)) }, Tier: table.TierDesktop},
	}
}

func DoctorsPage() CatalogPage[domain.Doctor] {
	return CatalogPage[domain.Doctor]{
		Name:  "doctors",
		Title: "Doctors",
		Columns: []table.Column[domain.Doctor]{
			idColumn[domain.Doctor](),
			{Key: "name", Header: "Name", Value: func(d domain.Doctor) string { return d.Name }, Searchable: true, Tier: table.TierAlways},
			{Key: "certificate", Header: "Certificate", Value: func(d domain.Doctor) string { return d.Certificate }, Searchable: true, Tier: table.TierDesktop},
			{Key: "phone", Header: "Phone", Value: func(d domain.Doctor) string { return d.Phone }, Tier: table.TierExpanded},
			{Key: "active", Header: "Active", Value: func(d domain.Doctor) string { return yesNo(d.Active) }, Tier: table.TierDesktop},
		},
		Permissions: CatalogPermissions{domain.PermDoctorView, domain.PermDoctorCreate, domain.PermDoctorEdit, domain.PermDoctorDelete},
		Toggle: &Toggle[domain.Doctor]{
			Field: "active",
			Get:   func(d domain.Doctor) bool { return d.Active },
			Set:   func(d domain.Doctor, on bool) domain.Doctor { d.Active = on; return d },
		},
		Catalog: func(ws *Workspace) *Catalog[domain.Doctor] { return ws.Doctors },
	}
}

func DependencesPage() CatalogPage[domain.Dependence] {
	return CatalogPage[domain.Dependence]{
		Name:  "dependences",
		Title: "Dependences",
		Columns: namedColumns(func(d domain.Dependence) string { return d.Name },
			func(d domain.Dependence) bool { return d.Active }),
		Permissions: CatalogPermissions{domain.PermDependenceView, domain.PermDependenceCreate, domain.PermDependenceEdit, domain.PermDependenceDelete},
		Catalog:     func(ws *Workspace) *Catalog[domain.Dependence] { return ws.Dependences },
	}
}

func ProceduresPage() CatalogPage[domain.Procedure] {
	return CatalogPage[domain.Procedure]{
		Name:  "procedures",
		Title: "Procedures",
		Columns: namedColumns(func(p domain.Procedure) string { return p.Name },
			func(p domain.Procedure) bool { return p.Active }),
		Permissions: CatalogPermissions{domain.PermProcedureView, domain.PermProcedureCreate, domain.PermProcedureEdit, domain.PermProcedureDelete},
		Catalog:     func(ws *Workspace) *Catalog[domain.Procedure] { return ws.Procedures },
	}
}

func CausesPage() CatalogPage[domain.CauseOfDetention] {
	return CatalogPage[domain.CauseOfDetention]{
		Name:  "causes",
		Title: "Causes of detention",
		Columns: namedColumns(func(c domain.CauseOfDetention) string { return c.Name },
			func(c domain.CauseOfDetention) bool { return c.Active }),
		Permissions: CatalogPermissions{domain.PermCauseView, domain.PermCauseCreate, domain.PermCauseEdit, domain.PermCauseDelete},
		Catalog:     func(ws *Workspace) *Catalog[domain.CauseOfDetention] { return ws.Causes },
	}
}

func CourtsPage() CatalogPage[domain.Court] {
	return CatalogPage[domain.Court]{
		Name:  "courts",
		Title: "Courts",
		Columns: []table.Column[domain.Court]{
			idColumn[domain.Court](),
			{Key: "name", Header: "Name", Value: func(c domain.Court) string { return c.Name }, Searchable: true, Tier: table.TierAlways},
			{Key: "address", Header: "Address", Value: func(c domain.Court) string { return c.Address }, Searchable: true, Tier: table.TierExpanded},
			{Key: "active", Header: "Active", Value: func(c domain.Court) string { return yesNo(c.Active) }, Tier: table.TierDesktop},
		},
		Permissions: CatalogPermissions{domain.PermCourtView, domain.PermCourtCreate, domain.PermCourtEdit, domain.PermCourtDelete},
		Catalog:     func(ws *Workspace) *Catalog[domain.Court] { return ws.Courts },
	}
}

func UsersPage() CatalogPage[domain.User] {
	return CatalogPage[domain.User]{
		Name:  "users",
		Title: "Users",
		Columns: []table.Column[domain.User]{
			idColumn[domain.User](),
			{Key: "name", Header: "Name", Value: func(u domain.User) string { return u.Name }, Searchable: true, Tier: table.TierAlways},
			{Key: "username", Header: "Username", Value: func(u domain.User) string { return u.Username }, Searchable: true, Tier: table.TierAlways},
			{Key: "email", Header: "Email", Value: func(u domain.User) string { return u.Email }, Searchable: true, Tier: table.TierDesktop},
			{Key: "permissions", Header: "Permissions", Value: func(u domain.User) string { return itoa(len(u.Permissions)) }, Tier: table.TierExpanded},
			{Key: "active", Header: "Active", Value: func(u domain.User) string { return yesNo(u.Active) }, Tier: table.TierDesktop},
		},
		Permissions: CatalogPermissions{domain.PermUserView, domain.PermUserCreate, domain.PermUserEdit, domain.PermUserDelete},
		Catalog:     func(ws *Workspace) *Catalog[domain.User] { return ws.Users },
	}
}

func TechnicalRecordsPage() CatalogPage[domain.TechnicalRecord] {
	return CatalogPage[domain.TechnicalRecord]{
		Name:  "technical-records",
		Title: "Technical records",
		Columns: []table.Column[domain.TechnicalRecord]{
			{Key: "folio", Header: "Folio", Value: func(r domain.TechnicalRecord) string { return r.Folio }, Searchable: true, Tier: table.TierAlways},
			{Key: "name", Header: "Name", Value: func(r domain.TechnicalRecord) string { return r.Name }, Searchable: true, Tier: table.TierAlways},
			{Key: "age", Header: "Age", Value: func(r domain.TechnicalRecord) string { return itoa(r.Age) }, Tier: table.TierDesktop},
			{Key: "sex", Header: "Sex", Value: func(r domain.TechnicalRecord) string { return r.Sex }, Tier: table.TierDesktop},
			{Key: "address", Header: "Address", Value: func(r domain.TechnicalRecord) string { return r.Address }, Tier: table.TierExpanded},
			{Key: "observations", Header: "Observations", Value: func(r domain.TechnicalRecord) string { return r.Observations }, Tier: table.TierExpanded},
		},
		Permissions: CatalogPermissions{domain.PermTechnicalView, domain.PermTechnicalCreate, domain.PermTechnicalEdit, domain.PermTechnicalDelete},
		Catalog:     func(ws *Workspace) *Catalog[domain.TechnicalRecord] { return ws.TechnicalRecords },
	}
}

func PenaltiesPage() CatalogPage[domain.Penalty] {
	return CatalogPage[domain.Penalty]{
		Name:  "penalties",
		Title: "Penalties",
		Columns: []table.Column[domain.Penalty]{
			idColumn[domain.Penalty](),
			{Key: "name", Header: "Name", Value: func(p domain.Penalty) string { return p.Name }, Searchable: true, Tier: table.TierAlways},
			{Key: "date", Header: "Date", Value: func(p domain.Penalty) string { return p.Date }, Searchable: true, Tier: table.TierAlways},
			{Key: "time", Header: "Time", Value: func(p domain.Penalty) string { return p.Time }, Tier: table.TierDesktop},
			{Key: "amount", Header: "Amount",
				Value:  func(p domain.Penalty) string { return strconv.FormatFloat(p.Amount, 'f', 2, 64) },
				Render: func(p domain.Penalty) string { return "$" + strconv.FormatFloat(p.Amount, 'f', 2, 64) },
				Tier:   table.TierDesktop},
			{Key: "alcohol_level", Header: "Alcohol level", Value: func(p domain.Penalty) string { return p.AlcoholLevel }, Tier: table.TierExpanded},
			{Key: "address", Header: "Address", Value: func(p domain.Penalty) string { return p.Address }, Tier: table.TierExpanded},
			{Key: "observations", Header: "Observations", Value: func(p domain.Penalty) string { return p.Observations }, Tier: table.TierExpanded},
		},
		Permissions: CatalogPermissions{domain.PermPenaltyView, domain.PermPenaltyCreate, domain.PermPenaltyEdit, domain.PermPenaltyDelete},
		Catalog:     func(ws *Workspace) *Catalog[domain.Penalty] { return ws.Penalties },
	}
}

func TasksPage() CatalogPage[domain.Task] {
	return CatalogPage[domain.Task]{
		Name:  "tasks",
		Title: "Tasks",
		Columns: []table.Column[domain.Task]{
			{Key: "title", Header: "Title", Value: func(t domain.Task) string { return t.Title }, Searchable: true, Tier: table.TierAlways},
			{Key: "description", Header: "Description", Value: func(t domain.Task) string { return t.Description }, Searchable: true, Tier: table.TierExpanded},
			{Key: "color", Header: "Color", Value: func(t domain.Task) string { return t.Color }, Tier: table.TierDesktop},
			{Key: "done", Header: "Done", Value: func(t domain.Task) string { return yesNo(t.Done) }, Tier: table.TierAlways},
		},
		Permissions: CatalogPermissions{domain.PermTaskView, domain.PermTaskCreate, domain.PermTaskEdit, domain.PermTaskDelete},
		Toggle: &Toggle[domain.Task]{
			Field: "done",
			Get:   func(t domain.Task) bool { return t.Done },
			Set:   func(t domain.Task, on bool) domain.Task { t.Done = on; return t },
		},
		Catalog: func(ws *Workspace) *Catalog[domain.Task] { return ws.Tasks },
	}
}

// LogsPage is the read-only audit log viewer.
func LogsPage() CatalogPage[domain.LogEntry] {
	return CatalogPage[domain.LogEntry]{
		Name:  "logs",
		Title: "Activity log",
		Columns: []table.Column[domain.LogEntry]{
			{Key: "created_at", Header: "Date", Value: func(l domain.LogEntry) string { return l.CreatedAt.UTC().Format("2006-01-02 15:04:05") }, Tier: table.TierAlways},
			{Key: "user_name", Header: "User", Value: func(l domain.LogEntry) string { return l.UserName }, Searchable: true, Tier: table.TierAlways},
			{Key: "module", Header: "Module", Value: func(l domain.LogEntry) string { return l.Module }, Searchable: true, Tier: table.TierDesktop},
			{Key: "action", Header: "Action", Value: func(l domain.LogEntry) string { return l.Action }, Searchable: true, Tier: table.TierDesktop},
			{Key: "description", Header: "Description", Value: func(l domain.LogEntry) string { return l.Description }, Searchable: true, Tier: table.TierExpanded},
		},
		Permissions: CatalogPermissions{View: domain.PermLogView},
		ReadOnly:    true,
		Catalog:     func(ws *Workspace) *Catalog[domain.LogEntry] { return ws.Logs },
	}
}
