package domain

const (
	PrefixCatalog = "catalogo_"

	PermDoctorView   = "catalogo_doctor_ver"
	PermDoctorCreate = "catalogo_doctor_crear"
	PermDoctorEdit   = "catalogo_doctor_editar"
	PermDoctorDelete = "catalogo_doctor_eliminar"

	PermDependenceView   = "catalogo_dependencia_ver"
	PermDependenceCreate = "catalogo_dependencia_crear"
	PermDependenceEdit   = "catalogo_dependencia_editar"
	PermDependenceDelete = "catalogo_dependencia_eliminar"

	PermProcedureView   = "catalogo_procedimiento_ver"
	PermProcedureCreate = "catalogo_procedimiento_crear"
	PermProcedureEdit   = "catalogo_procedimiento_editar"
	PermProcedureDelete = "catalogo_procedimiento_eliminar"

	PermCauseView   = "catalogo_causa_ver"
	PermCauseCreate = "catalogo_causa_crear"
	PermCauseEdit   = "catalogo_causa_editar"
	PermCauseDelete = "catalogo_causa_eliminar"

	PermCourtView   = "catalogo_juzgado_ver"
	PermCourtCreate = "catalogo_juzgado_crear"
	PermCourtEdit   = "catalogo_juzgado_editar"
	PermCourtDelete = "catalogo_juzgado_eliminar"

	PermUserView   = "usuarios_ver"
	PermUserCreate = "usuarios_crear"
	PermUserEdit   = "usuarios_editar"
	PermUserDelete = "usuarios_eliminar"

	PermTechnicalView   = "ficha_tecnica_ver"
	PermTechnicalCreate = "ficha_tecnica_crear"
	PermTechnicalEdit   = "ficha_tecnica_editar"
	PermTechnicalDelete = "ficha_tecnica_eliminar"

	PermPenaltyView   = "multas_ver"
	PermPenaltyCreate = "multas_crear"
	PermPenaltyEdit   = "multas_editar"
	PermPenaltyDelete = "multas_eliminar"

	PermTaskView   = "tareas_ver"
	PermTaskCreate = "tareas_crear"
	PermTaskEdit   = "tareas_editar"
	PermTaskDelete = "tareas_eliminar"

	PermLogView       = "logs_ver"
	PermDashboardView = "dashboard_ver"
)
