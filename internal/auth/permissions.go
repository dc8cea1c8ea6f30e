package auth

// Permission constants define the available permissions in the system.
// These are used for role-based access control (RBAC) to restrict access
// to specific resources and actions.
const (
	// PermDashboardView allows viewing the compliance dashboard.
	PermDashboardView = "dashboard.view"

	// PermCatalogueView allows viewing regulatory sources and requirements.
	PermCatalogueView = "catalogue.view"
	// PermCatalogueManage allows creating, editing and deleting regulatory
	// sources, requirements and applicability rules.
	PermCatalogueManage = "catalogue.manage"

	// PermDocumentView allows viewing policy documents.
	PermDocumentView = "document.view"
	// PermDocumentManage allows creating, editing and deleting policy documents.
	PermDocumentManage = "document.manage"

	// PermMappingView allows viewing coverage mappings and their audit trail.
	PermMappingView = "mapping.view"
	// PermMappingManage allows linking, editing and unlinking coverage mappings.
	PermMappingManage = "mapping.manage"

	// PermUnitManage allows managing business units.
	PermUnitManage = "unit.manage"

	// PermRegisterView allows viewing risks, findings and audits.
	PermRegisterView = "register.view"
	// PermRegisterManage allows managing risks, findings and audits.
	PermRegisterManage = "register.manage"

	// PermAnalysisRun allows running the gap analysis batch, including the
	// content refresh that rewrites mapping statuses.
	PermAnalysisRun = "analysis.run"
	// PermAIRun allows starting and cancelling AI auto-map and assessment jobs.
	PermAIRun = "ai.run"

	// PermAdminUsers allows managing user accounts.
	PermAdminUsers = "admin.users"
	// PermAdminRoles allows managing roles and their permissions.
	PermAdminRoles = "admin.roles"
	// PermAdminSettings allows managing application-wide settings.
	PermAdminSettings = "admin.settings"
)

// AllPermissions lists every permission the seed creates.
var AllPermissions = []string{
	PermDashboardView,
	PermCatalogueView,
	PermCatalogueManage,
	PermDocumentView,
	PermDocumentManage,
	PermMappingView,
	PermMappingManage,
	PermUnitManage,
	PermRegisterView,
	PermRegisterManage,
	PermAnalysisRun,
	PermAIRun,
	PermAdminUsers,
	PermAdminRoles,
	PermAdminSettings,
}
