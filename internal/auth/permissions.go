package auth

// Capability constants define the available permissions in the system.
// These are used for role-based access control (RBAC) to restrict access
// to specific resources and actions. The names are an interface contract
// shared with external tooling and must not be changed.
const (
	// PermViewUsers allows listing and viewing user accounts.
	PermViewUsers = "view-users"
	// PermCreateUsers allows creating user accounts.
	PermCreateUsers = "create-users"
	// PermEditUsers allows editing user accounts.
	PermEditUsers = "edit-users"
	// PermDeleteUsers allows deleting user accounts.
	PermDeleteUsers = "delete-users"
	// PermSuspendUsers allows suspending and unsuspending user accounts.
	PermSuspendUsers = "suspend-users"

	// PermViewRoles allows listing and viewing roles.
	PermViewRoles = "view-roles"
	// PermCreateRoles allows creating roles.
	PermCreateRoles = "create-roles"
	// PermEditRoles allows editing roles and their permissions.
	PermEditRoles = "edit-roles"
	// PermDeleteRoles allows deleting roles.
	PermDeleteRoles = "delete-roles"

	// PermViewPermissions allows listing and viewing permissions.
	PermViewPermissions = "view-permissions"
	// PermCreatePermissions allows creating permissions.
	PermCreatePermissions = "create-permissions"
	// PermEditPermissions allows editing permissions.
	PermEditPermissions = "edit-permissions"
	// PermDeletePermissions allows deleting permissions.
	PermDeletePermissions = "delete-permissions"

	// PermViewSettings allows viewing application-wide settings.
	PermViewSettings = "view-settings"
	// PermEditSettings allows managing application-wide settings.
	PermEditSettings = "edit-settings"
)

// AllCapabilities lists every capability seeded into a fresh database.
func AllCapabilities() []string {
	return []string{
		PermViewUsers,
		PermCreateUsers,
		PermEditUsers,
		PermDeleteUsers,
		PermSuspendUsers,
		PermViewRoles,
		PermCreateRoles,
		PermEditRoles,
		PermDeleteRoles,
		PermViewPermissions,
		PermCreatePermissions,
		PermEditPermissions,
		PermDeletePermissions,
		PermViewSettings,
		PermEditSettings,
	}
}
