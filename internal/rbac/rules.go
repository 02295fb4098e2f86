package rbac

// Role strings match the values stored in the users table (and shown in the
// UI), not lowercase identifiers.
const (
	RoleAdmin         = "Admin"
	RoleAdviser       = "Course Adviser"
	RolePanel         = "Panel"
	RoleExternalPanel = "External Panel"
)

// Simple default policy. Course advisers can sit as internal panelists, so
// they hold grade:submit alongside their reporting permissions.
var RolePermissions = map[string][]string{
	RolePanel: {
		"group:list",
		"group:view",
		"grade:submit",
		"awards:view",
		"user:change_password",
	},
	RoleExternalPanel: {
		"group:list",
		"group:view",
		"grade:submit",
		"awards:view",
		"user:change_password",
	},
	RoleAdviser: {
		"group:list",
		"group:view",
		"grade:submit",
		"awards:view",
		"reports:view",
		"users:list",
		"user:change_password",
	},
	RoleAdmin: {
		"*", // everything
	},
}
