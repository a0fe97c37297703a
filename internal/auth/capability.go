package auth

// Capability names one permitted action. Handlers check capabilities, never
// role strings, so role definitions stay in one place.
type Capability string

const (
	CapManageUsers  Capability = "manage_users"
	CapImportData   Capability = "import_data"
	CapManageIssues Capability = "manage_issues"
	CapViewReports  Capability = "view_reports"
	CapRunAnalysis  Capability = "run_analysis"
)

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleViewer  = "viewer"
)

var roleCapabilities = map[string][]Capability{
	RoleAdmin: {
		CapManageUsers, CapImportData, CapManageIssues, CapViewReports, CapRunAnalysis,
	},
	RoleManager: {
		CapImportData, CapManageIssues, CapViewReports, CapRunAnalysis,
	},
	RoleViewer: {
		CapViewReports,
	},
}

// ValidRole reports whether role is one of the defined roles.
func ValidRole(role string) bool {
	_, ok := roleCapabilities[role]
	return ok
}

// RoleHas reports whether the role grants the capability. Unknown roles
// grant nothing.
func RoleHas(role string, c Capability) bool {
	for _, got := range roleCapabilities[role] {
		if got == c {
			return true
		}
	}
	return false
}

// Capabilities returns the capability set for a role, nil for unknown roles.
func Capabilities(role string) []Capability {
	caps := roleCapabilities[role]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}
