package auth

// Permission names checked by services and route middleware.
const (
	PermissionViewOwnLeaves  = "view_own_leaves"
	PermissionApplyLeave     = "apply_leave"
	PermissionApproveLeaves  = "approve_leaves"
	PermissionRejectLeaves   = "reject_leaves"
	PermissionViewTeamLeaves = "view_team_leaves"
	PermissionManager        = "manager"
	PermissionAdmin          = "admin"
)

var rolePermissions = map[string][]string{
	"employee": {
		PermissionViewOwnLeaves,
		PermissionApplyLeave,
	},
	"manager": {
		PermissionViewOwnLeaves,
		PermissionApplyLeave,
		PermissionApproveLeaves,
		PermissionRejectLeaves,
		PermissionViewTeamLeaves,
		PermissionManager,
	},
	"admin": {
		PermissionViewOwnLeaves,
		PermissionApplyLeave,
		PermissionApproveLeaves,
		PermissionRejectLeaves,
		PermissionViewTeamLeaves,
		PermissionManager,
		PermissionAdmin,
	},
}

// PermissionsForRole resolves the permission set derived from a role.
// Unknown roles get no permissions.
func PermissionsForRole(role string) []string {
	perms, ok := rolePermissions[role]
	if !ok {
		return nil
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

func HasPermission(perms []string, want string) bool {
	for _, p := range perms {
		if p == want {
			return true
		}
	}
	return false
}
