package constants

const (
	Investor = "investor"
	Admin    = "admin"
)

// ValidRoles lists every role a session user can carry.
var ValidRoles = []string{Investor, Admin}

// RoleFor maps the users.is_admin flag to a session role.
func RoleFor(isAdmin bool) string {
	if isAdmin {
		return Admin
	}
	return Investor
}

// IsValidRole returns true if role is one of ValidRoles.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
