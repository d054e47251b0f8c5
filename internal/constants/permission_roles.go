package constants

// PermissionRoles maps each permission to the roles allowed to perform it.
var PermissionRoles = map[string][]string{
	ViewData:          {Investor, Admin},
	Invest:            {Investor, Admin},
	RequestWithdrawal: {Investor, Admin},
	ManageFirms:       {Admin},
	ManageInvestments: {Admin},
	ManageWithdrawals: {Admin},
	ManageBalances:    {Admin},
	AssignRole:        {Admin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
