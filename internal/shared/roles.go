package shared

// Roles recognised across the application.
const (
	RoleAdmin    = "admin"
	RoleEngineer = "engineer"
	RoleFinance  = "finance"
	RoleSales    = "sales"
	RoleCashier  = "cashier"
)

// KnownRoles lists every valid account role.
func KnownRoles() []string {
	return []string{RoleAdmin, RoleEngineer, RoleFinance, RoleSales, RoleCashier}
}

// ValidRole reports whether role is one of the known account roles.
func ValidRole(role string) bool {
	for _, r := range KnownRoles() {
		if r == role {
			return true
		}
	}
	return false
}
