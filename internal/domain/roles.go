package domain

type Role string

const (
	// Staff can manage their own warehouses, products, suppliers and orders.
	RoleStaff Role = "staff"
	// Admin additionally manages the user directory.
	RoleAdmin Role = "admin"
)

func IsValidRole(r string) bool {
	return r == string(RoleStaff) || r == string(RoleAdmin)
}

// RoleRank: bigger => higher privilege
func RoleRank(r string) int {
	switch r {
	case string(RoleStaff):
		return 1
	case string(RoleAdmin):
		return 2
	default:
		return 0
	}
}
