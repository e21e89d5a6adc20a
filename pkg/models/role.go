package models

// Role is one of the four fixed actors in the approval workflow. Each role
// owns a disjoint subset of the product's fields and must sign off before a
// product can be dispatched to the regulator.
type Role string

const (
	RoleProductOwner  Role = "Продуктолог"
	RoleUnderwriter   Role = "Андеррайтер"
	RoleActuary       Role = "Актуарий"
	RoleMethodologist Role = "Методолог"
)

// AllRoles lists the four roles in their canonical display order.
var AllRoles = []Role{
	RoleProductOwner,
	RoleUnderwriter,
	RoleActuary,
	RoleMethodologist,
}

// IsValidRole checks if the given role is one of the four fixed roles.
func IsValidRole(r Role) bool {
	for _, v := range AllRoles {
		if v == r {
			return true
		}
	}
	return false
}

// String returns the string representation of a Role.
func (r Role) String() string {
	return string(r)
}
