package model

// Role is the closed set of marketplace account roles.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleCustomer:
		return true
	}
	return false
}

// LoginPath returns the browser login route for the role.
func (r Role) LoginPath() string {
	return "/login/" + string(r)
}

// APIPrefix returns the upstream endpoint segment for the role,
// e.g. "/owners" for role owner.
func (r Role) APIPrefix() string {
	return "/" + string(r) + "s"
}
