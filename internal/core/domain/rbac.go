package domain

// Role is the coarse access level assigned to a user.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	default:
		return false
	}
}

// Allow reports whether role is a member of required.
func Allow(required []Role, role Role) bool {
	for _, candidate := range required {
		if candidate == role {
			return true
		}
	}
	return false
}
