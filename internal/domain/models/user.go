package models

// Role is one of the three application roles.
type Role string

const (
	RoleSupervisor Role = "supervisor"
	RoleEncargado  Role = "encargado"
	RolePollero    Role = "pollero"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleSupervisor, RoleEncargado, RolePollero:
		return true
	}
	return false
}

// Admin reports whether r grants cross-shed and user administration access.
func (r Role) Admin() bool {
	return r == RoleSupervisor || r == RoleEncargado
}

// User is the profile document stored at users/{uid}. The uid comes from the
// identity provider and doubles as the document key.
type User struct {
	UID          string `bson:"_id" json:"uid"`
	Email        string `bson:"email" json:"email"`
	Name         string `bson:"name" json:"name"`
	Role         Role   `bson:"role" json:"role"`
	AssignedShed string `bson:"assigned_shed,omitempty" json:"assignedShed,omitempty"`
}
