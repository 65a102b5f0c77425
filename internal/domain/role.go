package domain

// Role es el rol de un usuario dentro de una organizacion.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// clerkAdminRole es el valor que envia el proveedor para administradores.
const clerkAdminRole = "org:admin"

// RoleFromProvider traduce el rol del proveedor: solo "org:admin" es admin.
func RoleFromProvider(raw string) Role {
	if raw == clerkAdminRole {
		return RoleAdmin
	}
	return RoleMember
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}
