package domain

import "time"

// User es la cuenta local ligada a una identidad externa.
type User struct {
	ID              string          `json:"id"`
	TokenIdentifier string          `json:"token_identifier"`
	Name            string          `json:"name"`
	Image           string          `json:"image"`
	OrgIDs          []OrgMembership `json:"org_ids"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrgMembership vincula un usuario con una organizacion y su rol.
type OrgMembership struct {
	OrgID string `json:"org_id"`
	Role  Role   `json:"role"`
}

// HasOrg indica si el usuario ya pertenece a la organizacion.
func (u User) HasOrg(orgID string) bool {
	for _, m := range u.OrgIDs {
		if m.OrgID == orgID {
			return true
		}
	}
	return false
}

// WithOrg devuelve las membresias agregando orgID al final si no estaba.
// El segundo valor es false cuando no hubo cambios.
func (u User) WithOrg(orgID string, role Role) ([]OrgMembership, bool) {
	if u.HasOrg(orgID) {
		return u.OrgIDs, false
	}
	out := make([]OrgMembership, 0, len(u.OrgIDs)+1)
	out = append(out, u.OrgIDs...)
	out = append(out, OrgMembership{OrgID: orgID, Role: role})
	return out, true
}

// WithRole devuelve las membresias con el rol de orgID reemplazado.
// Si orgID no esta presente la lista queda igual y el segundo valor es false.
func (u User) WithRole(orgID string, role Role) ([]OrgMembership, bool) {
	out := make([]OrgMembership, len(u.OrgIDs))
	copy(out, u.OrgIDs)
	changed := false
	for i := range out {
		if out[i].OrgID == orgID {
			out[i].Role = role
			changed = true
		}
	}
	return out, changed
}
