package service

import "github.com/iliyamo/photoshare-api/internal/model"

// CheckRole allows u when its role is an exact member of allowed.  There
// is no hierarchy: admin does not imply moderator unless both are listed.
// Unknown role values are always rejected.
func CheckRole(u model.User, allowed ...model.Role) error {
	switch u.Role {
	case model.RoleAdmin, model.RoleModerator, model.RoleUser:
	default:
		return ErrForbidden
	}
	for _, r := range allowed {
		if r == u.Role {
			return nil
		}
	}
	return ErrForbidden
}
