package auth

import "strings"

type Role string

const (
	RoleUser          Role = "user"
	RoleOrganizer     Role = "organizer"
	RoleDoctor        Role = "doctor"
	RolePropertyOwner Role = "property-owner"
	RoleAdmin         Role = "admin"
)

// ValidRole reports whether role names a member of the closed role set.
func ValidRole(role string) bool {
	switch Role(strings.ToLower(strings.TrimSpace(role))) {
	case RoleUser, RoleOrganizer, RoleDoctor, RolePropertyOwner, RoleAdmin:
		return true
	default:
		return false
	}
}

func NormalizeRole(role string) Role {
	normalized := Role(strings.ToLower(strings.TrimSpace(role)))
	switch normalized {
	case RoleUser, RoleOrganizer, RoleDoctor, RolePropertyOwner, RoleAdmin:
		return normalized
	default:
		return RoleUser
	}
}

func HasRole(role string, allowed ...Role) bool {
	if len(allowed) == 0 {
		return false
	}
	current := NormalizeRole(role)
	for _, candidate := range allowed {
		if current == candidate {
			return true
		}
	}
	return false
}

func IsAdmin(role string) bool {
	return NormalizeRole(role) == RoleAdmin
}
