package auth

import (
	"errors"
	"strings"
)

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleOrganizer Role = "ORGANIZER"
	RoleAttendee  Role = "ATTENDEE"
)

// DefaultRole is assigned when a signup does not request a role.
const DefaultRole = RoleAttendee

var ErrUnknownRole = errors.New("unknown role")

// ParseRole maps a string onto the closed role set. Unknown values are
// rejected rather than defaulted, so callers can surface a validation error.
func ParseRole(value string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleOrganizer:
		return RoleOrganizer, nil
	case RoleAttendee:
		return RoleAttendee, nil
	default:
		return "", ErrUnknownRole
	}
}

func HasRole(role string, allowed ...Role) bool {
	if len(allowed) == 0 {
		return false
	}
	current, err := ParseRole(role)
	if err != nil {
		return false
	}
	for _, candidate := range allowed {
		if current == candidate {
			return true
		}
	}
	return false
}

func IsAdmin(role string) bool {
	return HasRole(role, RoleAdmin)
}
