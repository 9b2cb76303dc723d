package session

import (
	"errors"
	"time"
)

type Role string

const (
	RoleAnonymous     Role = ""
	RolePatient       Role = "patient"
	RoleLoggedPatient Role = "loggedPatient"
	RoleDoctor        Role = "doctor"
	RoleAdmin         Role = "admin"
)

var (
	ErrInvalidSession = errors.New("session expired or invalid login")
	ErrNotFound       = errors.New("session not found")
)

// ParseRole maps a stored role string to a Role. Unknown values are anonymous.
func ParseRole(s string) Role {
	switch r := Role(s); r {
	case RolePatient, RoleLoggedPatient, RoleDoctor, RoleAdmin:
		return r
	default:
		return RoleAnonymous
	}
}

// RequiresToken reports whether the role is only valid alongside a bearer token.
func (r Role) RequiresToken() bool {
	switch r {
	case RoleLoggedPatient, RoleDoctor, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	if r == RoleAnonymous {
		return "anonymous"
	}
	return string(r)
}

// Session is the persisted (role, token) pair. Field names match the keys the
// browser client used to keep in local storage.
type Session struct {
	Role      Role      `json:"userRole"`
	Token     string    `json:"token,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Valid reports whether s satisfies the role/token invariant. now is used for
// the expiry of JWT tokens.
func (s Session) Valid(now time.Time) bool {
	if !s.Role.RequiresToken() {
		return true
	}
	return s.Token != "" && !TokenExpired(s.Token, now)
}
