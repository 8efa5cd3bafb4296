package auth

import (
	"errors"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("auth: session required")
	ErrForbidden       = errors.New("auth: insufficient permissions")
)

type Role string

const (
	RoleGuest Role = "guest"
	RoleHost  Role = "host"
	RoleAdmin Role = "admin"
)

// Session is the identity an upstream provider vouched for. It is passed
// explicitly to every operation that needs it.
type Session struct {
	UserID string
	Roles  []Role
}

func NewSession(userID string, roles []string) (Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Session{}, ErrUnauthenticated
	}
	s := Session{UserID: userID}
	for _, r := range roles {
		r = strings.ToLower(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		s.Roles = append(s.Roles, Role(r))
	}
	if len(s.Roles) == 0 {
		s.Roles = []Role{RoleGuest}
	}
	return s, nil
}

func (s Session) Authenticated() bool {
	return s.UserID != ""
}

func (s Session) HasRole(role Role) bool {
	for _, r := range s.Roles {
		if r == role || r == RoleAdmin {
			return true
		}
	}
	return false
}

// Require fails unless the session is authenticated and, when role is set,
// carries it.
func (s Session) Require(role Role) error {
	if !s.Authenticated() {
		return ErrUnauthenticated
	}
	if role != "" && !s.HasRole(role) {
		return ErrForbidden
	}
	return nil
}
