package auth

import (
	"errors"
	"testing"
)

func TestNewSessionDefaultsToGuest(t *testing.T) {
	s, err := NewSession(" user-1 ", nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if s.UserID != "user-1" || !s.HasRole(RoleGuest) || s.HasRole(RoleHost) {
		t.Fatalf("unexpected session %+v", s)
	}
}

func TestRequire(t *testing.T) {
	host, _ := NewSession("h", []string{"HOST", " "})
	admin, _ := NewSession("a", []string{"admin"})
	cases := []struct {
		name    string
		session Session
		role    Role
		want    error
	}{
		{"anonymous", Session{}, "", ErrUnauthenticated},
		{"host as host", host, RoleHost, nil},
		{"host as guest", host, RoleGuest, ErrForbidden},
		{"admin as host", admin, RoleHost, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.session.Require(tc.role); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestNewSessionRequiresUser(t *testing.T) {
	if _, err := NewSession("", []string{"host"}); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
