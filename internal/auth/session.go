// Package auth holds the request session, the role guard and JWT handling.
package auth

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrInactive        = errors.New("account is inactive")
	ErrForbidden       = errors.New("insufficient role")
)

const (
	LoginPath         = "/login"
	InactiveLoginPath = "/login?inactive=true"
)

// Session is the caller as loaded from the database for the current request.
type Session struct {
	UserID snowflake.ID
	Name   string
	Email  string
	Role   models.Role
	Active bool
}

func SessionFromUser(u *models.User) *Session {
	return &Session{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Active: u.IsActive,
	}
}

func (s *Session) HasRole(roles ...models.Role) bool {
	if s == nil {
		return false
	}
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

func (s *Session) IsManager() bool {
	return s.HasRole(models.RoleAdmin, models.RoleStaff)
}

// HomePath is the landing page of a role.
func HomePath(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return "/admin/dashboard"
	case models.RoleStaff:
		return "/staff/dashboard"
	case models.RoleTechnician:
		return "/technician/dashboard"
	}
	return LoginPath
}

type Decision struct {
	Allowed  bool
	Status   int
	Redirect string
	Err      error
}

// Guard decides whether s may enter a route restricted to allowed.
// An empty allowed set admits any active session with a known role.
func Guard(s *Session, allowed ...models.Role) Decision {
	if s == nil || !s.Role.Valid() {
		return Decision{Status: http.StatusUnauthorized, Redirect: LoginPath, Err: ErrUnauthenticated}
	}
	if !s.Active {
		return Decision{Status: http.StatusUnauthorized, Redirect: InactiveLoginPath, Err: ErrInactive}
	}
	if len(allowed) > 0 && !s.HasRole(allowed...) {
		return Decision{Status: http.StatusForbidden, Redirect: HomePath(s.Role), Err: ErrForbidden}
	}
	return Decision{Allowed: true, Status: http.StatusOK}
}
