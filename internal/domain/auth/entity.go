package auth

import (
	"time"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/employee"
)

// Session is the explicit per-login context every upstream call is made with.
type Session struct {
	ID            string
	UserID        string
	Username      string
	Name          string
	Role          employee.Role
	UpstreamToken string
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

func (s Session) IsAdmin() bool {
	return s.Role == employee.RoleAdmin
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// UpstreamToken is the backend's login response.
type UpstreamToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
