package employee

import (
	"strings"

	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/normalize"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole maps backend role spellings ("Admin", "admin") onto the two canonical roles.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// RawEmployee is a user document as returned by the backend.
type RawEmployee struct {
	ID        normalize.ID `json:"id"`
	LegacyID  normalize.ID `json:"_id"`
	Username  string       `json:"username"`
	Name      string       `json:"name"`
	Email     *string      `json:"email"`
	Role      string       `json:"role"`
	CreatedAt string       `json:"created_at"`
	UpdatedAt string       `json:"updated_at"`
}

// Employee is the normalized roster entry.
type Employee struct {
	ID               string  `json:"id"`
	Username         string  `json:"username"`
	Name             string  `json:"name"`
	Email            *string `json:"email,omitempty"`
	Role             Role    `json:"role"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
	CreatedAtDisplay string  `json:"created_at_display"`
}

// Normalize converts a backend user document into an Employee. It never fails.
func Normalize(raw RawEmployee) Employee {
	return Employee{
		ID:               normalize.PickID(string(raw.ID), string(raw.LegacyID)),
		Username:         raw.Username,
		Name:             raw.Name,
		Email:            normalize.Optional(raw.Email),
		Role:             ParseRole(raw.Role),
		CreatedAt:        raw.CreatedAt,
		UpdatedAt:        raw.UpdatedAt,
		CreatedAtDisplay: normalize.DateLabel(raw.CreatedAt, nil),
	}
}

func NormalizeAll(raws []RawEmployee) []Employee {
	out := make([]Employee, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Normalize(raw))
	}
	return out
}

// DisplayName is the name shown for joins: name, then username.
func (e Employee) DisplayName() string {
	if strings.TrimSpace(e.Name) != "" {
		return e.Name
	}
	return e.Username
}

func (e Employee) EmailOrEmpty() string {
	if e.Email == nil {
		return ""
	}
	return *e.Email
}

// Directory indexes a roster by employee id for name resolution.
type Directory map[string]Employee

func NewDirectory(roster []Employee) Directory {
	d := make(Directory, len(roster))
	for _, e := range roster {
		if e.ID != "" {
			d[e.ID] = e
		}
	}
	return d
}

// NameOf resolves a display name for userID, falling back to the placeholder.
func (d Directory) NameOf(userID string) string {
	if e, ok := d[userID]; ok {
		if name := e.DisplayName(); name != "" {
			return name
		}
	}
	return normalize.Placeholder(userID)
}
