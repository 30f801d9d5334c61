package employee

import (
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/view"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/query"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/validator"
)

type CreateEmployeeRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Name     string  `json:"name"`
	Email    *string `json:"email,omitempty"`
	Role     Role    `json:"role,omitempty"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Username) {
		errs = append(errs, validator.ValidationError{Field: "username", Message: "username is required"})
	} else if !validator.IsValidUsername(r.Username) {
		errs = append(errs, validator.ValidationError{
			Field:   "username",
			Message: "username must be 3-50 characters of letters, digits, underscore or hyphen",
		})
	}

	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{Field: "password", Message: "password is required"})
	} else if len(r.Password) < 6 || len(r.Password) > 100 {
		errs = append(errs, validator.ValidationError{Field: "password", Message: "password must be 6-100 characters"})
	}

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}

	if r.Email != nil && *r.Email != "" && !validator.IsValidEmail(*r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "email must be a valid email address"})
	}

	if r.Role == "" {
		r.Role = RoleUser
	} else if !r.Role.Valid() {
		errs = append(errs, validator.ValidationError{Field: "role", Message: ErrInvalidRole.Error()})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateEmployeeRequest carries the admin-editable fields. Username is never
// taken from the client; the controller copies it from the canonical record.
type UpdateEmployeeRequest struct {
	Username string  `json:"-"`
	Password *string `json:"password,omitempty"`
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *Role   `json:"role,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Password != nil && (len(*r.Password) < 6 || len(*r.Password) > 100) {
		errs = append(errs, validator.ValidationError{Field: "password", Message: "password must be 6-100 characters"})
	}
	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name cannot be empty"})
	}
	if r.Email != nil && *r.Email != "" && !validator.IsValidEmail(*r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "email must be a valid email address"})
	}
	if r.Role != nil && !r.Role.Valid() {
		errs = append(errs, validator.ValidationError{Field: "role", Message: ErrInvalidRole.Error()})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SearchSpec is an immutable description of the employee list view.
type SearchSpec struct {
	Search    string      `json:"search"`
	Role      string      `json:"role"`
	SortBy    string      `json:"sort_by"`
	SortOrder query.Order `json:"sort_order"`
}

// SearchPatch carries a partial update; nil fields keep their previous value.
type SearchPatch struct {
	Search    *string      `json:"search,omitempty"`
	Role      *string      `json:"role,omitempty"`
	SortBy    *string      `json:"sort_by,omitempty"`
	SortOrder *query.Order `json:"sort_order,omitempty"`
}

func DefaultSearch() SearchSpec {
	return SearchSpec{Role: query.All, SortBy: "name", SortOrder: query.Asc}
}

// Merge returns a new spec with the supplied patch fields applied.
func (s SearchSpec) Merge(p SearchPatch) SearchSpec {
	if p.Search != nil {
		s.Search = *p.Search
	}
	if p.Role != nil {
		s.Role = *p.Role
	}
	if p.SortBy != nil {
		s.SortBy = *p.SortBy
	}
	if p.SortOrder != nil {
		s.SortOrder = query.ParseOrder(string(*p.SortOrder))
	}
	return s
}

func (p *SearchPatch) Validate() error {
	var errs validator.ValidationErrors
	if p.SortBy != nil && *p.SortBy != "" && !engine.CanSort(*p.SortBy) {
		errs = append(errs, validator.ValidationError{
			Field:   "sort_by",
			Message: "sort_by must be one of: name, username, role, created_at",
		})
	}
	if p.Role != nil && *p.Role != "" && *p.Role != query.All && !Role(*p.Role).Valid() {
		errs = append(errs, validator.ValidationError{Field: "role", Message: "role must be all, admin or user"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Stats summarises the roster.
type Stats struct {
	TotalUsers   int `json:"total_users"`
	AdminUsers   int `json:"admin_users"`
	RegularUsers int `json:"regular_users"`
}

// View is what the employee controller publishes.
type View = view.Snapshot[Employee, SearchSpec, Stats]
