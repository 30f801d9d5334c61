package leave

import (
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/view"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/query"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/validator"
)

type ApplyLeaveRequest struct {
	LeaveType string  `json:"leave_type"`
	StartDate string  `json:"start_date"` // YYYY-MM-DD
	EndDate   string  `json:"end_date"`   // YYYY-MM-DD
	Reason    *string `json:"reason,omitempty"`
}

func (r *ApplyLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.LeaveType) {
		errs = append(errs, validator.ValidationError{Field: "leave_type", Message: "leave_type is required"})
	} else if len(r.LeaveType) > 50 {
		errs = append(errs, validator.ValidationError{Field: "leave_type", Message: "leave_type must not exceed 50 characters"})
	}

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"})
	}
	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: ErrInvalidDateRange.Error()})
	}

	if r.Reason != nil && len(*r.Reason) > 500 {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "reason must not exceed 500 characters"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateStatusRequest struct {
	Status Status `json:"status"`
}

func (r *UpdateStatusRequest) Validate() error {
	if !r.Status.Valid() {
		return validator.ValidationErrors{{Field: "status", Message: ErrInvalidStatus.Error()}}
	}
	return nil
}

// SearchSpec is an immutable description of the leave list view.
type SearchSpec struct {
	Search    string      `json:"search"`
	Status    string      `json:"status"`
	LeaveType string      `json:"leave_type"`
	SortBy    string      `json:"sort_by"`
	SortOrder query.Order `json:"sort_order"`
}

type SearchPatch struct {
	Search    *string      `json:"search,omitempty"`
	Status    *string      `json:"status,omitempty"`
	LeaveType *string      `json:"leave_type,omitempty"`
	SortBy    *string      `json:"sort_by,omitempty"`
	SortOrder *query.Order `json:"sort_order,omitempty"`
}

func DefaultSearch() SearchSpec {
	return SearchSpec{Status: query.All, LeaveType: query.All, SortBy: "created_at", SortOrder: query.Desc}
}

func (s SearchSpec) Merge(p SearchPatch) SearchSpec {
	if p.Search != nil {
		s.Search = *p.Search
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.LeaveType != nil {
		s.LeaveType = *p.LeaveType
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

	if p.Status != nil && *p.Status != "" && *p.Status != query.All && !Status(*p.Status).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: all, pending, approved, rejected",
		})
	}
	if p.SortBy != nil && *p.SortBy != "" && !engine.CanSort(*p.SortBy) {
		errs = append(errs, validator.ValidationError{
			Field:   "sort_by",
			Message: "sort_by must be one of: created_at, start_date, status, leave_type",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type Stats struct {
	TotalLeaves    int `json:"total_leaves"`
	PendingLeaves  int `json:"pending_leaves"`
	ApprovedLeaves int `json:"approved_leaves"`
	RejectedLeaves int `json:"rejected_leaves"`
	TotalEmployees int `json:"total_employees"`
	LeaveRate      int `json:"leave_rate"`
}

// View is what the leave controller publishes.
type View = view.Snapshot[Record, SearchSpec, Stats]
