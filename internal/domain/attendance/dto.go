package attendance

import (
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/view"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/query"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/validator"
)

// ========================================
// MUTATION DTOs
// ========================================

type ClockInRequest struct {
	DeviceID *string `json:"device_id,omitempty"`
	Location *string `json:"location,omitempty"`
}

func (r *ClockInRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.DeviceID != nil && len(*r.DeviceID) > 100 {
		errs = append(errs, validator.ValidationError{Field: "device_id", Message: "device_id must not exceed 100 characters"})
	}
	if r.Location != nil && len(*r.Location) > 255 {
		errs = append(errs, validator.ValidationError{Field: "location", Message: "location must not exceed 255 characters"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ClockInResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// ========================================
// REPORT EXPORT
// ========================================

type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

type ExportRequest struct {
	StartDate string       `json:"start_date"` // YYYY-MM-DD
	EndDate   string       `json:"end_date"`   // YYYY-MM-DD
	Format    ExportFormat `json:"format"`
}

func (r *ExportRequest) Validate() error {
	var errs validator.ValidationErrors

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

	if r.Format == "" {
		r.Format = FormatCSV
	}
	if r.Format != FormatCSV && r.Format != FormatXLSX {
		errs = append(errs, validator.ValidationError{Field: "format", Message: ErrUnsupportedFormat.Error()})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Report is a generated, downloadable attendance report.
type Report struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ========================================
// SEARCH
// ========================================

// SearchSpec is an immutable description of the attendance list view.
type SearchSpec struct {
	Search    string      `json:"search"`
	Status    string      `json:"status"`
	Date      string      `json:"date"`
	SortBy    string      `json:"sort_by"`
	SortOrder query.Order `json:"sort_order"`
}

// SearchPatch carries a partial update; nil fields keep their previous value.
type SearchPatch struct {
	Search    *string      `json:"search,omitempty"`
	Status    *string      `json:"status,omitempty"`
	Date      *string      `json:"date,omitempty"`
	SortBy    *string      `json:"sort_by,omitempty"`
	SortOrder *query.Order `json:"sort_order,omitempty"`
}

// DefaultSearch shows today's records, newest day first.
func DefaultSearch(today string) SearchSpec {
	return SearchSpec{Status: query.All, Date: today, SortBy: "date", SortOrder: query.Desc}
}

func (s SearchSpec) Merge(p SearchPatch) SearchSpec {
	if p.Search != nil {
		s.Search = *p.Search
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.Date != nil {
		s.Date = *p.Date
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
			Message: "status must be one of: all, present, late, absent, leave",
		})
	}
	if p.Date != nil && *p.Date != "" {
		if _, ok := validator.IsValidDate(*p.Date); !ok {
			errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be in YYYY-MM-DD format"})
		}
	}
	if p.SortBy != nil && *p.SortBy != "" && !engine.CanSort(*p.SortBy) {
		errs = append(errs, validator.ValidationError{
			Field:   "sort_by",
			Message: "sort_by must be one of: date, user_name, status, working_hours",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========================================
// STATS
// ========================================

type Stats struct {
	TotalEmployees      int     `json:"total_employees"`
	PresentToday        int     `json:"present_today"`
	AbsentToday         int     `json:"absent_today"`
	LateToday           int     `json:"late_today"`
	LeaveToday          int     `json:"leave_today"`
	AttendanceRate      int     `json:"attendance_rate"`
	AverageWorkingHours float64 `json:"average_working_hours"`
}

// View is what the attendance controller publishes.
type View = view.Snapshot[Record, SearchSpec, Stats]
