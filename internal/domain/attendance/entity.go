package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/employee"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/normalize"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
	StatusLeave   Status = "leave"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusAbsent, StatusLeave:
		return true
	}
	return false
}

// StatusRule selects how a record's status is derived.
type StatusRule string

const (
	// RuleClockOnly derives status from the clock-in and is_late flag only.
	// Employees on approved leave therefore never show as "leave".
	RuleClockOnly StatusRule = "clock"
	// RuleLeaveJoin additionally marks records whose day falls inside an
	// approved leave of the same employee as "leave".
	RuleLeaveJoin StatusRule = "leave_join"
)

func ParseStatusRule(s string) StatusRule {
	if StatusRule(s) == RuleLeaveJoin {
		return RuleLeaveJoin
	}
	return RuleClockOnly
}

// LeaveCalendar answers whether an employee is on approved leave on a day (YYYY-MM-DD).
type LeaveCalendar interface {
	OnLeave(userID, day string) bool
}

// RawRecord is an attendance document as returned by the backend.
type RawRecord struct {
	ID           normalize.ID `json:"id"`
	LegacyID     normalize.ID `json:"_id"`
	UserID       normalize.ID `json:"user_id"`
	ClockIn      string       `json:"clock_in"`
	ClockOut     *string      `json:"clock_out"`
	IsLate       bool         `json:"is_late"`
	IsEarlyLeave bool         `json:"is_early_leave"`
	DeviceID     *string      `json:"device_id"`
	Location     *string      `json:"location"`
	CreatedAt    string       `json:"created_at"`
	UpdatedAt    string       `json:"updated_at"`
}

// Record is a normalized attendance entry with its derived fields.
type Record struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	UserName     string  `json:"user_name"`
	ClockIn      string  `json:"clock_in"`
	ClockOut     *string `json:"clock_out"`
	IsLate       bool    `json:"is_late"`
	IsEarlyLeave bool    `json:"is_early_leave"`
	DeviceID     *string `json:"device_id,omitempty"`
	Location     *string `json:"location,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`

	Date            string  `json:"date"`
	Status          Status  `json:"status"`
	WorkingHours    float64 `json:"working_hours"`
	ClockInDisplay  string  `json:"clock_in_display"`
	ClockOutDisplay string  `json:"clock_out_display"`
	DateDisplay     string  `json:"date_display"`
}

// Normalizer turns raw backend records into Records.
// The zero value derives status with RuleClockOnly and dates in UTC.
type Normalizer struct {
	Rule     StatusRule
	Location *time.Location
	Leaves   LeaveCalendar
}

// Normalize never fails; unparsable timestamps degrade to display fallbacks and zero hours.
func (n Normalizer) Normalize(raw RawRecord) Record {
	clockOut := normalize.Optional(raw.ClockOut)
	rec := Record{
		ID:              normalize.PickID(string(raw.ID), string(raw.LegacyID)),
		UserID:          string(raw.UserID),
		UserName:        normalize.Placeholder(string(raw.UserID)),
		ClockIn:         raw.ClockIn,
		ClockOut:        clockOut,
		IsLate:          raw.IsLate,
		IsEarlyLeave:    raw.IsEarlyLeave,
		DeviceID:        normalize.Optional(raw.DeviceID),
		Location:        normalize.Optional(raw.Location),
		CreatedAt:       raw.CreatedAt,
		UpdatedAt:       raw.UpdatedAt,
		Date:            normalize.CalendarDate(raw.ClockIn, n.Location),
		ClockInDisplay:  normalize.TimeLabel(raw.ClockIn, n.Location),
		ClockOutDisplay: normalize.FallbackTime,
		DateDisplay:     normalize.DateLabel(raw.ClockIn, n.Location),
	}
	if clockOut != nil {
		rec.ClockOutDisplay = normalize.TimeLabel(*clockOut, n.Location)
		rec.WorkingHours = WorkingHours(raw.ClockIn, *clockOut)
	}
	rec.Status = n.status(raw, rec.Date)
	return rec
}

func (n Normalizer) NormalizeAll(raws []RawRecord) []Record {
	out := make([]Record, 0, len(raws))
	for _, raw := range raws {
		out = append(out, n.Normalize(raw))
	}
	return out
}

func (n Normalizer) status(raw RawRecord, day string) Status {
	if n.Rule == RuleLeaveJoin && n.Leaves != nil && day != "" && n.Leaves.OnLeave(string(raw.UserID), day) {
		return StatusLeave
	}
	if raw.ClockIn == "" {
		return StatusAbsent
	}
	if raw.IsLate {
		return StatusLate
	}
	return StatusPresent
}

// WorkingHours returns clockOut-clockIn in hours rounded to two decimals, or 0
// when either side is unparsable or clockOut is not after clockIn.
func WorkingHours(clockIn, clockOut string) float64 {
	start, ok := normalize.ParseTime(clockIn)
	if !ok {
		return 0
	}
	end, ok := normalize.ParseTime(clockOut)
	if !ok || !end.After(start) {
		return 0
	}
	return normalize.Round2(end.Sub(start).Hours())
}

// ResolveNames joins records against the roster by user id. Unknown ids get the placeholder name.
func ResolveNames(records []Record, roster []employee.Employee) []Record {
	dir := employee.NewDirectory(roster)
	out := make([]Record, len(records))
	for i, r := range records {
		r.UserName = dir.NameOf(r.UserID)
		out[i] = r
	}
	return out
}

// LabelSelf marks records from list-mine with the self label.
func LabelSelf(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		r.UserName = normalize.SelfLabel
		out[i] = r
	}
	return out
}
