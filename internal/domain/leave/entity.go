package leave

import (
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/employee"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/normalize"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Backend wording for the three statuses.
const (
	backendPending  = "待批准"
	backendApproved = "已批准"
	backendRejected = "已拒絕"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// ParseStatus maps either backend or canonical wording to a Status. Unknown values are pending.
func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case backendApproved, string(StatusApproved):
		return StatusApproved
	case backendRejected, string(StatusRejected):
		return StatusRejected
	default:
		return StatusPending
	}
}

// Backend returns the wording the backend stores for s.
func (s Status) Backend() string {
	switch s {
	case StatusApproved:
		return backendApproved
	case StatusRejected:
		return backendRejected
	default:
		return backendPending
	}
}

// RawRecord is a leave document as returned by the backend.
type RawRecord struct {
	ID        normalize.ID `json:"id"`
	LegacyID  normalize.ID `json:"_id"`
	UserID    normalize.ID `json:"user_id"`
	UserName  string       `json:"user_name"`
	LeaveType string       `json:"leave_type"`
	StartDate string       `json:"start_date"`
	EndDate   string       `json:"end_date"`
	Status    string       `json:"status"`
	Reason    *string      `json:"reason"`
	CreatedAt string       `json:"created_at"`
	UpdatedAt string       `json:"updated_at"`
}

// Record is a normalized leave request.
type Record struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	UserName     string  `json:"user_name"`
	LeaveType    string  `json:"leave_type"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	Status       Status  `json:"status"`
	Reason       *string `json:"reason,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
	DurationDays int     `json:"duration_days"`
}

func (r Record) ReasonOrEmpty() string {
	if r.Reason == nil {
		return ""
	}
	return *r.Reason
}

// Normalize converts a backend leave document into a Record. It never fails.
func Normalize(raw RawRecord) Record {
	userID := string(raw.UserID)
	name := raw.UserName
	if strings.TrimSpace(name) == "" {
		name = normalize.Placeholder(userID)
	}
	return Record{
		ID:           normalize.PickID(string(raw.ID), string(raw.LegacyID)),
		UserID:       userID,
		UserName:     name,
		LeaveType:    raw.LeaveType,
		StartDate:    raw.StartDate,
		EndDate:      raw.EndDate,
		Status:       ParseStatus(raw.Status),
		Reason:       normalize.Optional(raw.Reason),
		CreatedAt:    raw.CreatedAt,
		UpdatedAt:    raw.UpdatedAt,
		DurationDays: DurationDays(raw.StartDate, raw.EndDate),
	}
}

func NormalizeAll(raws []RawRecord) []Record {
	out := make([]Record, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Normalize(raw))
	}
	return out
}

// DurationDays is the inclusive day count ceil(|end-start| in days)+1, or 1 when either date is unparsable.
func DurationDays(start, end string) int {
	s, ok := normalize.ParseTime(start)
	if !ok {
		return 1
	}
	e, ok := normalize.ParseTime(end)
	if !ok {
		return 1
	}
	diff := e.Sub(s)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(diff.Hours()/24)) + 1
}

// ResolveNames joins records against the roster by user id.
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

type span struct {
	from, to string
}

// Calendar indexes approved leave by employee for day lookups.
type Calendar struct {
	spans map[string][]span
}

// NewCalendar keeps only approved records whose dates parse; days are taken in loc.
func NewCalendar(records []Record, loc *time.Location) *Calendar {
	c := &Calendar{spans: make(map[string][]span)}
	for _, r := range records {
		if r.Status != StatusApproved {
			continue
		}
		from := normalize.CalendarDate(r.StartDate, loc)
		to := normalize.CalendarDate(r.EndDate, loc)
		if from == "" || to == "" {
			continue
		}
		if to < from {
			from, to = to, from
		}
		c.spans[r.UserID] = append(c.spans[r.UserID], span{from: from, to: to})
	}
	return c
}

// OnLeave reports whether userID has approved leave covering day (YYYY-MM-DD).
func (c *Calendar) OnLeave(userID, day string) bool {
	if c == nil {
		return false
	}
	for _, s := range c.spans[userID] {
		if day >= s.from && day <= s.to {
			return true
		}
	}
	return false
}
