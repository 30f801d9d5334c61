package dashboard

import (
	"fmt"
	"slices"
	"time"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/employee"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/leave"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/view"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/normalize"
)

const (
	// MaxActivities bounds the recent-activity feed.
	MaxActivities = 10

	UnknownUser = "未知使用者"
	UnknownTime = "未知時間"

	// LoadFailedMessage is shown when the dashboard cannot be loaded.
	LoadFailedMessage = "載入數據失敗，請重新整理頁面"
)

type ActivityType string

const (
	ActivityLeave    ActivityType = "leave"
	ActivityOvertime ActivityType = "overtime"
)

// RawOvertime is an overtime application as returned by the backend.
type RawOvertime struct {
	ID        normalize.ID `json:"id"`
	LegacyID  normalize.ID `json:"_id"`
	UserID    normalize.ID `json:"user_id"`
	Status    string       `json:"status"`
	CreatedAt string       `json:"created_at"`
}

type Stats struct {
	TotalEmployees  int `json:"total_employees"`
	TodayAttendance int `json:"today_attendance"`
	PendingLeaves   int `json:"pending_leaves"`
	PendingOvertime int `json:"pending_overtime"`
}

type Activity struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Time       string       `json:"time"`
	OccurredAt string       `json:"occurred_at"`
	Type       ActivityType `json:"type"`
	Status     leave.Status `json:"status"`
	User       string       `json:"user"`
}

// View is what the dashboard controller publishes.
type View struct {
	view.Status
	Stats      Stats      `json:"stats"`
	Activities []Activity `json:"activities"`
}

// Aggregate builds the headline numbers. Leave and overtime lists may be empty
// when their sources were unavailable.
func Aggregate(roster []employee.Employee, records []attendance.Record, leaves []leave.Record, overtimes []RawOvertime, today string) Stats {
	stats := Stats{TotalEmployees: len(roster)}
	for _, r := range records {
		if r.Date != "" && r.Date == today {
			stats.TodayAttendance++
		}
	}
	for _, l := range leaves {
		if l.Status == leave.StatusPending {
			stats.PendingLeaves++
		}
	}
	for _, o := range overtimes {
		if leave.ParseStatus(o.Status) == leave.StatusPending {
			stats.PendingOvertime++
		}
	}
	return stats
}

// Activities merges leave and overtime applications, newest first, at most MaxActivities.
// Entries with an unparsable created_at sort last.
func Activities(roster []employee.Employee, leaves []leave.Record, overtimes []RawOvertime, now time.Time) []Activity {
	dir := employee.NewDirectory(roster)
	userOf := func(id string) string {
		if e, ok := dir[id]; ok && e.DisplayName() != "" {
			return e.DisplayName()
		}
		return UnknownUser
	}

	out := make([]Activity, 0, len(leaves)+len(overtimes))
	for _, l := range leaves {
		out = append(out, Activity{
			ID:         l.ID,
			Title:      "申請" + l.LeaveType,
			Time:       RelativeTime(l.CreatedAt, now),
			OccurredAt: l.CreatedAt,
			Type:       ActivityLeave,
			Status:     l.Status,
			User:       userOf(l.UserID),
		})
	}
	for _, o := range overtimes {
		out = append(out, Activity{
			ID:         normalize.PickID(string(o.ID), string(o.LegacyID)),
			Title:      "申請加班",
			Time:       RelativeTime(o.CreatedAt, now),
			OccurredAt: o.CreatedAt,
			Type:       ActivityOvertime,
			Status:     leave.ParseStatus(o.Status),
			User:       userOf(string(o.UserID)),
		})
	}

	slices.SortStableFunc(out, func(a, b Activity) int {
		ta, tb := normalize.UnixMilli(a.OccurredAt), normalize.UnixMilli(b.OccurredAt)
		switch {
		case ta > tb:
			return -1
		case ta < tb:
			return 1
		}
		return 0
	})
	if len(out) > MaxActivities {
		out = out[:MaxActivities]
	}
	return out
}

// RelativeTime renders how long ago s was: minutes under an hour, hours under a day, else days.
func RelativeTime(s string, now time.Time) string {
	t, ok := normalize.ParseTime(s)
	if !ok {
		return UnknownTime
	}
	minutes := int(now.Sub(t).Minutes())
	if minutes < 0 {
		minutes = 0
	}
	hours := minutes / 60
	switch {
	case minutes < 60:
		return fmt.Sprintf("%d分鐘前", minutes)
	case hours < 24:
		return fmt.Sprintf("%d小時前", hours)
	default:
		return fmt.Sprintf("%d天前", hours/24)
	}
}
