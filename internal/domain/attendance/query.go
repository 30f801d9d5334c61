package attendance

import (
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/normalize"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/query"
)

var engine = query.NewEngine[Record]().
	Searchable(func(r Record) string { return r.UserName }).
	Categorical("status", func(r Record) string { return string(r.Status) }).
	CalendarDay(func(r Record) string { return r.Date }).
	SortText("date", query.Time, func(r Record) string { return r.Date }).
	SortText("user_name", query.String, func(r Record) string { return r.UserName }).
	SortText("status", query.String, func(r Record) string { return string(r.Status) }).
	SortNumber("working_hours", func(r Record) float64 { return r.WorkingHours })

func (s SearchSpec) criteria() query.Criteria {
	return query.Criteria{
		Search: s.Search,
		Equals: map[string]string{"status": s.Status},
		Date:   s.Date,
		SortBy: s.SortBy,
		Order:  s.SortOrder,
	}
}

// Apply filters and orders records according to spec.
func Apply(records []Record, spec SearchSpec) []Record {
	return engine.Apply(records, spec.criteria())
}

// Aggregate computes today's rollup over the full collection. rosterSize is
// the denominator of attendance_rate; zero yields a zero rate.
func Aggregate(records []Record, rosterSize int, today string) Stats {
	stats := Stats{TotalEmployees: rosterSize}

	var todays int
	var hours float64
	for _, r := range records {
		if r.Date != today {
			continue
		}
		todays++
		hours += r.WorkingHours
		switch r.Status {
		case StatusPresent:
			stats.PresentToday++
		case StatusLate:
			stats.LateToday++
		case StatusAbsent:
			stats.AbsentToday++
		case StatusLeave:
			stats.LeaveToday++
		}
	}

	stats.AttendanceRate = normalize.Percent(todays, rosterSize)
	if todays > 0 {
		stats.AverageWorkingHours = normalize.Round2(hours / float64(todays))
	}
	return stats
}

// InRange returns the records whose day lies within [start, end] inclusive.
func InRange(records []Record, start, end string) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Date != "" && r.Date >= start && r.Date <= end {
			out = append(out, r)
		}
	}
	return out
}
