package leave

import (
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/normalize"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/query"
)

var engine = query.NewEngine[Record]().
	Searchable(func(r Record) string { return r.UserName }).
	Searchable(func(r Record) string { return r.LeaveType }).
	Searchable(Record.ReasonOrEmpty).
	Categorical("status", func(r Record) string { return string(r.Status) }).
	Categorical("leave_type", func(r Record) string { return r.LeaveType }).
	SortText("created_at", query.Time, func(r Record) string { return r.CreatedAt }).
	SortText("start_date", query.Time, func(r Record) string { return r.StartDate }).
	SortText("status", query.String, func(r Record) string { return string(r.Status) }).
	SortText("leave_type", query.String, func(r Record) string { return r.LeaveType })

func (s SearchSpec) criteria() query.Criteria {
	return query.Criteria{
		Search: s.Search,
		Equals: map[string]string{"status": s.Status, "leave_type": s.LeaveType},
		SortBy: s.SortBy,
		Order:  s.SortOrder,
	}
}

func Apply(records []Record, spec SearchSpec) []Record {
	return engine.Apply(records, spec.criteria())
}

// Aggregate counts records by status; leave_rate is total_leaves over the roster size.
func Aggregate(records []Record, rosterSize int) Stats {
	stats := Stats{TotalLeaves: len(records), TotalEmployees: rosterSize}
	for _, r := range records {
		switch r.Status {
		case StatusPending:
			stats.PendingLeaves++
		case StatusApproved:
			stats.ApprovedLeaves++
		case StatusRejected:
			stats.RejectedLeaves++
		}
	}
	stats.LeaveRate = normalize.Percent(len(records), rosterSize)
	return stats
}
