package employee

import "github.com/cmlabs-hris/hris-admin-console/internal/pkg/query"

var engine = query.NewEngine[Employee]().
	Searchable(func(e Employee) string { return e.Name }).
	Searchable(func(e Employee) string { return e.Username }).
	Searchable(Employee.EmailOrEmpty).
	Categorical("role", func(e Employee) string { return string(e.Role) }).
	SortText("name", query.String, func(e Employee) string { return e.Name }).
	SortText("username", query.String, func(e Employee) string { return e.Username }).
	SortText("role", query.String, func(e Employee) string { return string(e.Role) }).
	SortText("created_at", query.Time, func(e Employee) string { return e.CreatedAt })

func (s SearchSpec) criteria() query.Criteria {
	return query.Criteria{
		Search: s.Search,
		Equals: map[string]string{"role": s.Role},
		SortBy: s.SortBy,
		Order:  s.SortOrder,
	}
}

// Apply filters and orders a roster according to spec.
func Apply(employees []Employee, spec SearchSpec) []Employee {
	return engine.Apply(employees, spec.criteria())
}

// Aggregate counts the roster by role.
func Aggregate(roster []Employee) Stats {
	stats := Stats{TotalUsers: len(roster)}
	for _, e := range roster {
		if e.Role == RoleAdmin {
			stats.AdminUsers++
		} else {
			stats.RegularUsers++
		}
	}
	return stats
}
