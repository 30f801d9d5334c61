package attendance

import (
	"context"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/view"
)

// Controller owns the attendance view for one session.
type Controller interface {
	// Load fetches all records with the roster join and today's stats
	Load(ctx context.Context) error

	// Snapshot returns the current view
	Snapshot() View

	// UpdateSearch merges patch into the search spec and re-filters without fetching
	UpdateSearch(patch SearchPatch) View

	// ListMine returns the caller's own records, labelled with the self label
	ListMine(ctx context.Context, spec SearchSpec) ([]Record, error)

	// ListByEmployee returns one employee's records with the roster join applied
	ListByEmployee(ctx context.Context, employeeID string, spec SearchSpec) ([]Record, error)

	ClockIn(ctx context.Context, req ClockInRequest) view.Result
	ClockOut(ctx context.Context) view.Result

	// Export renders the canonical collection between two days
	Export(ctx context.Context, req ExportRequest) (Report, view.Result)

	ClearError()
	Close()
}
