package employee

import (
	"context"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/view"
)

// Controller owns the employee roster view for one session.
type Controller interface {
	// Load fetches the roster and republishes the view
	Load(ctx context.Context) error

	// Snapshot returns the current view
	Snapshot() View

	// UpdateSearch merges patch into the search spec and re-filters without fetching
	UpdateSearch(patch SearchPatch) View

	// Get fetches a single employee
	Get(ctx context.Context, id string) (Employee, error)

	Create(ctx context.Context, req CreateEmployeeRequest) view.Result
	Update(ctx context.Context, id string, req UpdateEmployeeRequest) view.Result
	Delete(ctx context.Context, id string) view.Result

	ClearError()

	// Close discards in-flight fetches and stops publishing
	Close()
}
