package leave

import (
	"context"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/view"
)

// Controller owns the leave view for one session.
type Controller interface {
	Load(ctx context.Context) error
	Snapshot() View
	UpdateSearch(patch SearchPatch) View

	// ListMine returns the caller's own requests, labelled with the self label
	ListMine(ctx context.Context, spec SearchSpec) ([]Record, error)

	// Get fetches one request with its name resolved against the roster
	Get(ctx context.Context, id string) (Record, error)

	Apply(ctx context.Context, req ApplyLeaveRequest) view.Result
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) view.Result
	Approve(ctx context.Context, id string) view.Result
	Reject(ctx context.Context, id string) view.Result
	Delete(ctx context.Context, id string) view.Result

	ClearError()
	Close()
}
