package leave

import "context"

// Gateway is the backend's leave resource.
type Gateway interface {
	ListAll(ctx context.Context) ([]RawRecord, error)
	ListMine(ctx context.Context) ([]RawRecord, error)
	Get(ctx context.Context, id string) (RawRecord, error)
	Apply(ctx context.Context, req ApplyLeaveRequest) (string, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	Delete(ctx context.Context, id string) error
}
