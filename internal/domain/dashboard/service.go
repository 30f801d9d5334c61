package dashboard

import "context"

// Controller owns the dashboard view for one session.
type Controller interface {
	// Load fetches roster and attendance (required) with leave and overtime (best-effort)
	Load(ctx context.Context) error
	Snapshot() View
	ClearError()
	Close()
}
