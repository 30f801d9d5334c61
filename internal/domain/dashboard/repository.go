package dashboard

import "context"

// OvertimeGateway lists overtime applications. The backend may not expose it.
type OvertimeGateway interface {
	ListAll(ctx context.Context) ([]RawOvertime, error)
}
