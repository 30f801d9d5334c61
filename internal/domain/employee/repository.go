package employee

import "context"

// Roster lists every employee. Attendance and leave controllers depend only on this.
type Roster interface {
	List(ctx context.Context) ([]RawEmployee, error)
}

// Gateway is the backend's user resource.
type Gateway interface {
	Roster
	Get(ctx context.Context, id string) (RawEmployee, error)
	Create(ctx context.Context, req CreateEmployeeRequest) (string, error)
	Update(ctx context.Context, id string, req UpdateEmployeeRequest) error
	Delete(ctx context.Context, id string) error
}
