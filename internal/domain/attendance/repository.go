package attendance

import "context"

// Gateway is the backend's attendance resource.
type Gateway interface {
	ListAll(ctx context.Context) ([]RawRecord, error)
	ListMine(ctx context.Context) ([]RawRecord, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]RawRecord, error)
	ClockIn(ctx context.Context, req ClockInRequest) (ClockInResponse, error)
	ClockOut(ctx context.Context) (string, error)
}

// Exporter renders records into a downloadable report.
type Exporter interface {
	Export(records []Record, req ExportRequest) (Report, error)
}
