package upstream

import (
	"context"
	"net/url"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/attendance"
	client "github.com/cmlabs-hris/hris-admin-console/internal/pkg/upstream"
)

type attendanceGateway struct {
	c *client.Client
}

func NewAttendanceGateway(c *client.Client) attendance.Gateway {
	return &attendanceGateway{c: c}
}

func (g *attendanceGateway) list(ctx context.Context, path string) ([]attendance.RawRecord, error) {
	var out []attendance.RawRecord
	if err := g.c.Get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *attendanceGateway) ListAll(ctx context.Context) ([]attendance.RawRecord, error) {
	return g.list(ctx, "/attendance/all")
}

func (g *attendanceGateway) ListMine(ctx context.Context) ([]attendance.RawRecord, error) {
	return g.list(ctx, "/attendance/my")
}

func (g *attendanceGateway) ListByEmployee(ctx context.Context, employeeID string) ([]attendance.RawRecord, error) {
	return g.list(ctx, "/attendance/user/"+url.PathEscape(employeeID))
}

func (g *attendanceGateway) ClockIn(ctx context.Context, req attendance.ClockInRequest) (attendance.ClockInResponse, error) {
	var out attendance.ClockInResponse
	if err := g.c.Post(ctx, "/attendance/clock-in", req, &out); err != nil {
		return attendance.ClockInResponse{}, err
	}
	return out, nil
}

func (g *attendanceGateway) ClockOut(ctx context.Context) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := g.c.Post(ctx, "/attendance/clock-out", struct{}{}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
