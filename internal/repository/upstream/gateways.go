// Package upstream implements the domain gateways against the attendance backend.
package upstream

import (
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/dashboard"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/employee"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/leave"
	client "github.com/cmlabs-hris/hris-admin-console/internal/pkg/upstream"
)

// Gateways is the full set of resources one session talks to.
type Gateways struct {
	Employees  employee.Gateway
	Attendance attendance.Gateway
	Leaves     leave.Gateway
	Overtime   dashboard.OvertimeGateway
}

// ForToken builds gateways that authenticate with the session's upstream token.
func ForToken(base *client.Client, token string) Gateways {
	c := base.WithToken(token)
	return Gateways{
		Employees:  NewEmployeeGateway(c),
		Attendance: NewAttendanceGateway(c),
		Leaves:     NewLeaveGateway(c),
		Overtime:   NewOvertimeGateway(c),
	}
}
