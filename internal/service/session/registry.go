// Package session keeps the view controllers that belong to each login.
package session

import (
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/auth"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/dashboard"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/employee"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/leave"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/view"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/sse"
	client "github.com/cmlabs-hris/hris-admin-console/internal/pkg/upstream"
	"github.com/cmlabs-hris/hris-admin-console/internal/repository/upstream"
	attendancesvc "github.com/cmlabs-hris/hris-admin-console/internal/service/attendance"
	dashboardsvc "github.com/cmlabs-hris/hris-admin-console/internal/service/dashboard"
	employeesvc "github.com/cmlabs-hris/hris-admin-console/internal/service/employee"
	leavesvc "github.com/cmlabs-hris/hris-admin-console/internal/service/leave"
)

// Controllers is the view state of one session.
type Controllers struct {
	Employees  employee.Controller
	Attendance attendance.Controller
	Leaves     leave.Controller
	Dashboard  dashboard.Controller
}

func (c *Controllers) Close() {
	c.Employees.Close()
	c.Attendance.Close()
	c.Leaves.Close()
	c.Dashboard.Close()
}

// Factory builds the controllers for a session.
type Factory func(s auth.Session) *Controllers

type Options struct {
	Rule     attendance.StatusRule
	Location *time.Location
}

// NewFactory builds controllers whose gateways carry the session's upstream
// token and whose republishes go to the session's SSE subscribers.
func NewFactory(base *client.Client, hub *sse.Hub, exporter attendance.Exporter, opts Options) Factory {
	return func(s auth.Session) *Controllers {
		gw := upstream.ForToken(base, s.UpstreamToken)
		observer := Observer(hub, s.ID)

		return &Controllers{
			Employees: employeesvc.NewController(gw.Employees, s.UserID, observer),
			Attendance: attendancesvc.NewController(gw.Attendance, gw.Employees, gw.Leaves, exporter,
				attendancesvc.Options{Rule: opts.Rule, Location: opts.Location}, observer),
			Leaves: leavesvc.NewController(gw.Leaves, gw.Employees, observer),
			Dashboard: dashboardsvc.NewController(gw.Employees, gw.Attendance, gw.Leaves, gw.Overtime,
				dashboardsvc.Options{Location: opts.Location}, observer),
		}
	}
}

// Observer publishes every republished view as an SSE event named after its domain.
func Observer(hub *sse.Hub, sessionID string) view.Observer {
	return func(domain string, snapshot any) {
		hub.Publish(sessionID, sse.Event{Event: domain, Data: snapshot})
	}
}

// Registry maps session ids to their controllers, building them on first use.
type Registry struct {
	mu      sync.Mutex
	factory Factory
	byID    map[string]*Controllers
}

func NewRegistry(factory Factory) *Registry {
	return &Registry{factory: factory, byID: make(map[string]*Controllers)}
}

func (r *Registry) For(s auth.Session) *Controllers {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.byID[s.ID]; ok {
		return c
	}
	c := r.factory(s)
	r.byID[s.ID] = c
	return c
}

// Close closes and forgets a session's controllers. Unknown ids are ignored.
func (r *Registry) Close(sessionID string) {
	r.mu.Lock()
	c, ok := r.byID[sessionID]
	delete(r.byID, sessionID)
	r.mu.Unlock()

	if ok {
		c.Close()
	}
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := r.byID
	r.byID = make(map[string]*Controllers)
	r.mu.Unlock()

	for _, c := range all {
		c.Close()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}
