package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/dashboard"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/employee"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/leave"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/view"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/normalize"
	"github.com/cmlabs-hris/hris-admin-console/internal/service/viewstate"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	Location *time.Location
	Now      func() time.Time
}

type ControllerImpl struct {
	vs         *viewstate.Controller[dashboard.Activity, struct{}, dashboard.Stats]
	roster     employee.Roster
	attendance attendance.Gateway
	leaves     leave.Gateway
	overtime   dashboard.OvertimeGateway
	opts       Options
}

// NewController builds the dashboard controller. overtime may be nil when the
// backend has no overtime resource.
func NewController(
	roster employee.Roster,
	attendanceGateway attendance.Gateway,
	leaves leave.Gateway,
	overtime dashboard.OvertimeGateway,
	opts Options,
	observer view.Observer,
) *ControllerImpl {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	c := &ControllerImpl{
		roster:     roster,
		attendance: attendanceGateway,
		leaves:     leaves,
		overtime:   overtime,
		opts:       opts,
	}

	var publish view.Observer
	if observer != nil {
		publish = func(domain string, snapshot any) {
			if snap, ok := snapshot.(view.Snapshot[dashboard.Activity, struct{}, dashboard.Stats]); ok {
				observer(domain, toView(snap))
			}
		}
	}
	c.vs = viewstate.New(viewstate.Config[dashboard.Activity, struct{}, dashboard.Stats]{
		Domain:         view.DomainDashboard,
		Collect:        c.build,
		Apply:          func(feed []dashboard.Activity, _ struct{}) []dashboard.Activity { return feed },
		LoadFailed:     dashboard.LoadFailedMessage,
		MaskLoadErrors: true,
		Observer:       publish,
	})
	return c
}

var _ dashboard.Controller = (*ControllerImpl)(nil)

type sources struct {
	roster    []employee.RawEmployee
	records   []attendance.RawRecord
	leaves    []leave.RawRecord
	overtimes []dashboard.RawOvertime
}

func (c *ControllerImpl) collect(ctx context.Context) (sources, error) {
	var (
		src sources
		g   errgroup.Group
	)
	g.Go(func() error {
		r, err := c.roster.List(ctx)
		if err != nil {
			return fmt.Errorf("list employees: %w", err)
		}
		src.roster = r
		return nil
	})
	g.Go(func() error {
		r, err := c.attendance.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("list attendance: %w", err)
		}
		src.records = r
		return nil
	})
	g.Go(func() error {
		r, err := c.leaves.ListAll(ctx)
		if err != nil {
			slog.Warn("Leave records unavailable for dashboard", "error", err)
			return nil
		}
		src.leaves = r
		return nil
	})
	if c.overtime != nil {
		g.Go(func() error {
			r, err := c.overtime.ListAll(ctx)
			if err != nil {
				slog.Warn("Overtime records unavailable for dashboard", "error", err)
				return nil
			}
			src.overtimes = r
			return nil
		})
	}
	return src, g.Wait()
}

// build turns one pass over the sources into the headline stats and the activity feed.
func (c *ControllerImpl) build(ctx context.Context) (viewstate.Batch[dashboard.Activity, dashboard.Stats], error) {
	src, err := c.collect(ctx)
	if err != nil {
		return viewstate.Batch[dashboard.Activity, dashboard.Stats]{}, err
	}

	now := c.opts.Now()
	roster := employee.NormalizeAll(src.roster)
	leaves := leave.NormalizeAll(src.leaves)
	n := attendance.Normalizer{Rule: attendance.RuleClockOnly, Location: c.opts.Location}
	records := n.NormalizeAll(src.records)

	return viewstate.Batch[dashboard.Activity, dashboard.Stats]{
		Records: dashboard.Activities(roster, leaves, src.overtimes, now),
		Stats:   dashboard.Aggregate(roster, records, leaves, src.overtimes, normalize.Today(now, c.opts.Location)),
	}, nil
}

func toView(snap view.Snapshot[dashboard.Activity, struct{}, dashboard.Stats]) dashboard.View {
	feed := snap.Records
	if feed == nil {
		feed = []dashboard.Activity{}
	}
	return dashboard.View{
		Status:     snap.Status,
		Stats:      snap.Stats,
		Activities: feed,
	}
}

func (c *ControllerImpl) Load(ctx context.Context) error {
	return c.vs.Load(ctx)
}

func (c *ControllerImpl) Snapshot() dashboard.View {
	return toView(c.vs.Snapshot())
}

func (c *ControllerImpl) ClearError() {
	c.vs.ClearError()
}

func (c *ControllerImpl) Close() {
	c.vs.Close()
}
