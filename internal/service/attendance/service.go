package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/employee"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/leave"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/view"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/normalize"
	"github.com/cmlabs-hris/hris-admin-console/internal/service/viewstate"
	"golang.org/x/sync/errgroup"
)

const (
	msgLoadFailed     = "載入出勤記錄失敗"
	msgClockedIn      = "簽到成功"
	msgClockInFailed  = "簽到失敗"
	msgClockedOut     = "簽退成功"
	msgClockOutFailed = "簽退失敗"
	msgExported       = "報表匯出成功"
	msgExportFailed   = "匯出報表失敗"
)

type Options struct {
	Rule     attendance.StatusRule
	Location *time.Location
	Now      func() time.Time
}

type ControllerImpl struct {
	*viewstate.Controller[attendance.Record, attendance.SearchSpec, attendance.Stats]
	gateway  attendance.Gateway
	roster   employee.Roster
	leaves   leave.Gateway
	exporter attendance.Exporter
	opts     Options
}

// NewController builds the attendance controller. leaves is only consulted
// under attendance.RuleLeaveJoin and may be nil otherwise.
func NewController(
	gateway attendance.Gateway,
	roster employee.Roster,
	leaves leave.Gateway,
	exporter attendance.Exporter,
	opts Options,
	observer view.Observer,
) *ControllerImpl {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	c := &ControllerImpl{
		gateway:  gateway,
		roster:   roster,
		leaves:   leaves,
		exporter: exporter,
		opts:     opts,
	}
	c.Controller = viewstate.New(viewstate.Config[attendance.Record, attendance.SearchSpec, attendance.Stats]{
		Domain:        view.DomainAttendance,
		Collect:       c.collect,
		Apply:         attendance.Apply,
		InitialSearch: func() attendance.SearchSpec { return attendance.DefaultSearch(c.today()) },
		LoadFailed:    msgLoadFailed,
		Observer:      observer,
	})
	return c
}

var _ attendance.Controller = (*ControllerImpl)(nil)

func (c *ControllerImpl) today() string {
	return normalize.Today(c.opts.Now(), c.opts.Location)
}

// collect fetches all records joined against the roster and aggregates
// today's stats over the same collection. A failing roster leaves
// placeholder names and zero stats; a failing leave list only disables the
// leave join.
func (c *ControllerImpl) collect(ctx context.Context) (viewstate.Batch[attendance.Record, attendance.Stats], error) {
	var (
		raws      []attendance.RawRecord
		rawRoster []employee.RawEmployee
		rosterErr error
		rawLeaves []leave.RawRecord
		g         errgroup.Group
	)

	g.Go(func() error {
		r, err := c.gateway.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("list attendance: %w", err)
		}
		raws = r
		return nil
	})
	g.Go(func() error {
		r, err := c.roster.List(ctx)
		if err != nil {
			slog.Warn("Roster unavailable, using placeholder names", "error", err)
			rosterErr = fmt.Errorf("list employees: %w", err)
			return nil
		}
		rawRoster = r
		return nil
	})
	if c.opts.Rule == attendance.RuleLeaveJoin && c.leaves != nil {
		g.Go(func() error {
			r, err := c.leaves.ListAll(ctx)
			if err != nil {
				slog.Warn("Leave records unavailable, leave status not derived", "error", err)
				return nil
			}
			rawLeaves = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return viewstate.Batch[attendance.Record, attendance.Stats]{}, err
	}

	n := attendance.Normalizer{Rule: c.opts.Rule, Location: c.opts.Location}
	if rawLeaves != nil {
		n.Leaves = leave.NewCalendar(leave.NormalizeAll(rawLeaves), c.opts.Location)
	}
	roster := employee.NormalizeAll(rawRoster)
	records := attendance.ResolveNames(n.NormalizeAll(raws), roster)

	batch := viewstate.Batch[attendance.Record, attendance.Stats]{Records: records, StatsErr: rosterErr}
	if rosterErr == nil {
		batch.Stats = attendance.Aggregate(records, len(roster), c.today())
	}
	return batch, nil
}

func (c *ControllerImpl) UpdateSearch(patch attendance.SearchPatch) attendance.View {
	return c.Refilter(func(s attendance.SearchSpec) attendance.SearchSpec { return s.Merge(patch) })
}

func (c *ControllerImpl) ListMine(ctx context.Context, spec attendance.SearchSpec) ([]attendance.Record, error) {
	raws, err := c.gateway.ListMine(ctx)
	if err != nil {
		return nil, err
	}
	n := attendance.Normalizer{Rule: c.opts.Rule, Location: c.opts.Location}
	return attendance.Apply(attendance.LabelSelf(n.NormalizeAll(raws)), spec), nil
}

func (c *ControllerImpl) ListByEmployee(ctx context.Context, employeeID string, spec attendance.SearchSpec) ([]attendance.Record, error) {
	var (
		raws      []attendance.RawRecord
		rawRoster []employee.RawEmployee
		g         errgroup.Group
	)
	g.Go(func() error {
		r, err := c.gateway.ListByEmployee(ctx, employeeID)
		if err != nil {
			return err
		}
		raws = r
		return nil
	})
	g.Go(func() error {
		r, err := c.roster.List(ctx)
		if err != nil {
			slog.Warn("Roster unavailable, using placeholder names", "error", err)
			return nil
		}
		rawRoster = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	n := attendance.Normalizer{Rule: c.opts.Rule, Location: c.opts.Location}
	records := attendance.ResolveNames(n.NormalizeAll(raws), employee.NormalizeAll(rawRoster))
	return attendance.Apply(records, spec), nil
}

func (c *ControllerImpl) ClockIn(ctx context.Context, req attendance.ClockInRequest) view.Result {
	if err := req.Validate(); err != nil {
		return viewstate.Rejected(err)
	}
	return c.Mutate(ctx, msgClockInFailed, func(ctx context.Context) (view.Result, error) {
		resp, err := c.gateway.ClockIn(ctx, req)
		if err != nil {
			return view.Result{}, err
		}
		res := view.Ok(resp.Message)
		if res.Message == "" {
			res.Message = msgClockedIn
		}
		res.ID = resp.ID
		return res, nil
	})
}

func (c *ControllerImpl) ClockOut(ctx context.Context) view.Result {
	return c.Mutate(ctx, msgClockOutFailed, func(ctx context.Context) (view.Result, error) {
		msg, err := c.gateway.ClockOut(ctx)
		if err != nil {
			return view.Result{}, err
		}
		if msg == "" {
			msg = msgClockedOut
		}
		return view.Ok(msg), nil
	})
}

// Export renders the canonical collection between the requested days,
// loading it first when the controller has never fetched.
func (c *ControllerImpl) Export(ctx context.Context, req attendance.ExportRequest) (attendance.Report, view.Result) {
	if err := req.Validate(); err != nil {
		return attendance.Report{}, viewstate.Rejected(err)
	}

	if c.Snapshot().State == view.StateIdle {
		if err := c.Load(ctx); err != nil {
			return attendance.Report{}, view.Fail(view.Message(err, msgExportFailed))
		}
	}

	records := attendance.InRange(c.Records(), req.StartDate, req.EndDate)
	report, err := c.exporter.Export(records, req)
	if err != nil {
		slog.Error("Failed to export attendance report", "error", err)
		return attendance.Report{}, view.Fail(msgExportFailed)
	}
	return report, view.Ok(msgExported)
}
